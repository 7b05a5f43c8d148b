package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortkat/internal/identity"
	"shortkat/internal/telemetry"
)

// AuthHandler manages signup and signin.
type AuthHandler struct {
	identity *identity.Service
	emitter  *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(identitySvc *identity.Service, emitter *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{identity: identitySvc, emitter: emitter}
}

// Signup registers a new account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Password    string `json:"password" binding:"required"`
		Username    string `json:"username" binding:"required"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.identity.Signup(c.Request.Context(), req.Email, req.Password, req.Username, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailTaken), errors.Is(err, identity.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logInternal(c, "signup failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign up"})
		}
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("user signed up email=%s first_user=%t", result.User.Email, result.IsFirstUser),
		requestIDFromContext(c), &result.User.ID)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"userId":      result.User.ID,
		"isFirstUser": result.IsFirstUser,
		"accessToken": result.AccessToken,
		"user":        result.User,
	})
}

// Signin verifies credentials and returns a fresh token.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, token, err := h.identity.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		logInternal(c, "signin failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"accessToken": token,
		"user":        profile,
	})
}
