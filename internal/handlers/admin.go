package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortkat/internal/repositories"
	"shortkat/internal/telemetry"
)

// AdminHandler manages moderation endpoints. Every route requires the
// caller's profile to carry the admin flag.
type AdminHandler struct {
	userRepo repositories.UserRepository
	emitter  *telemetry.AuditEmitter
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(userRepo repositories.UserRepository, emitter *telemetry.AuditEmitter) *AdminHandler {
	return &AdminHandler{userRepo: userRepo, emitter: emitter}
}

// requireAdmin loads the caller's profile and rejects non-admins.
func (h *AdminHandler) requireAdmin(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")

	profile, err := h.userRepo.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return "", false
		}
		logInternal(c, "load admin profile failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify admin"})
		return "", false
	}
	if !profile.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return "", false
	}
	return userID, true
}

// SetVerified sets or clears the verification badge on a user.
func (h *AdminHandler) SetVerified(c *gin.Context) {
	adminID, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	var req struct {
		TargetUserID string `json:"targetUserId" binding:"required"`
		Verified     bool   `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.userRepo.GetProfile(c.Request.Context(), req.TargetUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logInternal(c, "load target profile failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify user"})
		return
	}

	target.IsVerified = req.Verified
	if err := h.userRepo.SaveProfile(c.Request.Context(), target); err != nil {
		logInternal(c, "save target profile failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify user"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("verification changed target=%s verified=%t", req.TargetUserID, req.Verified),
		requestIDFromContext(c), &adminID)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": target})
}

// SetAdmin grants or revokes admin rights on a user.
func (h *AdminHandler) SetAdmin(c *gin.Context) {
	adminID, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	var req struct {
		TargetUserID string `json:"targetUserId" binding:"required"`
		IsAdmin      bool   `json:"isAdmin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, err := h.userRepo.GetProfile(c.Request.Context(), req.TargetUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logInternal(c, "load target profile failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to grant admin"})
		return
	}

	target.IsAdmin = req.IsAdmin
	if err := h.userRepo.SaveProfile(c.Request.Context(), target); err != nil {
		logInternal(c, "save target profile failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to grant admin"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "WARN",
		fmt.Sprintf("admin flag changed target=%s is_admin=%t", req.TargetUserID, req.IsAdmin),
		requestIDFromContext(c), &adminID)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": target})
}

// ListUsers returns every profile in the system.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	if _, ok := h.requireAdmin(c); !ok {
		return
	}

	users, err := h.userRepo.ListProfiles(c.Request.Context())
	if err != nil {
		logInternal(c, "list users failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
