package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortkat/internal/models"
	"shortkat/internal/repositories"
)

// UserHandler manages profile and subscription endpoints.
type UserHandler struct {
	userRepo  repositories.UserRepository
	videoRepo repositories.VideoRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository, videoRepo repositories.VideoRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo, videoRepo: videoRepo}
}

// GetProfile returns a user profile with follower counts and their videos.
func (h *UserHandler) GetProfile(c *gin.Context) {
	targetID := c.Param("id")

	profile, err := h.userRepo.GetProfile(c.Request.Context(), targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logInternal(c, "get profile failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	videoIDs, err := h.videoRepo.UserVideoIDs(c.Request.Context(), targetID)
	if err != nil {
		logInternal(c, "load user videos failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	videos := make([]models.Video, 0, len(videoIDs))
	for _, videoID := range videoIDs {
		if video, err := h.videoRepo.GetVideo(c.Request.Context(), videoID); err == nil {
			videos = append(videos, video)
		}
	}

	followers, err := h.userRepo.CountFollowers(c.Request.Context(), targetID)
	if err != nil {
		logInternal(c, "count followers failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	following, err := h.userRepo.Subscriptions(c.Request.Context(), targetID)
	if err != nil {
		logInternal(c, "load subscriptions failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	view := models.ProfileView{
		Profile:        profile,
		VideosCount:    len(videos),
		FollowersCount: followers,
		FollowingCount: len(following),
	}

	c.JSON(http.StatusOK, gin.H{"user": view, "videos": videos})
}

// UpdateProfile merges the request body into the caller's profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("userID")

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.userRepo.UpdateProfile(c.Request.Context(), userID, updates)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logInternal(c, "update profile failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": profile})
}

// Subscribe toggles a subscription to another user.
func (h *UserHandler) Subscribe(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		TargetUserID string `json:"targetUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if userID == req.TargetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot subscribe to yourself"})
		return
	}

	if _, err := h.userRepo.GetProfile(c.Request.Context(), req.TargetUserID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		logInternal(c, "load target profile failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}

	subscribed, err := h.userRepo.ToggleSubscription(c.Request.Context(), userID, req.TargetUserID)
	if err != nil {
		logInternal(c, "toggle subscription failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to subscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "isSubscribed": subscribed})
}
