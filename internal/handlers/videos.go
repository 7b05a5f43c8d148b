package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"shortkat/internal/models"
	"shortkat/internal/observability"
	"shortkat/internal/repositories"
	"shortkat/internal/storage"
	"shortkat/internal/telemetry"
)

const videoBucket = "videos"

// VideoHandler manages upload, feed, likes, comments and view recording.
type VideoHandler struct {
	videoRepo repositories.VideoRepository
	userRepo  repositories.UserRepository
	objects   storage.ObjectStore
	emitter   *telemetry.AuditEmitter
}

// NewVideoHandler builds a VideoHandler.
func NewVideoHandler(videoRepo repositories.VideoRepository, userRepo repositories.UserRepository, objects storage.ObjectStore, emitter *telemetry.AuditEmitter) *VideoHandler {
	return &VideoHandler{videoRepo: videoRepo, userRepo: userRepo, objects: objects, emitter: emitter}
}

// Upload stores a multipart video file in the object store and persists its
// metadata.
func (h *VideoHandler) Upload(c *gin.Context) {
	userID := c.GetString("userID")

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no video file provided"})
		return
	}

	videoID := ulid.Make().String()
	fileName := videoID + "-" + fileHeader.Filename

	file, err := fileHeader.Open()
	if err != nil {
		logInternal(c, "open upload failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload video"})
		return
	}
	defer file.Close()

	url, err := h.objects.Save(c.Request.Context(), videoBucket, fileName, file)
	if err != nil {
		logInternal(c, "store upload failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload video"})
		return
	}

	video := models.Video{
		ID:          videoID,
		UserID:      userID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		FileName:    fileName,
		URL:         url,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.videoRepo.CreateVideo(c.Request.Context(), video); err != nil {
		logInternal(c, "persist video failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload video"})
		return
	}

	observability.IncVideoUpload("file")
	h.emitter.Emit(c.Request.Context(), "INFO",
		fmt.Sprintf("video uploaded video_id=%s", videoID),
		requestIDFromContext(c), &userID)

	c.JSON(http.StatusOK, gin.H{"success": true, "videoId": videoID, "video": video})
}

// Import saves an external video link without downloading the file.
func (h *VideoHandler) Import(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		TiktokURL   string `json:"tiktokUrl" binding:"required"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video := models.Video{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.TiktokURL,
		IsExternal:  true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.videoRepo.CreateVideo(c.Request.Context(), video); err != nil {
		logInternal(c, "persist imported video failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to import video"})
		return
	}

	observability.IncVideoUpload("external")
	c.JSON(http.StatusOK, gin.H{"success": true, "videoId": video.ID, "video": video})
}

// Feed returns videos sorted by creation time, newest first, enriched with
// the uploader profiles.
func (h *VideoHandler) Feed(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	videos, err := h.videoRepo.ListVideos(c.Request.Context())
	if err != nil {
		logInternal(c, "list videos failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get videos"})
		return
	}

	if offset > len(videos) {
		offset = len(videos)
	}
	end := offset + limit
	if end > len(videos) {
		end = len(videos)
	}
	page := videos[offset:end]

	result := make([]models.VideoWithUser, 0, len(page))
	for _, video := range page {
		entry := models.VideoWithUser{Video: video}
		if profile, err := h.userRepo.GetProfile(c.Request.Context(), video.UserID); err == nil {
			entry.User = &profile
		}
		result = append(result, entry)
	}

	c.JSON(http.StatusOK, gin.H{"videos": result})
}

// GetVideo returns one video with its uploader profile.
func (h *VideoHandler) GetVideo(c *gin.Context) {
	video, err := h.videoRepo.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		logInternal(c, "get video failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get video"})
		return
	}

	entry := models.VideoWithUser{Video: video}
	if profile, err := h.userRepo.GetProfile(c.Request.Context(), video.UserID); err == nil {
		entry.User = &profile
	}

	c.JSON(http.StatusOK, gin.H{"video": entry})
}

// Like toggles the authenticated user's like on a video.
func (h *VideoHandler) Like(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		VideoID string `json:"videoId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	liked, total, err := h.videoRepo.ToggleLike(c.Request.Context(), req.VideoID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		logInternal(c, "toggle like failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to like video"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "likes": total, "isLiked": liked})
}

// Comment appends a comment to a video.
func (h *VideoHandler) Comment(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		VideoID string `json:"videoId" binding:"required"`
		Text    string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		UserID:    userID,
		VideoID:   req.VideoID,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}
	total, err := h.videoRepo.AddComment(c.Request.Context(), comment)
	if err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		logInternal(c, "add comment failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "comment": comment, "totalComments": total})
}

// ListComments returns a video's comments with author profiles.
func (h *VideoHandler) ListComments(c *gin.Context) {
	comments, err := h.videoRepo.ListComments(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		logInternal(c, "list comments failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get comments"})
		return
	}

	result := make([]models.CommentWithUser, 0, len(comments))
	for _, comment := range comments {
		entry := models.CommentWithUser{Comment: comment}
		if profile, err := h.userRepo.GetProfile(c.Request.Context(), comment.UserID); err == nil {
			entry.User = &profile
		}
		result = append(result, entry)
	}

	c.JSON(http.StatusOK, gin.H{"comments": result})
}

// RecordView bumps the view counter and stores a retention sample.
func (h *VideoHandler) RecordView(c *gin.Context) {
	var req struct {
		VideoID   string  `json:"videoId" binding:"required"`
		WatchTime float64 `json:"watchTime"`
		Duration  float64 `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.videoRepo.RecordView(c.Request.Context(), req.VideoID, req.WatchTime, req.Duration); err != nil {
		if errors.Is(err, repositories.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		logInternal(c, "record view failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
