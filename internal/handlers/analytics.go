package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"shortkat/internal/models"
)

// Analytics returns the creator dashboard data. A user can only read their
// own analytics.
func (h *VideoHandler) Analytics(c *gin.Context) {
	userID := c.GetString("userID")
	targetID := c.Param("userId")

	if userID != targetID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	videoIDs, err := h.videoRepo.UserVideoIDs(c.Request.Context(), targetID)
	if err != nil {
		logInternal(c, "load user videos failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analytics"})
		return
	}

	reports := make([]models.VideoReport, 0, len(videoIDs))
	for _, videoID := range videoIDs {
		video, err := h.videoRepo.GetVideo(c.Request.Context(), videoID)
		if err != nil {
			continue
		}
		analytics, err := h.videoRepo.VideoAnalytics(c.Request.Context(), videoID)
		if err != nil {
			logInternal(c, "load video analytics failed", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get analytics"})
			return
		}

		reports = append(reports, models.VideoReport{
			Video:        video,
			Views:        video.Views,
			Likes:        video.Likes,
			Comments:     video.Comments,
			AvgRetention: avgRetention(analytics.Retention),
		})
	}

	c.JSON(http.StatusOK, gin.H{"analytics": reports})
}

// avgRetention averages the retention samples, rounded to one decimal.
func avgRetention(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return math.Round(sum/float64(len(samples))*10) / 10
}
