package models

import "time"

// Video is the metadata document stored under "video:<id>".
type Video struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileName    string    `json:"fileName,omitempty"`
	URL         string    `json:"url"`
	IsExternal  bool      `json:"isExternal,omitempty"`
	Likes       int       `json:"likes"`
	Comments    int       `json:"comments"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VideoWithUser attaches the uploader profile for feed responses.
type VideoWithUser struct {
	Video
	User *Profile `json:"user,omitempty"`
}

// Comment is one entry of the "comments:<videoID>" list.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentWithUser attaches the author profile for comment listings.
type CommentWithUser struct {
	Comment
	User *Profile `json:"user,omitempty"`
}

// ViewRecord is a single playback sample kept for retention analytics.
type ViewRecord struct {
	Timestamp time.Time `json:"timestamp"`
	WatchTime float64   `json:"watchTime"`
	Duration  float64   `json:"duration"`
}

// VideoAnalytics is the document stored under "analytics:<videoID>".
type VideoAnalytics struct {
	Views     []ViewRecord `json:"views"`
	Retention []float64    `json:"retention"`
}

// VideoReport is one row of the creator analytics response.
type VideoReport struct {
	Video        Video   `json:"video"`
	Views        int     `json:"views"`
	Likes        int     `json:"likes"`
	Comments     int     `json:"comments"`
	AvgRetention float64 `json:"avgRetention"`
}
