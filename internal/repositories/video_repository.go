package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"shortkat/internal/kvstore"
	"shortkat/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

// VideoRepository abstracts video metadata, likes, comments and analytics.
type VideoRepository interface {
	CreateVideo(ctx context.Context, video models.Video) error
	GetVideo(ctx context.Context, videoID string) (models.Video, error)
	ListVideos(ctx context.Context) ([]models.Video, error)
	UserVideoIDs(ctx context.Context, userID string) ([]string, error)
	ToggleLike(ctx context.Context, videoID, userID string) (liked bool, total int, err error)
	AddComment(ctx context.Context, comment models.Comment) (total int, err error)
	ListComments(ctx context.Context, videoID string) ([]models.Comment, error)
	RecordView(ctx context.Context, videoID string, watchTime, duration float64) error
	VideoAnalytics(ctx context.Context, videoID string) (models.VideoAnalytics, error)
}

// VideoRepo is a document-store implementation of VideoRepository.
type VideoRepo struct {
	store kvstore.Store
	locks *kvstore.KeyedMutex
}

// NewVideoRepo constructs a VideoRepo.
func NewVideoRepo(store kvstore.Store, locks *kvstore.KeyedMutex) *VideoRepo {
	return &VideoRepo{store: store, locks: locks}
}

func videoKey(videoID string) string     { return "video:" + videoID }
func userVideosKey(userID string) string { return "user-videos:" + userID }
func likesKey(videoID string) string     { return "likes:" + videoID }
func commentsKey(videoID string) string  { return "comments:" + videoID }
func analyticsKey(videoID string) string { return "analytics:" + videoID }

// CreateVideo stores the metadata and prepends the ID to the owner's list.
func (r *VideoRepo) CreateVideo(ctx context.Context, video models.Video) error {
	if err := kvstore.SetJSON(ctx, r.store, videoKey(video.ID), video); err != nil {
		return err
	}

	key := userVideosKey(video.UserID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	var ids []string
	err := kvstore.GetJSON(ctx, r.store, key, &ids)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return err
	}
	ids = append([]string{video.ID}, ids...)
	return kvstore.SetJSON(ctx, r.store, key, ids)
}

func (r *VideoRepo) GetVideo(ctx context.Context, videoID string) (models.Video, error) {
	var video models.Video
	err := kvstore.GetJSON(ctx, r.store, videoKey(videoID), &video)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return models.Video{}, ErrVideoNotFound
	}
	return video, err
}

// ListVideos returns all videos, newest first.
func (r *VideoRepo) ListVideos(ctx context.Context) ([]models.Video, error) {
	raws, err := r.store.GetByPrefix(ctx, "video:")
	if err != nil {
		return nil, err
	}

	videos := make([]models.Video, 0, len(raws))
	for _, raw := range raws {
		var video models.Video
		if err := json.Unmarshal(raw, &video); err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
	return videos, nil
}

func (r *VideoRepo) UserVideoIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := kvstore.GetJSON(ctx, r.store, userVideosKey(userID), &ids)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, nil
	}
	return ids, err
}

// ToggleLike adds or removes the user's like and refreshes the counter on
// the video document.
//
// The video document is shared with AddComment and RecordView; every
// mutation takes the video lock first, then its own list lock.
func (r *VideoRepo) ToggleLike(ctx context.Context, videoID, userID string) (bool, int, error) {
	vkey := videoKey(videoID)
	r.locks.Lock(vkey)
	defer r.locks.Unlock(vkey)

	key := likesKey(videoID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	video, err := r.GetVideo(ctx, videoID)
	if err != nil {
		return false, 0, err
	}

	var likes []string
	err = kvstore.GetJSON(ctx, r.store, key, &likes)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return false, 0, err
	}

	found := false
	next := likes[:0]
	for _, id := range likes {
		if id == userID {
			found = true
			continue
		}
		next = append(next, id)
	}
	if !found {
		next = append(next, userID)
	}

	if err := kvstore.SetJSON(ctx, r.store, key, next); err != nil {
		return false, 0, err
	}

	video.Likes = len(next)
	if err := kvstore.SetJSON(ctx, r.store, videoKey(videoID), video); err != nil {
		return false, 0, err
	}
	return !found, len(next), nil
}

// AddComment appends to the comment list and refreshes the counter on the
// video document. Returns the new total.
func (r *VideoRepo) AddComment(ctx context.Context, comment models.Comment) (int, error) {
	vkey := videoKey(comment.VideoID)
	r.locks.Lock(vkey)
	defer r.locks.Unlock(vkey)

	key := commentsKey(comment.VideoID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	video, err := r.GetVideo(ctx, comment.VideoID)
	if err != nil {
		return 0, err
	}

	var comments []models.Comment
	err = kvstore.GetJSON(ctx, r.store, key, &comments)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return 0, err
	}
	comments = append(comments, comment)

	if err := kvstore.SetJSON(ctx, r.store, key, comments); err != nil {
		return 0, err
	}

	video.Comments = len(comments)
	if err := kvstore.SetJSON(ctx, r.store, videoKey(comment.VideoID), video); err != nil {
		return 0, err
	}
	return len(comments), nil
}

func (r *VideoRepo) ListComments(ctx context.Context, videoID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := kvstore.GetJSON(ctx, r.store, commentsKey(videoID), &comments)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, nil
	}
	return comments, err
}

// RecordView bumps the view counter and appends a retention sample.
func (r *VideoRepo) RecordView(ctx context.Context, videoID string, watchTime, duration float64) error {
	vkey := videoKey(videoID)
	r.locks.Lock(vkey)
	defer r.locks.Unlock(vkey)

	key := analyticsKey(videoID)
	r.locks.Lock(key)
	defer r.locks.Unlock(key)

	video, err := r.GetVideo(ctx, videoID)
	if err != nil {
		return err
	}

	video.Views++
	if err := kvstore.SetJSON(ctx, r.store, videoKey(videoID), video); err != nil {
		return err
	}

	var analytics models.VideoAnalytics
	err = kvstore.GetJSON(ctx, r.store, key, &analytics)
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return err
	}

	retention := 0.0
	if duration > 0 {
		retention = watchTime / duration * 100
	}
	analytics.Views = append(analytics.Views, models.ViewRecord{
		Timestamp: time.Now().UTC(),
		WatchTime: watchTime,
		Duration:  duration,
	})
	analytics.Retention = append(analytics.Retention, retention)

	return kvstore.SetJSON(ctx, r.store, key, analytics)
}

func (r *VideoRepo) VideoAnalytics(ctx context.Context, videoID string) (models.VideoAnalytics, error) {
	var analytics models.VideoAnalytics
	err := kvstore.GetJSON(ctx, r.store, analyticsKey(videoID), &analytics)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return models.VideoAnalytics{}, nil
	}
	return analytics, err
}

var _ VideoRepository = (*VideoRepo)(nil)
