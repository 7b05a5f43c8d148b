package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shortkat/internal/chat"
	"shortkat/internal/identity"
	"shortkat/internal/models"
	"shortkat/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateProfile(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *UserRepositoryMock) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *UserRepositoryMock) SaveProfile(ctx context.Context, profile models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID string, updates map[string]any) (models.Profile, error) {
	args := m.Called(ctx, userID, updates)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *UserRepositoryMock) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	var profiles []models.Profile
	if val := args.Get(0); val != nil {
		profiles = val.([]models.Profile)
	}
	return profiles, args.Error(1)
}

func (m *UserRepositoryMock) Subscriptions(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var subs []string
	if val := args.Get(0); val != nil {
		subs = val.([]string)
	}
	return subs, args.Error(1)
}

func (m *UserRepositoryMock) ToggleSubscription(ctx context.Context, userID, targetUserID string) (bool, error) {
	args := m.Called(ctx, userID, targetUserID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) CountFollowers(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type VideoRepositoryMock struct {
	mock.Mock
}

func (m *VideoRepositoryMock) CreateVideo(ctx context.Context, video models.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *VideoRepositoryMock) GetVideo(ctx context.Context, videoID string) (models.Video, error) {
	args := m.Called(ctx, videoID)
	var video models.Video
	if val := args.Get(0); val != nil {
		video = val.(models.Video)
	}
	return video, args.Error(1)
}

func (m *VideoRepositoryMock) ListVideos(ctx context.Context) ([]models.Video, error) {
	args := m.Called(ctx)
	var videos []models.Video
	if val := args.Get(0); val != nil {
		videos = val.([]models.Video)
	}
	return videos, args.Error(1)
}

func (m *VideoRepositoryMock) UserVideoIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

func (m *VideoRepositoryMock) ToggleLike(ctx context.Context, videoID, userID string) (bool, int, error) {
	args := m.Called(ctx, videoID, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *VideoRepositoryMock) AddComment(ctx context.Context, comment models.Comment) (int, error) {
	args := m.Called(ctx, comment)
	return args.Int(0), args.Error(1)
}

func (m *VideoRepositoryMock) ListComments(ctx context.Context, videoID string) ([]models.Comment, error) {
	args := m.Called(ctx, videoID)
	var comments []models.Comment
	if val := args.Get(0); val != nil {
		comments = val.([]models.Comment)
	}
	return comments, args.Error(1)
}

func (m *VideoRepositoryMock) RecordView(ctx context.Context, videoID string, watchTime, duration float64) error {
	args := m.Called(ctx, videoID, watchTime, duration)
	return args.Error(0)
}

func (m *VideoRepositoryMock) VideoAnalytics(ctx context.Context, videoID string) (models.VideoAnalytics, error) {
	args := m.Called(ctx, videoID)
	var analytics models.VideoAnalytics
	if val := args.Get(0); val != nil {
		analytics = val.(models.VideoAnalytics)
	}
	return analytics, args.Error(1)
}

type ChatServiceMock struct {
	mock.Mock
}

func (m *ChatServiceMock) SendMessage(ctx context.Context, senderID, recipientID, text string) (models.Message, models.Streak, error) {
	args := m.Called(ctx, senderID, recipientID, text)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	var current models.Streak
	if val := args.Get(1); val != nil {
		current = val.(models.Streak)
	}
	return msg, current, args.Error(2)
}

func (m *ChatServiceMock) ListMessages(ctx context.Context, requesterID, otherUserID string) ([]models.Message, models.Streak, error) {
	args := m.Called(ctx, requesterID, otherUserID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	var current models.Streak
	if val := args.Get(1); val != nil {
		current = val.(models.Streak)
	}
	return msgs, current, args.Error(2)
}

func (m *ChatServiceMock) ListChats(ctx context.Context, requesterID string) ([]models.ChatSummary, error) {
	args := m.Called(ctx, requesterID)
	var chats []models.ChatSummary
	if val := args.Get(0); val != nil {
		chats = val.([]models.ChatSummary)
	}
	return chats, args.Error(1)
}

type IdentityProviderMock struct {
	mock.Mock
}

func (m *IdentityProviderMock) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.VideoRepository = (*VideoRepositoryMock)(nil)
var _ chat.Service = (*ChatServiceMock)(nil)
var _ identity.Provider = (*IdentityProviderMock)(nil)
