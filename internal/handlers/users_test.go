package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shortkat/internal/mocks"
	"shortkat/internal/models"
	"shortkat/internal/repositories"
)

func setupUserRouter(handler *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "alice")
		c.Next()
	})
	r.GET("/users/:id", handler.GetProfile)
	r.POST("/profile", handler.UpdateProfile)
	r.POST("/subscribe", handler.Subscribe)
	return r
}

func TestGetProfileSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	videoRepo := new(mocks.VideoRepositoryMock)
	handler := NewUserHandler(userRepo, videoRepo)
	router := setupUserRouter(handler)

	userRepo.On("GetProfile", mock.Anything, "bob").
		Return(models.Profile{ID: "bob", Username: "bob"}, nil).Once()
	videoRepo.On("UserVideoIDs", mock.Anything, "bob").Return([]string{"v1"}, nil).Once()
	videoRepo.On("GetVideo", mock.Anything, "v1").Return(models.Video{ID: "v1", UserID: "bob"}, nil).Once()
	userRepo.On("CountFollowers", mock.Anything, "bob").Return(3, nil).Once()
	userRepo.On("Subscriptions", mock.Anything, "bob").Return([]string{"carol"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/bob", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		User   models.ProfileView `json:"user"`
		Videos []models.Video     `json:"videos"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.User.VideosCount)
	assert.Equal(t, 3, resp.User.FollowersCount)
	assert.Equal(t, 1, resp.User.FollowingCount)
	assert.Len(t, resp.Videos, 1)
	userRepo.AssertExpectations(t)
	videoRepo.AssertExpectations(t)
}

func TestGetProfileNotFound(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.VideoRepositoryMock))
	router := setupUserRouter(handler)

	userRepo.On("GetProfile", mock.Anything, "ghost").
		Return(models.Profile{}, repositories.ErrProfileNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestUpdateProfileSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.VideoRepositoryMock))
	router := setupUserRouter(handler)

	userRepo.On("UpdateProfile", mock.Anything, "alice", map[string]any{"bio": "hello"}).
		Return(models.Profile{ID: "alice", Bio: "hello"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/profile", bytes.NewBufferString(`{"bio":"hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestSubscribeToggle(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.VideoRepositoryMock))
	router := setupUserRouter(handler)

	userRepo.On("GetProfile", mock.Anything, "bob").Return(models.Profile{ID: "bob"}, nil).Once()
	userRepo.On("ToggleSubscription", mock.Anything, "alice", "bob").Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewBufferString(`{"targetUserId":"bob"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["isSubscribed"])
	userRepo.AssertExpectations(t)
}

func TestSubscribeToSelfRejected(t *testing.T) {
	handler := NewUserHandler(new(mocks.UserRepositoryMock), new(mocks.VideoRepositoryMock))
	router := setupUserRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewBufferString(`{"targetUserId":"alice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscribeUnknownTarget(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.VideoRepositoryMock))
	router := setupUserRouter(handler)

	userRepo.On("GetProfile", mock.Anything, "ghost").
		Return(models.Profile{}, repositories.ErrProfileNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewBufferString(`{"targetUserId":"ghost"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}
