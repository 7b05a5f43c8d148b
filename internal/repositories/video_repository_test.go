package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortkat/internal/kvstore"
	"shortkat/internal/models"
)

func newVideoRepo() *VideoRepo {
	return NewVideoRepo(kvstore.NewMemoryStore(), kvstore.NewKeyedMutex())
}

func TestCreateVideoPrependsToOwnerList(t *testing.T) {
	repo := newVideoRepo()
	ctx := context.Background()

	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "v1", UserID: "alice"}))
	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "v2", UserID: "alice"}))

	ids, err := repo.UserVideoIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"v2", "v1"}, ids, "newest video first")
}

func TestGetVideoNotFound(t *testing.T) {
	repo := newVideoRepo()

	_, err := repo.GetVideo(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrVideoNotFound)
}

func TestListVideosNewestFirst(t *testing.T) {
	repo := newVideoRepo()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "old", UserID: "alice", CreatedAt: base}))
	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "new", UserID: "alice", CreatedAt: base.Add(time.Hour)}))

	videos, err := repo.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "new", videos[0].ID)
	assert.Equal(t, "old", videos[1].ID)
}

func TestToggleLikeUpdatesCounter(t *testing.T) {
	repo := newVideoRepo()
	ctx := context.Background()

	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "v1", UserID: "alice"}))

	liked, total, err := repo.ToggleLike(ctx, "v1", "bob")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, total)

	liked, total, err = repo.ToggleLike(ctx, "v1", "bob")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, total)

	video, err := repo.GetVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, video.Likes)
}

func TestToggleLikeUnknownVideo(t *testing.T) {
	repo := newVideoRepo()

	_, _, err := repo.ToggleLike(context.Background(), "ghost", "bob")
	require.ErrorIs(t, err, ErrVideoNotFound)
}

func TestAddCommentUpdatesCounter(t *testing.T) {
	repo := newVideoRepo()
	ctx := context.Background()

	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "v1", UserID: "alice"}))

	total, err := repo.AddComment(ctx, models.Comment{ID: "c1", VideoID: "v1", UserID: "bob", Text: "first"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = repo.AddComment(ctx, models.Comment{ID: "c2", VideoID: "v1", UserID: "carol", Text: "second"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	comments, err := repo.ListComments(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)

	video, err := repo.GetVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 2, video.Comments)
}

func TestRecordViewTracksRetention(t *testing.T) {
	repo := newVideoRepo()
	ctx := context.Background()

	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "v1", UserID: "alice"}))

	require.NoError(t, repo.RecordView(ctx, "v1", 15, 30))
	require.NoError(t, repo.RecordView(ctx, "v1", 30, 30))

	video, err := repo.GetVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 2, video.Views)

	analytics, err := repo.VideoAnalytics(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, analytics.Views, 2)
	assert.Equal(t, []float64{50, 100}, analytics.Retention)
}

func TestConcurrentMutationsKeepVideoCounters(t *testing.T) {
	repo := newVideoRepo()
	ctx := context.Background()

	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "v1", UserID: "alice"}))

	// Likes, comments and views all land on the same video document; none
	// of them may overwrite another's counter.
	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(3)
		userID := fmt.Sprintf("user-%d", i)
		go func() {
			defer wg.Done()
			_, _, err := repo.ToggleLike(ctx, "v1", userID)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.RecordView(ctx, "v1", 10, 20))
		}()
		go func() {
			defer wg.Done()
			_, err := repo.AddComment(ctx, models.Comment{ID: userID, VideoID: "v1", UserID: userID, Text: "x"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	video, err := repo.GetVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, n, video.Likes)
	assert.Equal(t, n, video.Views)
	assert.Equal(t, n, video.Comments)
}

func TestRecordViewZeroDuration(t *testing.T) {
	repo := newVideoRepo()
	ctx := context.Background()

	require.NoError(t, repo.CreateVideo(ctx, models.Video{ID: "v1", UserID: "alice"}))
	require.NoError(t, repo.RecordView(ctx, "v1", 10, 0))

	analytics, err := repo.VideoAnalytics(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, analytics.Retention)
}

func TestVideoAnalyticsEmptyWhenNoViews(t *testing.T) {
	repo := newVideoRepo()

	analytics, err := repo.VideoAnalytics(context.Background(), "v1")
	require.NoError(t, err)
	assert.Empty(t, analytics.Views)
	assert.Empty(t, analytics.Retention)
}
