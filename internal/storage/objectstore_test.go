package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/media/")

	url, err := store.Save(context.Background(), "videos", "clip.mp4", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "/media/videos/clip.mp4", url)

	content, err := os.ReadFile(filepath.Join(dir, "videos", "clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestDiskStoreSanitizesName(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "/media")

	url, err := store.Save(context.Background(), "videos", "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/media/videos/passwd", url)

	_, err = os.Stat(filepath.Join(dir, "videos", "passwd"))
	require.NoError(t, err)
}

func TestDiskStoreRejectsEmptyName(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/media")

	_, err := store.Save(context.Background(), "videos", "..", strings.NewReader("x"))
	require.Error(t, err)
}
