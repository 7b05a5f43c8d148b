package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore saves uploaded media and yields a URL the client can fetch.
type ObjectStore interface {
	Save(ctx context.Context, bucket, name string, r io.Reader) (string, error)
}

// DiskStore writes objects under baseDir/<bucket>/<name> and serves them
// from baseURL. The media directory is exposed as a static route.
type DiskStore struct {
	baseDir string
	baseURL string
}

// NewDiskStore constructs a DiskStore rooted at baseDir.
func NewDiskStore(baseDir, baseURL string) *DiskStore {
	return &DiskStore{baseDir: baseDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *DiskStore) Save(ctx context.Context, bucket, name string, r io.Reader) (string, error) {
	name = sanitize(name)
	if name == "" {
		return "", fmt.Errorf("empty object name")
	}

	dir := filepath.Join(s.baseDir, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.baseURL + "/" + bucket + "/" + name, nil
}

// sanitize strips path separators so an uploaded filename cannot escape the
// bucket directory.
func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." {
		return ""
	}
	return name
}

var _ ObjectStore = (*DiskStore)(nil)
