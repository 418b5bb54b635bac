package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalFileFetcher reads image bytes from a base directory on disk, used in
// development and in deployments where uploads land on a shared volume.
type LocalFileFetcher struct {
	baseDir string
}

// NewLocalFileFetcher builds a fetcher rooted at baseDir.
func NewLocalFileFetcher(baseDir string) *LocalFileFetcher {
	return &LocalFileFetcher{baseDir: filepath.Clean(baseDir)}
}

// Fetch reads the referenced file. Refs escaping the base directory are
// rejected.
func (f *LocalFileFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Clean(filepath.Join(f.baseDir, ref))
	if path != f.baseDir && !strings.HasPrefix(path, f.baseDir+string(filepath.Separator)) {
		return nil, fmt.Errorf("path escapes image directory: %q", ref)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	return os.ReadFile(path)
}
