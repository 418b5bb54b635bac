package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFileFetcher(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("image bytes")
	if err := os.WriteFile(filepath.Join(dir, "photo.jpg"), payload, 0o600); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	fetcher := NewLocalFileFetcher(dir)
	data, err := fetcher.Fetch(context.Background(), "photo.jpg")
	if err != nil {
		t.Fatalf("Expected successful read, got %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Expected %q, got %q", payload, data)
	}
}

func TestLocalFileFetcher_RejectsEscapingPaths(t *testing.T) {
	fetcher := NewLocalFileFetcher(t.TempDir())

	for _, ref := range []string{"../etc/passwd", "../../secret", "a/../../b"} {
		if _, err := fetcher.Fetch(context.Background(), ref); err == nil {
			t.Errorf("Expected rejection for escaping ref %q", ref)
		}
	}
}

func TestLocalFileFetcher_MissingFile(t *testing.T) {
	fetcher := NewLocalFileFetcher(t.TempDir())
	if _, err := fetcher.Fetch(context.Background(), "absent.png"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLocalFileFetcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewLocalFileFetcher(t.TempDir())
	if _, err := fetcher.Fetch(ctx, "photo.jpg"); err == nil {
		t.Error("Expected context error")
	}
}
