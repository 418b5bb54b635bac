package repository

import (
	"context"
	"errors"
	"strings"

	"go-kyc-intake/internal/storage"
)

// ErrInvalidImageRef indicates an unusable image reference.
var ErrInvalidImageRef = errors.New("invalid image reference")

// ImageSource provides the raw bytes of submitted images.
type ImageSource interface {
	// Load retrieves the image bytes behind a reference.
	Load(ctx context.Context, ref string) ([]byte, error)

	// Validate rejects obviously unusable references before any I/O.
	Validate(ref string) error
}

// FetcherImageSource implements ImageSource on top of a storage fetcher.
type FetcherImageSource struct {
	fetcher storage.ImageFetcher
}

// NewFetcherImageSource wraps a storage fetcher as an image source.
func NewFetcherImageSource(fetcher storage.ImageFetcher) *FetcherImageSource {
	return &FetcherImageSource{fetcher: fetcher}
}

// Load retrieves the image bytes behind a reference.
func (s *FetcherImageSource) Load(ctx context.Context, ref string) ([]byte, error) {
	if err := s.Validate(ref); err != nil {
		return nil, err
	}
	return s.fetcher.Fetch(ctx, ref)
}

// Validate rejects empty or whitespace-only references.
func (s *FetcherImageSource) Validate(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return ErrInvalidImageRef
	}
	return nil
}
