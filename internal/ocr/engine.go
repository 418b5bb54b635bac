package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes text in an image. Implementations must be safe for
// concurrent use.
type Engine interface {
	Recognize(ctx context.Context, imageBytes []byte) (string, error)
}

// TesseractEngine implements Engine with the gosseract client. It requires
// the Tesseract C library and the configured language data at runtime.
type TesseractEngine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed engine. With no languages
// given it defaults to French, the language of the supported documents.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"fra"}
	}
	return &TesseractEngine{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// Recognize runs OCR over the given encoded image bytes. A fresh client is
// used per call so concurrent recognitions do not share state.
func (e *TesseractEngine) Recognize(ctx context.Context, imageBytes []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(imageBytes); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
