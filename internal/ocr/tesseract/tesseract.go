// Package tesseract recognises marksheet images with the local Tesseract
// library through gosseract.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/insightdelivered/marksheet-reader/internal/ocr"
)

// Engine implements ocr.Engine. A new gosseract client is created per call,
// so one Engine can serve concurrent requests.
type Engine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// New returns a Tesseract engine with default language hints.
func New(languages ...string) *Engine {
	return &Engine{
		clientFactory: gosseract.NewClient,
		languages:     append([]string(nil), languages...),
	}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs Tesseract on the image. Marksheets are a single column of
// rows, so page segmentation mode 4 (single column) is used.
func (e *Engine) Recognize(ctx context.Context, img ocr.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(img.Data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	langs := img.Languages
	if len(langs) == 0 {
		langs = e.languages
	}
	if len(langs) > 0 {
		if err := c.SetLanguage(langs...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
		return "", fmt.Errorf("set page segmentation: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
