// Package ocr defines the contract between marksheet reading and the
// engines that turn a scanned image into text.
package ocr

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrNoText is returned when an engine recognised nothing in the image.
var ErrNoText = errors.New("ocr produced no text")

// Image is one scanned marksheet page.
type Image struct {
	Data []byte
	// MimeType is sniffed from Data when empty.
	MimeType string
	// Languages are Tesseract-style language hints ("eng", "hin").
	Languages []string
}

// Mime returns the declared content type or sniffs one from the data.
func (img Image) Mime() string {
	if img.MimeType != "" {
		return img.MimeType
	}
	return SniffMime(img.Data)
}

// Engine recognises the text of a single image. Implementations must be
// safe for concurrent use.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img Image) (string, error)
}

// SniffMime detects the image content type from magic bytes.
func SniffMime(b []byte) string {
	switch {
	case len(b) >= 4 && (string(b[:4]) == "II*\x00" || string(b[:4]) == "MM\x00*"):
		return "image/tiff"
	case len(b) >= 5 && string(b[:5]) == "%PDF-":
		return "application/pdf"
	}
	ct := http.DetectContentType(b)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// IsImageMime reports whether mime is an image type engines accept.
func IsImageMime(mime string) bool {
	switch mime {
	case "image/png", "image/jpeg", "image/tiff", "image/bmp", "image/gif", "image/webp":
		return true
	}
	return false
}

// Recognize runs engine on img and rejects blank output.
func Recognize(ctx context.Context, engine Engine, img Image) (string, error) {
	text, err := engine.Recognize(ctx, img)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
