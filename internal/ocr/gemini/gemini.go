// Package gemini transcribes marksheet images with a Gemini vision model.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/insightdelivered/marksheet-reader/internal/ocr"
)

const DefaultModel = "gemini-2.5-flash"

const transcribePrompt = `Transcribe this academic marksheet exactly as printed.
Output plain text only, one table row per line, keeping subject codes,
subject names in UPPERCASE and every number column in its original order.
Do not add commentary, markdown, totals or corrections.`

// generator is the subset of *genai.Models used by Engine.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Engine implements ocr.Engine with the Gemini API.
type Engine struct {
	models generator
	model  string
}

// New creates a Gemini-backed engine.
func New(ctx context.Context, apiKey, model string) (*Engine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Engine{models: client.Models, model: model}, nil
}

func (e *Engine) Name() string { return "gemini" }

func (e *Engine) Recognize(ctx context.Context, img ocr.Image) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(img.Data, img.Mime()),
		genai.NewPartFromText(transcribePrompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := e.models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}
	return resp.Text(), nil
}
