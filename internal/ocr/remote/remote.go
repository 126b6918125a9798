// Package remote sends marksheet images to an HTTP recognition service.
//
// The service receives a multipart POST with the image in the "file" field
// and replies with either JSON ({"text": "..."}) or plain text.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/insightdelivered/marksheet-reader/internal/ocr"
)

// maxResponseBytes bounds the body read from the service.
const maxResponseBytes = 4 << 20

// Engine implements ocr.Engine over HTTP.
type Engine struct {
	url   string
	httpc *http.Client
}

// New returns an engine posting to url with the given timeout.
func New(url string, timeout time.Duration) *Engine {
	return &Engine{
		url:   url,
		httpc: &http.Client{Timeout: timeout},
	}
}

func (e *Engine) Name() string { return "remote" }

type response struct {
	Text    string `json:"text"`
	RawText string `json:"rawText"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e *Engine) Recognize(ctx context.Context, img ocr.Image) (string, error) {
	body, contentType, err := encodeForm(img)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("remote ocr: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read remote ocr response: %w", err)
	}

	isJSON := strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json")
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if isJSON {
			var r response
			if json.Unmarshal(data, &r) == nil {
				msg = firstNonEmpty(r.Error, r.Message, msg)
			}
		}
		return "", fmt.Errorf("remote ocr %d: %s", resp.StatusCode, msg)
	}

	if !isJSON {
		return string(data), nil
	}
	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return "", fmt.Errorf("decode remote ocr response: %w", err)
	}
	if r.Error != "" {
		return "", fmt.Errorf("remote ocr: %s", r.Error)
	}
	return firstNonEmpty(r.Text, r.RawText), nil
}

func encodeForm(img ocr.Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="marksheet"`)
	h.Set("Content-Type", img.Mime())
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", fmt.Errorf("write image: %w", err)
	}
	if len(img.Languages) > 0 {
		if err := mw.WriteField("languages", strings.Join(img.Languages, ",")); err != nil {
			return nil, "", fmt.Errorf("write languages: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
