package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/insightdelivered/marksheet-reader/internal/ocr"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestRecognizeJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != string(pngHeader) {
			t.Errorf("unexpected upload %q", data)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("part content type: got %q", ct)
		}
		if got := r.FormValue("languages"); got != "eng,hin" {
			t.Errorf("languages: got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text": "101 PHYSICS 87 45 92"}`)
	}))
	defer srv.Close()

	e := New(srv.URL, 5*time.Second)
	text, err := e.Recognize(context.Background(), ocr.Image{Data: pngHeader, Languages: []string{"eng", "hin"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "101 PHYSICS 87 45 92" {
		t.Errorf("got %q", text)
	}
}

func TestRecognizePlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "MATHEMATICS 95\n")
	}))
	defer srv.Close()

	text, err := New(srv.URL, time.Second).Recognize(context.Background(), ocr.Image{Data: pngHeader})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "MATHEMATICS 95\n" {
		t.Errorf("got %q", text)
	}
}

func TestRecognizeRawTextField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"rawText": "CHEMISTRY 80"}`)
	}))
	defer srv.Close()

	text, err := New(srv.URL, time.Second).Recognize(context.Background(), ocr.Image{Data: pngHeader})
	if err != nil || text != "CHEMISTRY 80" {
		t.Errorf("got %q, %v", text, err)
	}
}

func TestRecognizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": "tesseract crashed"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Recognize(context.Background(), ocr.Image{Data: pngHeader})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "tesseract crashed") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestRecognizeCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "late")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(srv.URL, time.Second).Recognize(ctx, ocr.Image{Data: pngHeader}); err == nil {
		t.Error("expected error for canceled context")
	}
}
