package extractor

import (
	"context"
	"os/exec"
	"testing"
)

func TestIsOCRAvailable(t *testing.T) {
	result := IsOCRAvailable()
	t.Logf("IsOCRAvailable() = %v", result)

	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	expected := err1 == nil && err2 == nil
	if result != expected {
		t.Errorf("IsOCRAvailable() = %v, but direct check says %v", result, expected)
	}
}

func TestExtractTextOCR_MissingTools(t *testing.T) {
	if IsOCRAvailable() {
		t.Skip("OCR tools are installed; cannot test missing-tool error path")
	}

	if _, err := ExtractTextOCR(context.Background(), "/nonexistent/file.pdf"); err == nil {
		t.Error("expected error when OCR tools are not installed")
	}
}

func TestExtractTextOCR_NonexistentFile(t *testing.T) {
	if !IsOCRAvailable() {
		t.Skip("OCR tools not installed; skipping")
	}

	if _, err := ExtractTextOCR(context.Background(), "/tmp/nonexistent-marksheet-12345.pdf"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestGetPageCountForOCR(t *testing.T) {
	if count := getPageCountForOCR("/tmp/nonexistent-marksheet-12345.pdf"); count != 0 {
		t.Errorf("expected 0 pages for nonexistent file, got %d", count)
	}
}
