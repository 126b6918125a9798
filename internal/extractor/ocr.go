package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// IsOCRAvailable reports whether pdftoppm and tesseract are installed.
func IsOCRAvailable() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

// ExtractTextOCR rasterises a scanned marksheet PDF and runs Tesseract on
// every page. Requires pdftoppm (poppler-utils) and tesseract.
func ExtractTextOCR(ctx context.Context, filePath string, languages ...string) ([]string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available (install poppler-utils): %w", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return nil, fmt.Errorf("tesseract not available (install tesseract-ocr): %w", err)
	}
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("input file: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "marksheet-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// 300 DPI keeps small table digits legible.
	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", filePath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}
	var imageFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			imageFiles = append(imageFiles, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(imageFiles)
	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	lang := "eng"
	if len(languages) > 0 {
		lang = strings.Join(languages, "+")
	}

	var pages []string
	for _, imgFile := range imageFiles {
		outBase := strings.TrimSuffix(imgFile, ".png") + "-ocr"
		// PSM 4: single column of rows, the marksheet table layout.
		cmd := exec.CommandContext(ctx, "tesseract", imgFile, outBase, "-l", lang, "--psm", "4")
		if out, err := cmd.CombinedOutput(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			fmt.Fprintf(os.Stderr, "tesseract warning for %s: %v (output: %s)\n", filepath.Base(imgFile), err, string(out))
			continue
		}
		data, err := os.ReadFile(outBase + ".txt")
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("tesseract OCR produced no text from %d page images", len(imageFiles))
	}
	return pages, nil
}

// getPageCountForOCR returns the page count reported by pdfinfo, or 0.
func getPageCountForOCR(filePath string) int {
	out, err := exec.Command("pdfinfo", filePath).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))); err == nil {
				return n
			}
		}
	}
	return 0
}
