package extractor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads a marksheet PDF and returns the text of each page.
// Digitally issued marksheets carry a text layer that the PDF library can
// read; if it cannot, the external pdftotext command (poppler-utils) is
// tried. Scanned marksheets have no text layer and need ExtractTextOCR.
func ExtractText(ctx context.Context, filePath string) ([]string, error) {
	pages, libErr := extractWithLibrary(filePath)
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	popplerPages, popplerErr := extractWithPdftotext(ctx, filePath)
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("PDF text extraction failed: %w", libErr)
	}
	return nil, ErrNoTextLayer
}

// ErrNoTextLayer means the PDF is most likely a scanned image.
var ErrNoTextLayer = errors.New("no readable text layer in PDF (scanned marksheet?)")

// textQuality returns the ratio of ASCII letters, digits, whitespace and
// common punctuation to all characters.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) ||
				unicode.IsSpace(r) || strings.ContainsRune(".,-/:;()'\"&%#+*", r)) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear on virtually every marksheet.
var commonWords = []string{
	"marks", "subject", "total", "examination", "board", "result",
	"grade", "theory", "practical", "roll", "certificate", "school",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires >20 chars, >60% readable characters and at least
// one marksheet word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 20 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

// IsReadableText is the exported version for use by other packages.
func IsReadableText(pages []string) bool {
	return isReadableText(pages)
}

func extractWithPdftotext(ctx context.Context, filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	numPages := getPageCountForOCR(filePath)
	if numPages == 0 {
		numPages = 1
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		pageStr := strconv.Itoa(i)
		out, err := exec.CommandContext(ctx, "pdftotext", "-layout", "-f", pageStr, "-l", pageStr, filePath, "-").Output()
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}

// extractWithLibrary uses the ledongthuc/pdf library, row-based first and
// then coordinate-based reconstruction.
func extractWithLibrary(filePath string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}
	return extractByContent(r, numPages), nil
}

// extractByRow joins the words of each text row, which keeps a marksheet
// row (code, subject, marks) on one line.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent groups text pieces by Y coordinate to rebuild rows, then
// orders each row by X. Wide gaps become a space so table cells stay apart.
func extractByContent(r *pdf.Reader, numPages int) []string {
	type textItem struct {
		x float64
		s string
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		// PDF Y grows upwards.
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var sb strings.Builder
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					sb.WriteString(" ")
				}
				sb.WriteString(item.s)
				prevX = item.x
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

// ExtractTextCombined returns the whole marksheet text of a PDF. The text
// layer is used when readable; otherwise the pages are OCRed if the tools
// are installed.
func ExtractTextCombined(ctx context.Context, filePath string, languages ...string) (string, error) {
	pages, err := ExtractText(ctx, filePath)
	if err != nil {
		if !IsOCRAvailable() {
			return "", err
		}
		ocrPages, ocrErr := ExtractTextOCR(ctx, filePath, languages...)
		if ocrErr != nil {
			return "", fmt.Errorf("%v; OCR fallback: %w", err, ocrErr)
		}
		pages = ocrPages
	}
	return strings.Join(pages, "\n"), nil
}
