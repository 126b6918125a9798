package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalizeText folds OCR output to a form the row pattern understands.
// NFKC turns full-width digits and letters into ASCII; control characters
// other than newline and tab (including the \r of CRLF) are removed.
func normalizeText(text string) string {
	normed := norm.NFKC.String(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, needle := range needles {
		if needle != "" && strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
