package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/insightdelivered/marksheet-reader/internal/models"
)

// Marksheet subject row pattern:
// [CODE]  SUBJECT NAME  MARK [MARK ...]
//
// Example lines:
//
//	"101 PHYSICS 087 045 092"
//	"ACCOUNTS & FINANCE 78"
//
// The subject must start and end with an uppercase letter. Anything after
// the mark group (grades, "PASS", stray OCR junk) is ignored.
var rowPattern = regexp.MustCompile(
	`^(?:(?P<code>\d{3})\s+)?` +
		`(?P<subject>[A-Z](?:[A-Z\s&]*[A-Z])?)` +
		`\s+(?P<marks>(?:\d{2,3}\s*)+)`,
)

var (
	codeGroup    = rowPattern.SubexpIndex("code")
	subjectGroup = rowPattern.SubexpIndex("subject")
	marksGroup   = rowPattern.SubexpIndex("marks")
)

// ParseRow decides whether line is a subject row and, if so, returns its
// code, subject name and numbers in the order they appear.
func ParseRow(line string) (models.SubjectRow, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return models.SubjectRow{}, false
	}

	m := rowPattern.FindStringSubmatch(line)
	if m == nil {
		return models.SubjectRow{}, false
	}

	numbers := parseMarks(m[marksGroup])
	if len(numbers) == 0 {
		return models.SubjectRow{}, false
	}

	return models.SubjectRow{
		Code:    m[codeGroup],
		Subject: strings.TrimSpace(m[subjectGroup]),
		Numbers: numbers,
	}, true
}

// parseMarks converts the whitespace-separated mark group to integers.
// Tokens that are not 2-3 digits ("087045" where OCR ran two columns
// together) are noise and are dropped.
func parseMarks(s string) []int {
	var out []int
	for _, tok := range strings.Fields(s) {
		if len(tok) < 2 || len(tok) > 3 {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 || n > 999 {
			continue
		}
		out = append(out, n)
	}
	return out
}
