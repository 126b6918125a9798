// Package parser turns OCR text of a marksheet into subject marks.
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/marksheet-reader/internal/models"
)

// DefaultNoiseWords are table header words that can look like a subject
// row once OCR attaches a number to them.
var DefaultNoiseWords = []string{
	"THEORY", "SUBJECT", "TOTAL", "SUBJECT NAME", "POSITIONAL",
	"PRACTICAL", "MAXIMUM", "MARKS",
}

// DefaultMinSubjectLen rejects one and two letter OCR fragments.
const DefaultMinSubjectLen = 3

// Rules tune which parsed rows count as subjects.
type Rules struct {
	// NoiseWords are subject names that are never subjects. Compared
	// after trimming, case-sensitively.
	NoiseWords []string `json:"noiseWords"`
	// MinSubjectLen is the shortest accepted subject name, in characters.
	MinSubjectLen int `json:"minSubjectLen"`
}

// DefaultRules returns the rules tuned on observed transcripts.
func DefaultRules() Rules {
	return Rules{
		NoiseWords:    append([]string(nil), DefaultNoiseWords...),
		MinSubjectLen: DefaultMinSubjectLen,
	}
}

// WithNoiseWords returns a copy of r with extra noise words appended.
func (r Rules) WithNoiseWords(words ...string) Rules {
	out := r
	out.NoiseWords = append(append([]string(nil), r.NoiseWords...), words...)
	return out
}

// Extractor applies Rules to OCR text. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	noise  map[string]struct{}
	minLen int
}

// NewExtractor builds an extractor. A non-positive MinSubjectLen falls back
// to DefaultMinSubjectLen.
func NewExtractor(rules Rules) *Extractor {
	e := &Extractor{
		noise:  make(map[string]struct{}, len(rules.NoiseWords)),
		minLen: rules.MinSubjectLen,
	}
	if e.minLen <= 0 {
		e.minLen = DefaultMinSubjectLen
	}
	for _, w := range rules.NoiseWords {
		w = strings.TrimSpace(w)
		if w != "" {
			e.noise[w] = struct{}{}
		}
	}
	return e
}

var defaultExtractor = NewExtractor(DefaultRules())

// ExtractMarks extracts subject marks using DefaultRules.
func ExtractMarks(text string) *models.SubjectMarks {
	return defaultExtractor.Extract(text)
}

// Extract returns subject → mark for every subject row in text. The mark of
// a row is its last number, the "total" column on every observed layout.
// A subject seen twice keeps the later mark. Text with no subject rows
// yields an empty mapping, never an error.
func (e *Extractor) Extract(text string) *models.SubjectMarks {
	marks, _ := e.extract(text, false)
	return marks
}

// ExtractWithTrace is Extract plus a record of how each line was classified.
func (e *Extractor) ExtractWithTrace(text string) (*models.SubjectMarks, []models.TraceLine) {
	return e.extract(text, true)
}

func (e *Extractor) extract(text string, trace bool) (*models.SubjectMarks, []models.TraceLine) {
	marks := models.NewSubjectMarks()
	var lines []models.TraceLine

	for i, line := range splitLines(normalizeText(text)) {
		result, subject, mark := e.classify(line)
		if result == models.TraceRow {
			marks.Set(subject, mark)
		}
		if !trace {
			continue
		}
		tl := models.TraceLine{LineNum: i + 1, Text: line, Result: result, Subject: subject}
		if result == models.TraceRow {
			m := mark
			tl.Mark = &m
		}
		lines = append(lines, tl)
	}

	return marks, lines
}

func (e *Extractor) classify(line string) (result, subject string, mark int) {
	if strings.TrimSpace(line) == "" {
		return models.TraceEmpty, "", 0
	}

	row, ok := ParseRow(line)
	if !ok {
		return models.TraceSkipped, "", 0
	}
	mark, ok = row.LastNumber()
	if !ok {
		return models.TraceSkipped, "", 0
	}

	subject = strings.TrimSpace(row.Subject)
	if _, noise := e.noise[subject]; noise {
		return models.TraceNoise, subject, 0
	}
	if utf8.RuneCountInString(subject) < e.minLen {
		return models.TraceShort, subject, 0
	}
	return models.TraceRow, subject, mark
}
