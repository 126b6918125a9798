package models

import (
	"fmt"
	"strconv"
	"strings"
)

// AggregateResult is the best-of-K summary of a marksheet.
type AggregateResult struct {
	Selected    []string      `json:"selected"`
	Total       int           `json:"total"`
	Percentage  float64       `json:"percentage"`
	MaxPossible int           `json:"maxPossible"`
	AllSubjects []SubjectMark `json:"allSubjects"` // every subject, mark descending
}

// StreamCutoff is the admission requirement of one academic stream.
type StreamCutoff struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"name"`
	Cutoff      float64 `json:"cutoff"`
}

// CutoffTable maps stream ids to their cutoffs.
type CutoffTable map[string]StreamCutoff

// EligibilityVerdict is the outcome of checking a percentage against a stream.
type EligibilityVerdict struct {
	Eligible   bool    `json:"eligible"`
	Stream     string  `json:"stream"`
	StreamName string  `json:"streamName"`
	Required   float64 `json:"required"`
	Obtained   float64 `json:"obtained"`
	MarginAbs  float64 `json:"margin"`
}

// Message renders the verdict the way the admission form shows it.
func (v EligibilityVerdict) Message() string {
	if v.Eligible {
		return fmt.Sprintf("Eligible for %s", v.StreamName)
	}
	return fmt.Sprintf("Not eligible for %s. Required: %s%%, Obtained: %s%%",
		v.StreamName, formatNumber(v.Required), formatNumber(v.Obtained))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ClassType identifies which board examination a marksheet belongs to.
type ClassType string

const (
	Class10 ClassType = "10th"
	Class12 ClassType = "12th"
)

// ParseClassType accepts "10", "10th", "x", "12", "12th", "xii" (any case).
func ParseClassType(s string) (ClassType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "10", "10th", "x", "secondary":
		return Class10, nil
	case "12", "12th", "xii", "senior", "senior secondary":
		return Class12, nil
	default:
		return "", fmt.Errorf("unknown class type %q (use 10th or 12th)", s)
	}
}

// DefaultSubjects returns the subject list offered for manual entry when
// extraction finds nothing.
func DefaultSubjects(c ClassType) []string {
	switch c {
	case Class10:
		return []string{"Mathematics", "Science", "Social Science", "English", "Hindi"}
	default:
		return []string{"Physics", "Chemistry", "Mathematics", "English", "Computer Science"}
	}
}
