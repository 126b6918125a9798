package parser

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"PHYSICS 87", "PHYSICS 87"},
		{"ＰＨＹＳＩＣＳ ８７", "PHYSICS 87"},
		{"PHYSICS 87\r\nCHEMISTRY 90", "PHYSICS 87\nCHEMISTRY 90"},
		{"A\tB\x00C", "A\tBC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeText(tt.input)
			if got != tt.expected {
				t.Errorf("normalizeText(%q): got %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	if got := splitLines(""); got != nil {
		t.Errorf("splitLines(\"\"): got %v, want nil", got)
	}
	got := splitLines("a\n\nb")
	want := []string{"a", "", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestContainsAny(t *testing.T) {
	tests := []struct {
		text     string
		needles  []string
		expected bool
	}{
		{"Senior School Certificate", []string{"SENIOR SCHOOL"}, true},
		{"marks statement", []string{"certificate", "marks"}, true},
		{"marks statement", []string{"grade"}, false},
		{"anything", []string{""}, false},
	}

	for _, tt := range tests {
		if got := containsAny(tt.text, tt.needles); got != tt.expected {
			t.Errorf("containsAny(%q, %v): got %v, want %v", tt.text, tt.needles, got, tt.expected)
		}
	}
}
