package score

import (
	"errors"
	"testing"

	"github.com/insightdelivered/marksheet-reader/internal/models"
)

var testCutoffs = models.CutoffTable{
	"btech_cse": {ID: "btech_cse", DisplayName: "B. Tech CSE", Cutoff: 85},
	"bca":       {ID: "bca", DisplayName: "BCA", Cutoff: 70},
	"bcom":      {ID: "bcom", DisplayName: "B.Com", Cutoff: 60},
	"diploma":   {ID: "diploma", DisplayName: "Diploma", Cutoff: 70.004},
}

func TestEvaluateEligibility(t *testing.T) {
	tests := []struct {
		name         string
		percentage   float64
		stream       string
		wantEligible bool
		wantMargin   float64
		wantName     string
	}{
		{"exactly at cutoff", 85, "btech_cse", true, 0, "B. Tech CSE"},
		{"above cutoff", 92.4, "btech_cse", true, 7.4, "B. Tech CSE"},
		{"below cutoff", 69.99, "bca", false, 0.01, "BCA"},
		{"well below", 45.5, "bcom", false, 14.5, "B.Com"},
		{"cutoff finer than hundredths", 70.006, "diploma", true, 0, "Diploma"},
		{"finer cutoff below", 69.99, "diploma", false, 0.01, "Diploma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateEligibility(tt.percentage, tt.stream, testCutoffs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Eligible != tt.wantEligible {
				t.Errorf("eligible: got %v, want %v", got.Eligible, tt.wantEligible)
			}
			if got.MarginAbs != tt.wantMargin {
				t.Errorf("margin: got %v, want %v", got.MarginAbs, tt.wantMargin)
			}
			if got.StreamName != tt.wantName {
				t.Errorf("stream name: got %q, want %q", got.StreamName, tt.wantName)
			}
			if got.Obtained != tt.percentage {
				t.Errorf("obtained: got %v, want %v", got.Obtained, tt.percentage)
			}
		})
	}
}

func TestEvaluateEligibilityUnknownStream(t *testing.T) {
	_, err := EvaluateEligibility(70, "unknown_stream", testCutoffs)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidStream) {
		t.Errorf("expected ErrInvalidStream, got %v", err)
	}

	if _, err := EvaluateEligibility(70, "bca", nil); !errors.Is(err, ErrInvalidStream) {
		t.Errorf("nil table: expected ErrInvalidStream, got %v", err)
	}
}

func TestVerdictMessage(t *testing.T) {
	v, _ := EvaluateEligibility(85, "btech_cse", testCutoffs)
	if got := v.Message(); got != "Eligible for B. Tech CSE" {
		t.Errorf("got %q", got)
	}

	v, _ = EvaluateEligibility(80.5, "btech_cse", testCutoffs)
	want := "Not eligible for B. Tech CSE. Required: 85%, Obtained: 80.5%"
	if got := v.Message(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
