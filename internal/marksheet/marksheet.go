// Package marksheet wires extraction, best-of-K scoring and eligibility
// into one call for the CLI and the HTTP service.
package marksheet

import (
	"context"
	"fmt"

	"github.com/insightdelivered/marksheet-reader/internal/models"
	"github.com/insightdelivered/marksheet-reader/internal/ocr"
	"github.com/insightdelivered/marksheet-reader/internal/parser"
	"github.com/insightdelivered/marksheet-reader/internal/score"
)

// Request carries the per-call options.
type Request struct {
	// Stream is the stream id to check eligibility for; empty skips the check.
	Stream string
	// K is the number of subjects counted; 0 uses the reader default.
	K int
	// Class overrides class detection.
	Class models.ClassType
	// Trace records how each OCR line was classified.
	Trace bool
}

// Report is the outcome of reading one marksheet.
type Report struct {
	Source    string                     `json:"source,omitempty"`
	Engine    string                     `json:"engine,omitempty"`
	RawText   string                     `json:"rawText,omitempty"`
	Class     models.ClassType           `json:"classType"`
	Subjects  *models.SubjectMarks       `json:"subjects"`
	Aggregate models.AggregateResult     `json:"aggregate"`
	Verdict   *models.EligibilityVerdict `json:"verdict,omitempty"`
	Message   string                     `json:"message,omitempty"`
	// ExtractionFailed is set when no subject row was found; the caller
	// should fall back to manual entry with ManualSubjects.
	ExtractionFailed bool               `json:"extractionFailed"`
	ManualSubjects   []string           `json:"manualSubjects,omitempty"`
	Trace            []models.TraceLine `json:"trace,omitempty"`
}

// Reader holds the read-only configuration of the pipeline.
type Reader struct {
	extractor *parser.Extractor
	cutoffs   models.CutoffTable
	bestOf    int
}

// NewReader builds a reader. cutoffs is copied.
func NewReader(rules parser.Rules, cutoffs models.CutoffTable, bestOf int) *Reader {
	table := make(models.CutoffTable, len(cutoffs))
	for id, c := range cutoffs {
		table[id] = c
	}
	if bestOf <= 0 {
		bestOf = score.DefaultBestOf
	}
	return &Reader{
		extractor: parser.NewExtractor(rules),
		cutoffs:   table,
		bestOf:    bestOf,
	}
}

// Cutoffs returns a copy of the reader's stream table.
func (r *Reader) Cutoffs() models.CutoffTable {
	table := make(models.CutoffTable, len(r.cutoffs))
	for id, c := range r.cutoffs {
		table[id] = c
	}
	return table
}

// Evaluate extracts marks from OCR text and scores them. The only error is
// an unknown stream; text without subject rows gives a report with
// ExtractionFailed set.
func (r *Reader) Evaluate(text string, req Request) (*Report, error) {
	if err := r.checkStream(req.Stream); err != nil {
		return nil, err
	}

	var subjects *models.SubjectMarks
	var trace []models.TraceLine
	if req.Trace {
		subjects, trace = r.extractor.ExtractWithTrace(text)
	} else {
		subjects = r.extractor.Extract(text)
	}

	class := req.Class
	if class == "" {
		if detected, ok := parser.DetectClass(text); ok {
			class = detected
		} else {
			class = models.Class12
		}
	}

	rep, err := r.score(subjects, class, req)
	if err != nil {
		return nil, err
	}
	rep.RawText = text
	rep.Trace = trace
	return rep, nil
}

// EvaluateMarks scores marks typed in by hand.
func (r *Reader) EvaluateMarks(subjects *models.SubjectMarks, req Request) (*Report, error) {
	if err := r.checkStream(req.Stream); err != nil {
		return nil, err
	}
	if subjects == nil {
		subjects = models.NewSubjectMarks()
	}
	class := req.Class
	if class == "" {
		class = models.Class12
	}
	return r.score(subjects, class, req)
}

// Scan recognises img with engine and evaluates the recognised text.
func (r *Reader) Scan(ctx context.Context, engine ocr.Engine, img ocr.Image, req Request) (*Report, error) {
	if err := r.checkStream(req.Stream); err != nil {
		return nil, err
	}
	text, err := ocr.Recognize(ctx, engine, img)
	if err != nil {
		return nil, fmt.Errorf("%s ocr: %w", engine.Name(), err)
	}
	rep, err := r.Evaluate(text, req)
	if err != nil {
		return nil, err
	}
	rep.Engine = engine.Name()
	return rep, nil
}

func (r *Reader) checkStream(stream string) error {
	if stream == "" {
		return nil
	}
	if _, ok := r.cutoffs[stream]; !ok {
		return fmt.Errorf("%w: %q", score.ErrInvalidStream, stream)
	}
	return nil
}

func (r *Reader) score(subjects *models.SubjectMarks, class models.ClassType, req Request) (*Report, error) {
	k := req.K
	if k <= 0 {
		k = r.bestOf
	}

	rep := &Report{
		Class:     class,
		Subjects:  subjects,
		Aggregate: score.ComputeBestOf(subjects, k),
	}

	if subjects.Len() == 0 {
		rep.ExtractionFailed = true
		rep.ManualSubjects = models.DefaultSubjects(class)
		rep.Message = "Could not detect clear marks. Please check image quality or enter manually."
		return rep, nil
	}

	if req.Stream != "" {
		v, err := score.EvaluateEligibility(rep.Aggregate.Percentage, req.Stream, r.cutoffs)
		if err != nil {
			return nil, err
		}
		rep.Verdict = &v
		rep.Message = v.Message()
	}
	return rep, nil
}
