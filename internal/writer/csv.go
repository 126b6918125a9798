package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/marksheet-reader/internal/marksheet"
)

// CSVWriter writes a marksheet report to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the report to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, rep *marksheet.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, rep); err != nil {
		return err
	}
	return f.Close()
}

// Write writes one row per extracted subject, in marksheet order, flagging
// the subjects counted in the best-of-K aggregate.
func (w *CSVWriter) Write(out io.Writer, rep *marksheet.Report) error {
	writer := csv.NewWriter(out)

	if w.IncludeHeader {
		if rep.Source != "" {
			writer.Write([]string{"# Source", rep.Source})
		}
		if rep.Class != "" {
			writer.Write([]string{"# Class", string(rep.Class)})
		}
		if v := rep.Verdict; v != nil {
			writer.Write([]string{"# Stream", v.StreamName})
		}
		writer.Write([]string{"# Total", fmt.Sprintf("%d/%d", rep.Aggregate.Total, rep.Aggregate.MaxPossible)})
		writer.Write([]string{"# Percentage", formatPercent(rep.Aggregate.Percentage)})
		if v := rep.Verdict; v != nil {
			writer.Write([]string{"# Eligible", strconv.FormatBool(v.Eligible)})
			writer.Write([]string{"# Margin", formatPercent(v.MarginAbs)})
		}
	}

	if err := writer.Write([]string{"Subject", "Mark", "Selected"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	selected := make(map[string]bool, len(rep.Aggregate.Selected))
	for _, name := range rep.Aggregate.Selected {
		selected[name] = true
	}

	for _, s := range rep.Subjects.Entries() {
		row := []string{
			s.Name,
			strconv.Itoa(s.Mark),
			strconv.FormatBool(selected[s.Name]),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
