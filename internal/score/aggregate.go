// Package score computes best-of-K aggregates and admission eligibility.
// Every function is a pure function of its arguments.
package score

import (
	"sort"

	"github.com/insightdelivered/marksheet-reader/internal/models"
)

// DefaultBestOf is the number of subjects counted by the aggregate.
const DefaultBestOf = 5

// MaxMarkPerSubject is the full mark of one subject paper.
const MaxMarkPerSubject = 100

// ComputeBestOf sums the k highest marks and reports their average as a
// percentage rounded half-up to two decimals. Equal marks keep the order in
// which the subjects were inserted. A non-positive k means DefaultBestOf.
func ComputeBestOf(subjects *models.SubjectMarks, k int) models.AggregateResult {
	if k <= 0 {
		k = DefaultBestOf
	}

	all := subjects.Entries()
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Mark > all[j].Mark
	})

	n := k
	if len(all) < n {
		n = len(all)
	}

	result := models.AggregateResult{
		Selected:    make([]string, 0, n),
		AllSubjects: all,
	}
	for _, s := range all[:n] {
		result.Selected = append(result.Selected, s.Name)
		result.Total += s.Mark
	}
	if n > 0 {
		result.Percentage = roundRatio(result.Total, n)
		result.MaxPossible = MaxMarkPerSubject * n
	}
	return result
}

// roundRatio returns num/den rounded half away from zero to two decimals.
// The rounding is done on the exact quotient in integer arithmetic, so
// 657/8 = 82.125 becomes 82.13 regardless of float representation.
func roundRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	if den < 0 {
		num, den = -num, -den
	}
	neg := num < 0
	if neg {
		num = -num
	}
	hundredths := (num*200 + den) / (2 * den)
	if neg {
		hundredths = -hundredths
	}
	return float64(hundredths) / 100
}
