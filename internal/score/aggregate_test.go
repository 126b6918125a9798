package score

import (
	"reflect"
	"testing"

	"github.com/insightdelivered/marksheet-reader/internal/models"
)

func marks(entries ...models.SubjectMark) *models.SubjectMarks {
	return models.NewSubjectMarks(entries...)
}

func TestComputeBestOf(t *testing.T) {
	subjects := marks(
		models.SubjectMark{Name: "A", Mark: 90},
		models.SubjectMark{Name: "B", Mark: 85},
		models.SubjectMark{Name: "C", Mark: 80},
		models.SubjectMark{Name: "D", Mark: 75},
		models.SubjectMark{Name: "E", Mark: 70},
		models.SubjectMark{Name: "F", Mark: 65},
	)

	got := ComputeBestOf(subjects, 5)

	if want := []string{"A", "B", "C", "D", "E"}; !reflect.DeepEqual(got.Selected, want) {
		t.Errorf("selected: got %v, want %v", got.Selected, want)
	}
	if got.Total != 400 {
		t.Errorf("total: got %d, want 400", got.Total)
	}
	if got.Percentage != 80.00 {
		t.Errorf("percentage: got %v, want 80.00", got.Percentage)
	}
	if got.MaxPossible != 500 {
		t.Errorf("max possible: got %d, want 500", got.MaxPossible)
	}
	if len(got.AllSubjects) != 6 {
		t.Fatalf("all subjects: got %d, want 6", len(got.AllSubjects))
	}
	if got.AllSubjects[5] != (models.SubjectMark{Name: "F", Mark: 65}) {
		t.Errorf("last subject: got %v, want F:65", got.AllSubjects[5])
	}
}

func TestComputeBestOfEmpty(t *testing.T) {
	for _, subjects := range []*models.SubjectMarks{nil, models.NewSubjectMarks()} {
		got := ComputeBestOf(subjects, 5)
		if got.Total != 0 || got.Percentage != 0 || got.MaxPossible != 0 {
			t.Errorf("got total=%d percentage=%v max=%d, want zeros", got.Total, got.Percentage, got.MaxPossible)
		}
		if got.Selected == nil || len(got.Selected) != 0 {
			t.Errorf("selected: got %#v, want empty slice", got.Selected)
		}
		if got.AllSubjects == nil || len(got.AllSubjects) != 0 {
			t.Errorf("all subjects: got %#v, want empty slice", got.AllSubjects)
		}
	}
}

func TestComputeBestOfFewerThanK(t *testing.T) {
	got := ComputeBestOf(marks(
		models.SubjectMark{Name: "PHYSICS", Mark: 81},
		models.SubjectMark{Name: "CHEMISTRY", Mark: 90},
	), 5)

	if want := []string{"CHEMISTRY", "PHYSICS"}; !reflect.DeepEqual(got.Selected, want) {
		t.Errorf("selected: got %v, want %v", got.Selected, want)
	}
	if got.Total != 171 {
		t.Errorf("total: got %d, want 171", got.Total)
	}
	// Divided by the number selected, not by k.
	if got.Percentage != 85.5 {
		t.Errorf("percentage: got %v, want 85.5", got.Percentage)
	}
}

func TestComputeBestOfStableTies(t *testing.T) {
	got := ComputeBestOf(marks(
		models.SubjectMark{Name: "HINDI", Mark: 80},
		models.SubjectMark{Name: "ENGLISH", Mark: 90},
		models.SubjectMark{Name: "MUSIC", Mark: 80},
		models.SubjectMark{Name: "ART", Mark: 80},
		models.SubjectMark{Name: "HISTORY", Mark: 90},
	), 3)

	if want := []string{"ENGLISH", "HISTORY", "HINDI"}; !reflect.DeepEqual(got.Selected, want) {
		t.Errorf("selected: got %v, want %v", got.Selected, want)
	}
	wantAll := []string{"ENGLISH", "HISTORY", "HINDI", "MUSIC", "ART"}
	for i, s := range got.AllSubjects {
		if s.Name != wantAll[i] {
			t.Errorf("all[%d]: got %q, want %q", i, s.Name, wantAll[i])
		}
	}
}

func TestComputeBestOfDefaultK(t *testing.T) {
	var entries []models.SubjectMark
	for i, name := range []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7"} {
		entries = append(entries, models.SubjectMark{Name: name, Mark: 90 - i})
	}
	got := ComputeBestOf(marks(entries...), 0)
	if len(got.Selected) != DefaultBestOf {
		t.Errorf("selected: got %d, want %d", len(got.Selected), DefaultBestOf)
	}
}

func TestComputeBestOfRoundsHalfUp(t *testing.T) {
	// 657 / 8 = 82.125 exactly; half-up gives 82.13 (half-even would give 82.12).
	var entries []models.SubjectMark
	for i, m := range []int{83, 83, 83, 83, 83, 82, 80, 80} {
		entries = append(entries, models.SubjectMark{Name: string(rune('A' + i)), Mark: m})
	}
	got := ComputeBestOf(marks(entries...), 8)
	if got.Total != 657 {
		t.Fatalf("total: got %d, want 657", got.Total)
	}
	if got.Percentage != 82.13 {
		t.Errorf("percentage: got %v, want 82.13", got.Percentage)
	}
}

func TestRoundRatio(t *testing.T) {
	tests := []struct {
		num, den int
		expected float64
	}{
		{400, 5, 80},
		{247, 3, 82.33},
		{248, 3, 82.67},
		{657, 8, 82.13},
		{659, 8, 82.38},
		{1, 8, 0.13},
		{-657, 8, -82.13},
		{10, 0, 0},
	}

	for _, tt := range tests {
		if got := roundRatio(tt.num, tt.den); got != tt.expected {
			t.Errorf("roundRatio(%d, %d): got %v, want %v", tt.num, tt.den, got, tt.expected)
		}
	}
}
