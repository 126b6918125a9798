package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/insightdelivered/marksheet-reader/internal/models"
)

// ErrInvalidStream is returned when a stream id is not in the cutoff table.
var ErrInvalidStream = errors.New("invalid stream selected")

// EvaluateEligibility checks percentage against the cutoff of streamID.
// A percentage equal to the cutoff is eligible.
func EvaluateEligibility(percentage float64, streamID string, cutoffs models.CutoffTable) (models.EligibilityVerdict, error) {
	c, ok := cutoffs[streamID]
	if !ok {
		return models.EligibilityVerdict{}, fmt.Errorf("%w: %q", ErrInvalidStream, streamID)
	}

	name := c.DisplayName
	if name == "" {
		name = streamID
	}

	return models.EligibilityVerdict{
		Eligible:   percentage >= c.Cutoff,
		Stream:     streamID,
		StreamName: name,
		Required:   c.Cutoff,
		Obtained:   percentage,
		MarginAbs:  margin(percentage, c.Cutoff),
	}, nil
}

// margin is |a-b| rounded to two decimals.
func margin(a, b float64) float64 {
	return math.Round(math.Abs(a-b)*100) / 100
}
