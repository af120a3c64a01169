package series

import (
	"fmt"
	"math"

	"cadenceqa/internal/models"
)

// UniqueValue reduces a series that should hold one value on every valid
// cadence. ok is false when the series is nil, fully gapped, or holds only
// NaN. Any other disagreement, a mix of NaN and numbers included, is an
// error.
func UniqueValue(s *models.FloatSeries) (value float32, ok bool, err error) {
	if s.IsEmpty() {
		return 0, false, nil
	}
	if err := s.Validate(); err != nil {
		return 0, false, err
	}

	first := -1
	for i, gap := range s.Gaps {
		if gap {
			continue
		}
		if first < 0 {
			first = i
			continue
		}
		a, b := s.Values[first], s.Values[i]
		aNaN, bNaN := isNaN(a), isNaN(b)
		if aNaN && bNaN {
			continue
		}
		if aNaN != bNaN || a != b {
			return 0, false, fmt.Errorf("%w: differing values %v at cadence %d and %v at cadence %d",
				models.ErrInvalidArgument, a, s.Start+first, b, s.Start+i)
		}
	}
	if isNaN(s.Values[first]) {
		return 0, false, nil
	}
	return s.Values[first], true, nil
}

func isNaN(v float32) bool {
	return math.IsNaN(float64(v))
}
