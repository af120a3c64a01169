package series

import (
	"fmt"

	"cadenceqa/internal/models"
)

// StartValue estimates a mid-cadence correction at the start of window from
// its first valid sample: first - (second - first)/2, where second is the
// next cadence. A nil window means the whole series.
func StartValue(s *models.FloatSeries, window *models.CadenceRange) (float32, error) {
	first, last, err := boundaryIndices(s, window)
	if err != nil {
		return 0, err
	}
	for first <= last && s.Gaps[first] {
		first++
	}
	if first > last {
		return 0, fmt.Errorf("%w: no valid sample in the window", models.ErrInvalidArgument)
	}
	if first == last {
		return s.Values[first], nil
	}
	if s.Gaps[first+1] {
		return 0, fmt.Errorf("%w: cadence %d after the first valid cadence is gapped",
			models.ErrInvalidArgument, s.Start+first+1)
	}
	a := float64(s.Values[first])
	b := float64(s.Values[first+1])
	return float32(a - (b-a)/2), nil
}

// EndValue estimates the correction at the end of window from its last
// valid sample: last + (last - penultimate)/2.
func EndValue(s *models.FloatSeries, window *models.CadenceRange) (float32, error) {
	first, last, err := boundaryIndices(s, window)
	if err != nil {
		return 0, err
	}
	for last >= first && s.Gaps[last] {
		last--
	}
	if last < first {
		return 0, fmt.Errorf("%w: no valid sample in the window", models.ErrInvalidArgument)
	}
	if first == last {
		return s.Values[last], nil
	}
	if s.Gaps[last-1] {
		return 0, fmt.Errorf("%w: cadence %d before the last valid cadence is gapped",
			models.ErrInvalidArgument, s.Start+last-1)
	}
	z := float64(s.Values[last])
	y := float64(s.Values[last-1])
	return float32(z + (z-y)/2), nil
}

func boundaryIndices(s *models.FloatSeries, window *models.CadenceRange) (int, int, error) {
	if s == nil || s.Len() == 0 {
		return 0, 0, fmt.Errorf("%w: empty correction series", models.ErrInvalidArgument)
	}
	if err := s.Validate(); err != nil {
		return 0, 0, err
	}
	r := s.Range()
	if window == nil {
		return 0, r.Length() - 1, nil
	}
	if err := window.Validate(); err != nil {
		return 0, 0, err
	}
	if !r.Contains(window.Start) || !r.Contains(window.End) {
		return 0, 0, fmt.Errorf("%w: window %s is not inside series %s", models.ErrInvalidArgument, *window, r)
	}
	return r.Index(window.Start), r.Index(window.End), nil
}
