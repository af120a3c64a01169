// Package interpolation fills gapped samples of uniformly sampled cadence
// series.
package interpolation

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"cadenceqa/internal/models"
)

// FillGaps returns a copy of values with every gapped sample replaced.
//
// Each maximal gapped run between two valid samples a and b is filled
// linearly with step (b-a)/(run+1). A run at the start of the array is
// extrapolated backward with the slope of the first resolved pair, and a run
// at the end forward with the slope of the last resolved pair.
func FillGaps(values []float64, gaps []bool) ([]float64, error) {
	if len(values) != len(gaps) {
		return nil, fmt.Errorf("%w: %d values but %d gap indicators", models.ErrContract, len(values), len(gaps))
	}
	filled := append([]float64(nil), values...)

	var xs, ys []float64
	for i, gap := range gaps {
		if !gap {
			xs = append(xs, float64(i))
			ys = append(ys, values[i])
		}
	}
	if len(xs) == len(values) {
		return filled, nil
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: gap filling needs at least two valid samples, found %d",
			models.ErrInvalidArgument, len(xs))
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fitting valid samples: %w", err)
	}

	first := int(xs[0])
	last := int(xs[len(xs)-1])
	for i := first + 1; i < last; i++ {
		if gaps[i] {
			filled[i] = pl.Predict(float64(i))
		}
	}

	if first > 0 {
		slope := filled[first+1] - filled[first]
		for i := first - 1; i >= 0; i-- {
			filled[i] = filled[first] - slope*float64(first-i)
		}
	}
	if last < len(filled)-1 {
		slope := filled[last] - filled[last-1]
		for i := last + 1; i < len(filled); i++ {
			filled[i] = filled[last] + slope*float64(i-last)
		}
	}
	return filled, nil
}

// FillGapsFloat32 is FillGaps for single precision series. The arithmetic
// is done in double precision.
func FillGapsFloat32(values []float32, gaps []bool) ([]float32, error) {
	wide := make([]float64, len(values))
	for i, v := range values {
		wide[i] = float64(v)
	}
	filled, err := FillGaps(wide, gaps)
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(filled))
	for i, v := range filled {
		out[i] = float32(v)
	}
	return out, nil
}

// FillSeries returns a gap-free copy of s.
func FillSeries(s *models.FloatSeries) (*models.FloatSeries, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	values, err := FillGapsFloat32(s.Values, s.Gaps)
	if err != nil {
		return nil, err
	}
	return &models.FloatSeries{Start: s.Start, Values: values, Gaps: make([]bool, len(values))}, nil
}

// FillTimestamps fills gapped mid-cadence timestamps by stepping the mean
// spacing of adjacent valid timestamps. It assumes the spacing is nearly
// constant, which holds for cadence clocks.
func FillTimestamps(mjds []float64, gaps []bool) ([]float64, error) {
	if len(mjds) != len(gaps) {
		return nil, fmt.Errorf("%w: %d timestamps but %d gap indicators", models.ErrContract, len(mjds), len(gaps))
	}
	if len(gaps) < 2 {
		return nil, fmt.Errorf("%w: cannot fill timestamps of a series shorter than two", models.ErrInvalidArgument)
	}

	var deltas []float64
	firstValid := -1
	allValid := true
	for i, gap := range gaps {
		if gap {
			allValid = false
			continue
		}
		if firstValid < 0 {
			firstValid = i
		}
		if i > 0 && !gaps[i-1] {
			deltas = append(deltas, mjds[i]-mjds[i-1])
		}
	}
	filled := append([]float64(nil), mjds...)
	if allValid {
		return filled, nil
	}
	if len(deltas) == 0 {
		return nil, fmt.Errorf("%w: timestamps do not have enough adjacent valid points", models.ErrInvalidArgument)
	}
	meanDelta := stat.Mean(deltas, nil)

	for i := firstValid + 1; i < len(filled); i++ {
		if gaps[i] {
			filled[i] = filled[i-1] + meanDelta
		}
	}
	for i := firstValid - 1; i >= 0; i-- {
		filled[i] = filled[i+1] - meanDelta
	}
	return filled, nil
}
