// Package dva removes differential velocity aberration corrections taken
// while the spacecraft pointing could not be trusted.
package dva

import (
	"fmt"

	"cadenceqa/internal/models"
	"cadenceqa/pkg/quality"
)

// Disqualifying marks cadences whose DVA correction is gapped.
const Disqualifying = quality.Desaturation |
	quality.CoarsePoint |
	quality.DetectorElectronicsAnomaly |
	quality.EarthPoint |
	quality.Argabrightening |
	quality.SafeMode

// Filter returns a copy of dva with row and column gapped wherever flags
// intersects Disqualifying. Surviving samples are not touched. flags must
// be aligned with both series.
func Filter(dva models.TargetDva, flags []quality.Flag) (models.TargetDva, error) {
	for _, s := range []*models.FloatSeries{&dva.Row, &dva.Column} {
		if err := s.Validate(); err != nil {
			return models.TargetDva{}, err
		}
		if s.Len() != len(flags) {
			return models.TargetDva{}, fmt.Errorf("%w: target %d has %d DVA samples but %d quality flags",
				models.ErrContract, dva.KeplerID, s.Len(), len(flags))
		}
	}

	out := models.TargetDva{
		KeplerID: dva.KeplerID,
		Row:      *dva.Row.Clone(),
		Column:   *dva.Column.Clone(),
	}
	for i, f := range flags {
		if f.Has(Disqualifying) {
			out.Row.Gaps[i] = true
			out.Column.Gaps[i] = true
		}
	}
	return out, nil
}

// FillGaps materialises the row and column corrections, substituting fill
// for every gapped sample.
func FillGaps(dva models.TargetDva, fill float32) (row, column []float32) {
	return materialise(&dva.Row, fill), materialise(&dva.Column, fill)
}

func materialise(s *models.FloatSeries, fill float32) []float32 {
	out := make([]float32, s.Len())
	for i, v := range s.Values {
		if s.Gaps[i] {
			out[i] = fill
			continue
		}
		out[i] = v
	}
	return out
}
