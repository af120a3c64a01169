// Package refcadence picks the anchor cadence of a target: the cadence
// closest to the middle of a window that has data and none of the
// disqualifying quality bits.
package refcadence

import (
	"errors"
	"fmt"

	"cadenceqa/internal/models"
	"cadenceqa/pkg/quality"
)

// ErrUnresolvable is returned when no cadence in the timeline qualifies.
var ErrUnresolvable = fmt.Errorf("%w: reference cadence unresolvable", models.ErrContract)

// BadQualityFlags disqualify a cadence from being the reference cadence.
const BadQualityFlags = quality.AttitudeTweak |
	quality.SafeMode |
	quality.CoarsePoint |
	quality.EarthPoint |
	quality.ReactionWheelZeroCrossing |
	quality.Desaturation |
	quality.Argabrightening |
	quality.ManualExclude |
	quality.PaArgabrightening |
	quality.DetectorElectronicsAnomaly |
	quality.NotFinePoint |
	quality.DataGap

// QualityMask returns BadQualityFlags adjusted for the mission mode. K2 data
// does not trust the electronics anomaly sub-flags, and zero crossings may
// be ignored by configuration.
func QualityMask(ignoreZeroCrossings, k2 bool) quality.Flag {
	mask := BadQualityFlags
	if ignoreZeroCrossings {
		mask &^= quality.ReactionWheelZeroCrossing
	}
	if k2 {
		mask &^= quality.DetectorElectronicsAnomaly
	}
	return mask
}

// Request describes one reference cadence search.
type Request struct {
	// FirstCadence is the cadence number of Timeline index 0.
	FirstCadence int

	// TargetStart and TargetEnd bound the window whose midpoint is preferred.
	TargetStart int
	TargetEnd   int

	Timeline *models.CadenceTimeline

	// Flags is the assembled quality word, indexed like Timeline.
	Flags []quality.Flag

	Disqualifying quality.Flag

	// RowCentroid and ColumnCentroid are optional; when present a cadence
	// also needs an ungapped centroid.
	RowCentroid    *models.DoubleSeries
	ColumnCentroid *models.DoubleSeries
}

// Select returns the qualifying cadence nearest floor((TargetStart+TargetEnd)/2).
// The search alternates one step down, one step up, two down, two up and so
// on across the whole timeline, so a lower neighbour wins ties.
func Select(req Request) (int, error) {
	if req.Timeline == nil {
		return 0, fmt.Errorf("%w: no cadence timeline", models.ErrContract)
	}
	t := req.Timeline
	if err := t.Validate(); err != nil {
		return 0, err
	}
	n := t.Len()
	if n == 0 {
		return 0, ErrUnresolvable
	}
	if t.CadenceNumbers[0] != req.FirstCadence {
		return 0, fmt.Errorf("%w: timeline starts at cadence %d, expected %d",
			models.ErrContract, t.CadenceNumbers[0], req.FirstCadence)
	}
	if err := t.CheckContiguous(); err != nil {
		return 0, err
	}
	if len(req.Flags) != n {
		return 0, fmt.Errorf("%w: %d quality flags for %d cadences", models.ErrContract, len(req.Flags), n)
	}
	window := t.Range()
	if req.TargetEnd < req.TargetStart || !window.Contains(req.TargetStart) || !window.Contains(req.TargetEnd) {
		return 0, fmt.Errorf("%w: target window [%d,%d] is not inside %s",
			models.ErrContract, req.TargetStart, req.TargetEnd, window)
	}
	for _, s := range []*models.DoubleSeries{req.RowCentroid, req.ColumnCentroid} {
		if s == nil {
			continue
		}
		if err := s.Validate(); err != nil {
			return 0, err
		}
	}

	mid := floorHalf(req.TargetStart + req.TargetEnd)
	if req.qualifies(mid) {
		return mid, nil
	}
	for r := 1; mid-r >= window.Start || mid+r <= window.End; r++ {
		if down := mid - r; down >= window.Start && req.qualifies(down) {
			return down, nil
		}
		if up := mid + r; up <= window.End && req.qualifies(up) {
			return up, nil
		}
	}
	return 0, fmt.Errorf("%w: no cadence in %s is ungapped and free of %s", ErrUnresolvable, window, req.Disqualifying)
}

// floorHalf is n/2 rounded toward negative infinity.
func floorHalf(n int) int {
	if n < 0 && n%2 != 0 {
		return n/2 - 1
	}
	return n / 2
}

func (req *Request) qualifies(cadence int) bool {
	i := cadence - req.FirstCadence
	if req.Timeline.Gaps[i] || req.Flags[i].Has(req.Disqualifying) {
		return false
	}
	return centroidPresent(req.RowCentroid, cadence) && centroidPresent(req.ColumnCentroid, cadence)
}

func centroidPresent(s *models.DoubleSeries, cadence int) bool {
	if s == nil {
		return true
	}
	i := cadence - s.Start
	if i < 0 || i >= len(s.Gaps) {
		return false
	}
	return !s.Gaps[i]
}

// IsUnresolvable reports whether err came from an exhausted search.
func IsUnresolvable(err error) bool {
	return errors.Is(err, ErrUnresolvable)
}
