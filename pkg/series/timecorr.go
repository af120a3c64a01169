package series

import (
	"fmt"

	"cadenceqa/internal/models"
	"cadenceqa/pkg/quality"
)

const (
	// JdTimeOfDayOffset turns an MJD into a JD - 2400000 offset date.
	JdTimeOfDayOffset = 0.5

	// kjdFromMjd is subtracted from an MJD to get a Kepler Julian date,
	// BJD - 2454833.
	kjdFromMjd = 54832.5

	secondsPerDay = 24.0 * 60.0 * 60.0
)

// BarycentricCorrectedTimes applies a per-cadence barycentric correction in
// days to mid-cadence MJDs and returns JD - 2400000. A cadence gapped in
// either input gets gapFill.
func BarycentricCorrectedTimes(mjds []float64, gaps []bool, correction *models.FloatSeries, gapFill float64) ([]float64, error) {
	return correctTimes(mjds, gaps, correction, gapFill, func(mjd float64) float64 {
		return mjd + JdTimeOfDayOffset
	})
}

// BkjdTimes is like BarycentricCorrectedTimes but returns barycentric Kepler
// Julian dates.
func BkjdTimes(mjds []float64, gaps []bool, correction *models.FloatSeries, gapFill float64) ([]float64, error) {
	return correctTimes(mjds, gaps, correction, gapFill, func(mjd float64) float64 {
		return mjd - kjdFromMjd
	})
}

func correctTimes(mjds []float64, gaps []bool, correction *models.FloatSeries, gapFill float64, base func(float64) float64) ([]float64, error) {
	if correction == nil {
		return nil, fmt.Errorf("%w: no barycentric correction", models.ErrContract)
	}
	if err := correction.Validate(); err != nil {
		return nil, err
	}
	if len(gaps) != len(mjds) || correction.Len() != len(mjds) {
		return nil, fmt.Errorf("%w: %d timestamps, %d gap indicators, %d corrections",
			models.ErrContract, len(mjds), len(gaps), correction.Len())
	}
	out := make([]float64, len(mjds))
	for i, mjd := range mjds {
		if gaps[i] || correction.Gaps[i] {
			out[i] = gapFill
			continue
		}
		out[i] = base(mjd) + float64(correction.Values[i])
	}
	return out, nil
}

// TimeCorrectionSeconds converts a correction series from days to seconds,
// writing gapFill on gapped cadences.
func TimeCorrectionSeconds(correction *models.FloatSeries, gapFill float32) ([]float32, error) {
	if err := correction.Validate(); err != nil {
		return nil, err
	}
	out := make([]float32, correction.Len())
	for i, days := range correction.Values {
		if correction.Gaps[i] {
			out[i] = gapFill
			continue
		}
		out[i] = float32(float64(days) * secondsPerDay)
	}
	return out, nil
}

// Unfill overwrites with gapValue every cadence the filled indicator series
// marks. The indicator series must start where values start.
func Unfill(values []float32, start int, gapValue float32, filled *models.IntSeries) error {
	if filled == nil {
		return nil
	}
	if err := filled.Validate(); err != nil {
		return err
	}
	for _, cadence := range filled.ValidCadences() {
		i := cadence - start
		if i < 0 || i >= len(values) {
			return fmt.Errorf("%w: filled cadence %d outside values starting at %d",
				models.ErrContract, cadence, start)
		}
		values[i] = gapValue
	}
	return nil
}

// CorrectedUnfilledFlux undoes the gap filling and outlier correction of a
// corrected flux series: filled cadences get gapValue and each outlier
// cadence gets its uncorrected value back.
func CorrectedUnfilledFlux(mapper quality.MjdCadenceMapper, filled *models.IntSeries,
	outliers *models.MjdEventSeries, flux *models.FloatSeries, gapValue float32) ([]float32, error) {
	if err := flux.Validate(); err != nil {
		return nil, err
	}
	out := append([]float32(nil), flux.Values...)
	if err := Unfill(out, flux.Start, gapValue, filled); err != nil {
		return nil, err
	}
	if outliers == nil || len(outliers.Events) == 0 {
		return out, nil
	}
	if mapper == nil {
		return nil, fmt.Errorf("%w: outliers %q need an MJD to cadence mapper", models.ErrContract, outliers.Name)
	}
	for _, e := range outliers.Events {
		cadence, err := mapper.MjdToCadence(e.Mjd)
		if err != nil {
			return nil, fmt.Errorf("restoring outlier at mjd %f: %w", e.Mjd, err)
		}
		i := cadence - flux.Start
		if i < 0 || i >= len(out) {
			return nil, fmt.Errorf("%w: outlier cadence %d outside flux %s", models.ErrContract, cadence, flux.Range())
		}
		out[i] = e.Value
	}
	return out, nil
}
