// Package series holds the array transforms applied to calibrated
// per-cadence series before they are exported: resizing to an export window,
// boundary extrapolation, unique-value reduction and time corrections.
package series

import (
	"fmt"

	"cadenceqa/internal/models"
)

// Resize realigns values, which cover src, onto dst. Cadences of dst that src
// covers are copied verbatim and the rest are set to fill. Padding on one end
// and truncation on the other may happen in the same call.
func Resize[T models.Sample](dst, src models.CadenceRange, values []T, fill T) ([]T, error) {
	if err := dst.Validate(); err != nil {
		return nil, err
	}
	if src.Length() != len(values) {
		return nil, fmt.Errorf("%w: source range %s does not match %d values",
			models.ErrContract, src, len(values))
	}

	out := make([]T, dst.Length())
	for i := range out {
		out[i] = fill
	}
	lo := max(dst.Start, src.Start)
	hi := min(dst.End, src.End)
	if lo <= hi {
		copy(out[lo-dst.Start:], values[lo-src.Start:hi-src.Start+1])
	}
	return out, nil
}

// ResizeSeries is Resize for a whole series. A nil series yields all fill.
func ResizeSeries[T models.Sample](dst models.CadenceRange, s *models.Series[T], fill T) ([]T, error) {
	if s == nil {
		if err := dst.Validate(); err != nil {
			return nil, err
		}
		out := make([]T, dst.Length())
		for i := range out {
			out[i] = fill
		}
		return out, nil
	}
	return Resize(dst, s.Range(), s.Values, fill)
}
