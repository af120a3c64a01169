package models

import "fmt"

// Sample is the element type of a cadence-indexed series.
type Sample interface {
	~int32 | ~float32 | ~float64
}

// Series is a value array aligned 1:1 with the cadences starting at Start,
// plus a parallel gap array. A gapped value is not authoritative.
type Series[T Sample] struct {
	Start  int    `yaml:"start"`
	Values []T    `yaml:"values"`
	Gaps   []bool `yaml:"gaps"`
}

// IntSeries is a cadence-indexed integer series (indicator series).
type IntSeries = Series[int32]

// FloatSeries is a cadence-indexed single precision series.
type FloatSeries = Series[float32]

// DoubleSeries is a cadence-indexed double precision series.
type DoubleSeries = Series[float64]

// NewSeries allocates a series over r with every cadence gapped.
func NewSeries[T Sample](r CadenceRange) *Series[T] {
	gaps := make([]bool, r.Length())
	for i := range gaps {
		gaps[i] = true
	}
	return &Series[T]{
		Start:  r.Start,
		Values: make([]T, r.Length()),
		Gaps:   gaps,
	}
}

// Len is the number of cadences covered.
func (s *Series[T]) Len() int {
	return len(s.Values)
}

// Range is the cadence interval the values are aligned to.
func (s *Series[T]) Range() CadenceRange {
	return CadenceRange{Start: s.Start, End: s.Start + len(s.Values) - 1}
}

// Validate checks that the gap array matches the value array.
func (s *Series[T]) Validate() error {
	if len(s.Gaps) != len(s.Values) {
		return fmt.Errorf("%w: series starting at cadence %d has %d values but %d gap indicators",
			ErrContract, s.Start, len(s.Values), len(s.Gaps))
	}
	return nil
}

// IsEmpty reports whether the series has no samples or every sample is gapped.
func (s *Series[T]) IsEmpty() bool {
	if s == nil {
		return true
	}
	for _, gap := range s.Gaps {
		if !gap {
			return false
		}
	}
	return true
}

// ValidCadences lists the cadence numbers of every ungapped sample.
func (s *Series[T]) ValidCadences() []int {
	var cadences []int
	for i, gap := range s.Gaps {
		if !gap {
			cadences = append(cadences, s.Start+i)
		}
	}
	return cadences
}

// Clone returns a deep copy.
func (s *Series[T]) Clone() *Series[T] {
	return &Series[T]{
		Start:  s.Start,
		Values: append([]T(nil), s.Values...),
		Gaps:   append([]bool(nil), s.Gaps...),
	}
}

// MjdEvent is a single timestamped value that is not cadence aligned.
type MjdEvent struct {
	Mjd   float64 `yaml:"mjd"`
	Value float32 `yaml:"value"`
}

// MjdEventSeries is a named list of timestamped events, for example the
// cosmic rays detected on one pixel.
type MjdEventSeries struct {
	Name   string     `yaml:"name"`
	Events []MjdEvent `yaml:"events"`
}
