package models

import "fmt"

// CadenceTimeline carries the per-cadence spacecraft state for a contiguous
// block of cadences. Every array is indexed the same way as CadenceNumbers.
type CadenceTimeline struct {
	CadenceNumbers []int `yaml:"cadenceNumbers"`

	// Gaps is true where no science data exists for the cadence.
	Gaps []bool `yaml:"gaps"`

	FinePoint    []bool `yaml:"finePoint"`
	MomentumDump []bool `yaml:"momentumDump"`

	// Detector electronics anomaly sub-flags.
	LdeOos   []bool `yaml:"ldeOos"`
	LdeParEr []bool `yaml:"ldeParEr"`
	ScrcErr  []bool `yaml:"scrcErr"`
	SefiAcc  []bool `yaml:"sefiAcc"`
	SefiCad  []bool `yaml:"sefiCad"`

	// MidMjd is optional; when present it has the same length as the rest.
	MidMjd []float64 `yaml:"midMjd,omitempty"`
}

// NewCadenceTimeline builds an all-good timeline over r: contiguous cadence
// numbers, no gaps, fine point everywhere and no anomalies.
func NewCadenceTimeline(r CadenceRange) *CadenceTimeline {
	n := r.Length()
	t := &CadenceTimeline{
		CadenceNumbers: make([]int, n),
		Gaps:           make([]bool, n),
		FinePoint:      make([]bool, n),
		MomentumDump:   make([]bool, n),
		LdeOos:         make([]bool, n),
		LdeParEr:       make([]bool, n),
		ScrcErr:        make([]bool, n),
		SefiAcc:        make([]bool, n),
		SefiCad:        make([]bool, n),
	}
	for i := 0; i < n; i++ {
		t.CadenceNumbers[i] = r.Start + i
		t.FinePoint[i] = true
	}
	return t
}

// Len is the number of cadences in the timeline.
func (t *CadenceTimeline) Len() int {
	return len(t.CadenceNumbers)
}

// Range spans the first to the last cadence number. Only meaningful on a
// contiguous timeline.
func (t *CadenceTimeline) Range() CadenceRange {
	if len(t.CadenceNumbers) == 0 {
		return CadenceRange{Start: 0, End: -1}
	}
	return CadenceRange{Start: t.CadenceNumbers[0], End: t.CadenceNumbers[len(t.CadenceNumbers)-1]}
}

// Validate checks that every per-cadence array has the same length.
func (t *CadenceTimeline) Validate() error {
	n := len(t.CadenceNumbers)
	rows := []struct {
		name string
		len  int
	}{
		{"gaps", len(t.Gaps)},
		{"finePoint", len(t.FinePoint)},
		{"momentumDump", len(t.MomentumDump)},
		{"ldeOos", len(t.LdeOos)},
		{"ldeParEr", len(t.LdeParEr)},
		{"scrcErr", len(t.ScrcErr)},
		{"sefiAcc", len(t.SefiAcc)},
		{"sefiCad", len(t.SefiCad)},
	}
	for _, row := range rows {
		if row.len != n {
			return fmt.Errorf("%w: timeline %s has %d entries, want %d", ErrContract, row.name, row.len, n)
		}
	}
	if t.MidMjd != nil && len(t.MidMjd) != n {
		return fmt.Errorf("%w: timeline midMjd has %d entries, want %d", ErrContract, len(t.MidMjd), n)
	}
	return nil
}

// CheckContiguous fails unless the cadence numbers increase by exactly one.
func (t *CadenceTimeline) CheckContiguous() error {
	for i := 1; i < len(t.CadenceNumbers); i++ {
		if t.CadenceNumbers[i] != t.CadenceNumbers[0]+i {
			return fmt.Errorf("%w: cadence numbers are not contiguous at index %d: expected %d, found %d",
				ErrContract, i, t.CadenceNumbers[0]+i, t.CadenceNumbers[i])
		}
	}
	return nil
}

// ElectronicsAnomaly reports whether any electronics sub-flag is set at i.
func (t *CadenceTimeline) ElectronicsAnomaly(i int) bool {
	return t.LdeOos[i] || t.LdeParEr[i] || t.ScrcErr[i] || t.SefiAcc[i] || t.SefiCad[i]
}
