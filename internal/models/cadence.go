// Package models holds the per-request value types shared by the cadence
// packages. Nothing in here is persisted; callers build these, hand them to
// the core and receive new arrays back.
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrContract marks a violated input contract: mismatched array lengths,
	// non-contiguous cadence numbering, an unresolvable reference cadence.
	// These are deterministic, so retrying with the same input is pointless.
	ErrContract = errors.New("contract violation")

	// ErrInvalidArgument marks an argument the operation cannot work with,
	// such as a gapped anchor sample or disagreeing unique values.
	ErrInvalidArgument = errors.New("invalid argument")
)

// CadenceRange is an inclusive interval of cadence numbers.
type CadenceRange struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// NewCadenceRange returns a validated range.
func NewCadenceRange(start, end int) (CadenceRange, error) {
	r := CadenceRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return CadenceRange{}, err
	}
	return r, nil
}

// Validate fails when End precedes Start.
func (r CadenceRange) Validate() error {
	if r.End < r.Start {
		return fmt.Errorf("%w: end cadence %d precedes start cadence %d", ErrContract, r.End, r.Start)
	}
	return nil
}

// Length is the number of cadences in the range.
func (r CadenceRange) Length() int {
	return r.End - r.Start + 1
}

// Contains reports whether cadence lies inside the range.
func (r CadenceRange) Contains(cadence int) bool {
	return cadence >= r.Start && cadence <= r.End
}

// Index converts a cadence number into an array index relative to Start.
func (r CadenceRange) Index(cadence int) int {
	return cadence - r.Start
}

func (r CadenceRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// AnomalyType names a spacecraft anomaly recorded as a cadence interval.
type AnomalyType int

const (
	AttitudeTweak AnomalyType = iota
	SafeMode
	CoarsePoint
	EarthPoint
	Argabrightening
	Exclude
	PlanetSearchExclude
)

var anomalyTypeNames = map[AnomalyType]string{
	AttitudeTweak:       "ATTITUDE_TWEAK",
	SafeMode:            "SAFE_MODE",
	CoarsePoint:         "COARSE_POINT",
	EarthPoint:          "EARTH_POINT",
	Argabrightening:     "ARGABRIGHTENING",
	Exclude:             "EXCLUDE",
	PlanetSearchExclude: "PLANET_SEARCH_EXCLUDE",
}

func (t AnomalyType) String() string {
	if name, ok := anomalyTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("AnomalyType(%d)", int(t))
}

// ParseAnomalyType is the inverse of AnomalyType.String.
func ParseAnomalyType(name string) (AnomalyType, error) {
	for t, n := range anomalyTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown anomaly type %q", ErrInvalidArgument, name)
}

// UnmarshalText lets anomaly types appear by name in YAML target files.
func (t *AnomalyType) UnmarshalText(text []byte) error {
	parsed, err := ParseAnomalyType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText writes the anomaly name.
func (t AnomalyType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// AnomalyInterval flags every cadence in [Start, End] with Type.
type AnomalyInterval struct {
	Type  AnomalyType `yaml:"type"`
	Start int         `yaml:"start"`
	End   int         `yaml:"end"`
}

// Covers reports whether cadence falls inside the closed interval.
func (a AnomalyInterval) Covers(cadence int) bool {
	return cadence >= a.Start && cadence <= a.End
}

// PixelLog is one row of the cadence timing table used to map MJD
// timestamps back to cadence numbers.
type PixelLog struct {
	Cadence  int     `yaml:"cadence"`
	StartMjd float64 `yaml:"startMjd"`
	MidMjd   float64 `yaml:"midMjd"`
	EndMjd   float64 `yaml:"endMjd"`
}
