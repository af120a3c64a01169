package models

import (
	"errors"
	"testing"
)

func TestCadenceRange(t *testing.T) {
	r, err := NewCadenceRange(10, 19)
	if err != nil {
		t.Fatalf("NewCadenceRange failed: %v", err)
	}
	if r.Length() != 10 {
		t.Errorf("Expected length 10, got %d", r.Length())
	}
	if !r.Contains(19) || r.Contains(20) || r.Contains(9) {
		t.Errorf("Contains is wrong at the bounds of %s", r)
	}
	if r.Index(15) != 5 {
		t.Errorf("Expected index 5, got %d", r.Index(15))
	}
	if _, err := NewCadenceRange(5, 4); !errors.Is(err, ErrContract) {
		t.Errorf("Expected ErrContract for reversed range, got %v", err)
	}
}

func TestAnomalyIntervalCovers(t *testing.T) {
	a := AnomalyInterval{Type: SafeMode, Start: 20, End: 22}
	for c, want := range map[int]bool{19: false, 20: true, 21: true, 22: true, 23: false} {
		if got := a.Covers(c); got != want {
			t.Errorf("Covers(%d): expected %v, got %v", c, want, got)
		}
	}
}

func TestTimelineValidation(t *testing.T) {
	tl := NewCadenceTimeline(CadenceRange{Start: 100, End: 104})
	if err := tl.Validate(); err != nil {
		t.Fatalf("Fresh timeline failed validation: %v", err)
	}
	if err := tl.CheckContiguous(); err != nil {
		t.Fatalf("Fresh timeline is not contiguous: %v", err)
	}

	tl.CadenceNumbers[3] = 104
	if err := tl.CheckContiguous(); !errors.Is(err, ErrContract) {
		t.Errorf("Expected ErrContract for skipped cadence, got %v", err)
	}

	tl = NewCadenceTimeline(CadenceRange{Start: 100, End: 104})
	tl.SefiAcc = tl.SefiAcc[:2]
	if err := tl.Validate(); !errors.Is(err, ErrContract) {
		t.Errorf("Expected ErrContract for short sub-flag row, got %v", err)
	}

	tl = NewCadenceTimeline(CadenceRange{Start: 100, End: 104})
	tl.LdeParEr[2] = true
	if !tl.ElectronicsAnomaly(2) || tl.ElectronicsAnomaly(1) {
		t.Errorf("ElectronicsAnomaly does not follow the sub-flags")
	}
}

func TestSeries(t *testing.T) {
	s := NewSeries[float32](CadenceRange{Start: 7, End: 9})
	if !s.IsEmpty() {
		t.Errorf("New series should be fully gapped")
	}
	s.Gaps[1] = false
	if got := s.ValidCadences(); len(got) != 1 || got[0] != 8 {
		t.Errorf("Expected valid cadences [8], got %v", got)
	}
	c := s.Clone()
	c.Gaps[0] = false
	if !s.Gaps[0] {
		t.Errorf("Clone shares its gap array")
	}
	var nilSeries *FloatSeries
	if !nilSeries.IsEmpty() {
		t.Errorf("nil series should be empty")
	}
}

func TestBoundingBox(t *testing.T) {
	a := TargetAperture{
		Pixels:         []Pixel{{Row: 10, Column: 20}, {Row: 12, Column: 21}},
		CentroidPixels: []CentroidPixel{{Row: 9, Column: 23}},
	}
	refRow, refCol, height, width := a.BoundingBox()
	if refRow != 9 || refCol != 20 || height != 4 || width != 4 {
		t.Errorf("Expected (9,20,4,4), got (%d,%d,%d,%d)", refRow, refCol, height, width)
	}

	var empty TargetAperture
	if _, _, h, w := empty.BoundingBox(); h != 0 || w != 0 {
		t.Errorf("Empty aperture should have an empty box, got %dx%d", h, w)
	}
}

func TestAnomalyTypeNames(t *testing.T) {
	for typ, name := range anomalyTypeNames {
		parsed, err := ParseAnomalyType(name)
		if err != nil || parsed != typ {
			t.Errorf("ParseAnomalyType(%q) = %v, %v", name, parsed, err)
		}
	}
	if _, err := ParseAnomalyType("SOLAR_FLARE"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestLongCadenceLink(t *testing.T) {
	l := &LongCadenceLink{ShortOrigin: 300, LongOrigin: 10, ShortPerLong: 30}
	testCases := []struct{ short, long int }{
		{300, 10}, {329, 10}, {330, 11}, {389, 12}, {299, 9}, {270, 9}, {269, 8},
	}
	for _, tc := range testCases {
		if got := l.ShortToLong(tc.short); got != tc.long {
			t.Errorf("ShortToLong(%d): expected %d, got %d", tc.short, tc.long, got)
		}
	}
}

func TestRollingBandTableOf(t *testing.T) {
	if RollingBandTableOf(nil) != nil {
		t.Errorf("nil entries should give a nil table")
	}
	key := RollingBandKey{Module: 7, Output: 3, Row: 1000, PulseDuration: 5}
	table := RollingBandTableOf([]RollingBandEntry{{Key: key, Flags: []byte{1, 0}}})
	if len(table[key]) != 2 {
		t.Errorf("Expected 2 flag bytes for %s, got %v", key, table[key])
	}
}
