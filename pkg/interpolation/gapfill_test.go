package interpolation

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"cadenceqa/internal/models"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestFillGapsInteriorRuns(t *testing.T) {
	values := []float64{1, -1, -1, 4, 5, -1, 9}
	gaps := []bool{false, true, true, false, false, true, false}

	got, err := FillGaps(values, gaps)
	if err != nil {
		t.Fatalf("FillGaps failed: %v", err)
	}
	want := []float64{1, 2, 3, 4, 5, 7, 9}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("FillGaps mismatch (-want +got):\n%s", diff)
	}
	if values[1] != -1 {
		t.Errorf("FillGaps modified its input")
	}
}

func TestFillGapsExtrapolatesEnds(t *testing.T) {
	values := []float64{0, 0, 10, 12, 13, 0, 0}
	gaps := []bool{true, true, false, false, false, true, true}

	got, err := FillGaps(values, gaps)
	if err != nil {
		t.Fatalf("FillGaps failed: %v", err)
	}
	// Leading slope from (10,12) is 2, trailing slope from (12,13) is 1.
	want := []float64{6, 8, 10, 12, 13, 14, 15}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("FillGaps mismatch (-want +got):\n%s", diff)
	}
}

func TestFillGapsLeadingRunUsesFilledNeighbour(t *testing.T) {
	// The first valid sample is followed by a gap, so the first resolved
	// pair is the first valid sample and its interpolated successor.
	values := []float64{0, 2, 0, 6}
	gaps := []bool{true, false, true, false}

	got, err := FillGaps(values, gaps)
	if err != nil {
		t.Fatalf("FillGaps failed: %v", err)
	}
	want := []float64{0, 2, 4, 6}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("FillGaps mismatch (-want +got):\n%s", diff)
	}
}

func TestFillGapsNoGaps(t *testing.T) {
	values := []float64{3, 1, 4}
	got, err := FillGaps(values, make([]bool, 3))
	if err != nil {
		t.Fatalf("FillGaps failed: %v", err)
	}
	if diff := cmp.Diff(values, got); diff != "" {
		t.Errorf("FillGaps changed an ungapped series (-want +got):\n%s", diff)
	}
}

func TestFillGapsTooFewValid(t *testing.T) {
	testCases := []struct {
		name string
		gaps []bool
	}{
		{"all gapped", []bool{true, true, true}},
		{"single valid", []bool{true, false, true}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FillGaps(make([]float64, len(tc.gaps)), tc.gaps)
			if !errors.Is(err, models.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	_, err := FillGaps(make([]float64, 3), make([]bool, 2))
	if !errors.Is(err, models.ErrContract) {
		t.Errorf("expected ErrContract for length mismatch, got %v", err)
	}
}

func TestFillGapsFloat32(t *testing.T) {
	got, err := FillGapsFloat32([]float32{1, 0, 2}, []bool{false, true, false})
	if err != nil {
		t.Fatalf("FillGapsFloat32 failed: %v", err)
	}
	if got[1] != 1.5 {
		t.Errorf("Expected 1.5, got %f", got[1])
	}
}

func TestFillSeries(t *testing.T) {
	s := &models.FloatSeries{
		Start:  100,
		Values: []float32{1, 0, 3},
		Gaps:   []bool{false, true, false},
	}
	filled, err := FillSeries(s)
	if err != nil {
		t.Fatalf("FillSeries failed: %v", err)
	}
	if filled.Start != 100 || filled.Values[1] != 2 || filled.Gaps[1] {
		t.Errorf("unexpected filled series %+v", filled)
	}
	if !s.Gaps[1] {
		t.Errorf("FillSeries modified its input")
	}
}

func TestFillTimestamps(t *testing.T) {
	const step = 0.0204
	mjds := make([]float64, 8)
	gaps := make([]bool, 8)
	for i := range mjds {
		mjds[i] = 55000 + float64(i)*step
	}
	gaps[0], gaps[4], gaps[7] = true, true, true
	want := append([]float64(nil), mjds...)
	mjds[0], mjds[4], mjds[7] = 0, 0, 0

	got, err := FillTimestamps(mjds, gaps)
	if err != nil {
		t.Fatalf("FillTimestamps failed: %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("FillTimestamps mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] || math.IsNaN(got[i]) {
			t.Errorf("timestamps not increasing at %d: %f <= %f", i, got[i], got[i-1])
		}
	}
}

func TestFillTimestampsNeedsAdjacentPair(t *testing.T) {
	_, err := FillTimestamps([]float64{1, 0, 3}, []bool{false, true, false})
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
