package series

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadenceqa/internal/models"
	"cadenceqa/pkg/quality"
)

func ramp(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(i) + 0.25
	}
	return v
}

func TestResizePadsFront(t *testing.T) {
	src := ramp(1024)
	out, err := Resize(models.CadenceRange{Start: 0, End: 1033}, models.CadenceRange{Start: 10, End: 1033}, src, -1)
	require.NoError(t, err)

	require.Len(t, out, 1034)
	for i := 0; i < 10; i++ {
		assert.Equal(t, float32(-1), out[i], "index %d", i)
	}
	assert.Equal(t, src[0], out[10])
	assert.Equal(t, src[1023], out[1033])
}

func TestResizeTruncatesAndPads(t *testing.T) {
	src := ramp(1024)
	out, err := Resize(models.CadenceRange{Start: 10, End: 1033}, models.CadenceRange{Start: 0, End: 1023}, src, -1)
	require.NoError(t, err)

	require.Len(t, out, 1024)
	assert.Equal(t, src[10], out[0])
	assert.Equal(t, src[1023], out[1013])
	for i := 1014; i < 1024; i++ {
		assert.Equal(t, float32(-1), out[i], "index %d", i)
	}
}

func TestResizeDoubleAndDisjoint(t *testing.T) {
	out, err := Resize(models.CadenceRange{Start: 5, End: 7}, models.CadenceRange{Start: 0, End: 1}, []float64{1, 2}, math.Inf(-1))
	require.NoError(t, err)
	assert.Equal(t, []float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}, out)

	same, err := Resize(models.CadenceRange{Start: 0, End: 1}, models.CadenceRange{Start: 0, End: 1}, []float64{1, 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, same)
}

func TestResizeLengthMismatch(t *testing.T) {
	_, err := Resize(models.CadenceRange{Start: 0, End: 3}, models.CadenceRange{Start: 0, End: 3}, []float32{1, 2}, 0)
	assert.True(t, errors.Is(err, models.ErrContract))
}

func TestResizeSeriesNil(t *testing.T) {
	out, err := ResizeSeries[float32](models.CadenceRange{Start: 3, End: 5}, nil, -1)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, -1, -1}, out)
}

func correction(values []float32, gaps []bool) *models.FloatSeries {
	return &models.FloatSeries{Start: 100, Values: values, Gaps: gaps}
}

func TestBoundaryValues(t *testing.T) {
	s := correction([]float32{2, 3, 5, 9}, make([]bool, 4))

	start, err := StartValue(s, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), start)

	end, err := EndValue(s, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(11), end)

	window := models.CadenceRange{Start: 101, End: 102}
	start, err = StartValue(s, &window)
	require.NoError(t, err)
	assert.Equal(t, float32(2), start)
	end, err = EndValue(s, &window)
	require.NoError(t, err)
	assert.Equal(t, float32(6), end)

	single := models.CadenceRange{Start: 102, End: 102}
	start, err = StartValue(s, &single)
	require.NoError(t, err)
	assert.Equal(t, float32(5), start)
}

func TestBoundaryValuesNeighbourGapped(t *testing.T) {
	s := correction([]float32{2, 3, 5, 9}, []bool{false, true, true, false})

	_, err := StartValue(s, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))
	_, err = EndValue(s, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))

	s.Gaps = []bool{true, true, true, true}
	_, err = StartValue(s, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))
	_, err = EndValue(s, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))
}

func TestBoundaryValuesSkipEdgeGaps(t *testing.T) {
	s := correction([]float32{0, 2, 3, 5}, []bool{true, false, false, false})
	start, err := StartValue(s, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), start)

	s = correction([]float32{2, 3, 5, 0}, []bool{false, false, false, true})
	end, err := EndValue(s, nil)
	require.NoError(t, err)
	assert.Equal(t, float32(6), end)

	// The lone valid sample has no valid neighbour to take a delta from.
	s = correction([]float32{0, 7, 0}, []bool{true, false, true})
	_, err = StartValue(s, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))
	_, err = EndValue(s, nil)
	assert.True(t, errors.Is(err, models.ErrInvalidArgument))
}

func TestUniqueValue(t *testing.T) {
	nan := float32(math.NaN())
	testCases := []struct {
		name    string
		values  []float32
		gaps    []bool
		want    float32
		wantOK  bool
		wantErr bool
	}{
		{"all NaN", []float32{nan, nan}, []bool{false, false}, 0, false, false},
		{"equal", []float32{1, 1}, []bool{false, false}, 1, true, false},
		{"NaN then number", []float32{nan, 2}, []bool{false, false}, 0, false, true},
		{"number then NaN", []float32{2, nan}, []bool{false, false}, 0, false, true},
		{"differing", []float32{1, 2}, []bool{false, false}, 0, false, true},
		{"gapped disagreement ignored", []float32{7, 3, 7}, []bool{false, true, false}, 7, true, false},
		{"all gapped", []float32{1, 2}, []bool{true, true}, 0, false, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := UniqueValue(correction(tc.values, tc.gaps))
			if tc.wantErr {
				assert.True(t, errors.Is(err, models.ErrInvalidArgument), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	_, ok, err := UniqueValue(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTimeCorrections(t *testing.T) {
	corr := correction([]float32{0.5, 0.25, 1}, []bool{false, false, true})
	mjds := []float64{55000, 55000.5, 55001}
	gaps := []bool{false, true, false}

	jd, err := BarycentricCorrectedTimes(mjds, gaps, corr, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{55001, -1, -1}, jd)

	bkjd, err := BkjdTimes(mjds, gaps, corr, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{168, -1, -1}, bkjd)

	secs, err := TimeCorrectionSeconds(corr, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{43200, 21600, 0}, secs)

	_, err = BkjdTimes(mjds[:2], gaps[:2], corr, -1)
	assert.True(t, errors.Is(err, models.ErrContract))
}

func TestCorrectedUnfilledFlux(t *testing.T) {
	var logs []models.PixelLog
	for c := 100; c <= 103; c++ {
		start := float64(c-100) * 0.1
		logs = append(logs, models.PixelLog{Cadence: c, StartMjd: start, MidMjd: start + 0.05, EndMjd: start + 0.1})
	}
	mapper, err := quality.NewTableMapper(logs)
	require.NoError(t, err)

	flux := correction([]float32{1, 2, 3, 4}, make([]bool, 4))
	filled := &models.IntSeries{Start: 100, Values: make([]int32, 4), Gaps: []bool{true, false, true, true}}
	outliers := &models.MjdEventSeries{Name: "pdc outliers", Events: []models.MjdEvent{{Mjd: logs[3].MidMjd, Value: 40}}}

	got, err := CorrectedUnfilledFlux(mapper, filled, outliers, flux, -99)
	require.NoError(t, err)
	if diff := cmp.Diff([]float32{1, -99, 3, 40}, got); diff != "" {
		t.Errorf("CorrectedUnfilledFlux mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, float32(2), flux.Values[1])

	_, err = CorrectedUnfilledFlux(nil, nil, outliers, flux, -99)
	assert.True(t, errors.Is(err, models.ErrContract))
}
