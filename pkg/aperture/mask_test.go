package aperture

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"cadenceqa/internal/models"
)

const (
	refRow = 310
	refCol = 742
)

// workedExample is a cross shaped aperture with its optimal aperture in the
// middle column and the centroid pixels off in the top left corner.
func workedExample() Inputs {
	var pixels []models.Pixel
	add := func(row, col int, optimal bool) {
		pixels = append(pixels, models.Pixel{Row: refRow + row, Column: refCol + col, InOptimalAperture: optimal})
	}
	add(0, 2, false)
	add(1, 1, false)
	add(1, 2, true)
	add(1, 3, false)
	add(2, 0, false)
	add(2, 1, true)
	add(2, 2, true)
	add(2, 3, true)
	add(2, 4, false)
	add(3, 1, false)
	add(3, 2, true)
	add(3, 3, false)
	add(4, 2, true)
	add(5, 2, false)

	return Inputs{
		Pixels: pixels,
		CentroidPixels: []models.CentroidPixel{
			{Row: refRow, Column: refCol, FluxCentroid: true},
			{Row: refRow + 1, Column: refCol, PrfCentroid: true},
		},
		RefRow: refRow,
		RefCol: refCol,
		Height: 6,
		Width:  5,
	}
}

func TestAssembleWorkedExample(t *testing.T) {
	want := [][]int32{
		{4, 0, 1, 0, 0},
		{8, 1, 3, 1, 0},
		{1, 3, 3, 3, 1},
		{0, 1, 3, 1, 0},
		{0, 0, 3, 0, 0},
		{0, 0, 1, 0, 0},
	}
	if diff := cmp.Diff(want, Assemble(workedExample())); diff != "" {
		t.Errorf("Assemble mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleBitsAccumulate(t *testing.T) {
	in := Inputs{
		Pixels: []models.Pixel{{Row: 0, Column: 0, InOptimalAperture: true}},
		CentroidPixels: []models.CentroidPixel{
			{Row: 0, Column: 0, FluxCentroid: true, PrfCentroid: true},
		},
		Height: 1,
		Width:  2,
	}
	image := Assemble(in)
	assert.Equal(t, [][]int32{{15, 0}}, image)

	in.CentroidPixels = []models.CentroidPixel{{Row: 0, Column: 1, PrfCentroid: true}}
	in.Pixels[0].InOptimalAperture = false
	assert.Equal(t, [][]int32{{1, 8}}, Assemble(in))
}

func TestAssembleOutsideImagePanics(t *testing.T) {
	in := Inputs{Pixels: []models.Pixel{{Row: 3, Column: 0}}, Height: 2, Width: 2}
	assert.Panics(t, func() { Assemble(in) })
}

func TestInputsFor(t *testing.T) {
	ex := workedExample()
	in := InputsFor(&models.TargetAperture{Pixels: ex.Pixels, CentroidPixels: ex.CentroidPixels})
	assert.Equal(t, refRow, in.RefRow)
	assert.Equal(t, refCol, in.RefCol)
	assert.Equal(t, 6, in.Height)
	assert.Equal(t, 5, in.Width)
}

func TestApplyPixelMask(t *testing.T) {
	image := Assemble(workedExample())

	tpf := ApplyPixelMask(image, TargetPixelMask)
	assert.Equal(t, int32(0), tpf[0][0])
	assert.Equal(t, int32(3), tpf[2][2])

	k2 := ApplyPixelMask(image, K2Mask)
	assert.Equal(t, 14, Count(k2, PixelCollected))
	assert.Equal(t, 0, Count(k2, OptimalAperture))

	assert.Equal(t, image, ApplyPixelMask(image, LightCurveMask))
	assert.Equal(t, int32(4), image[0][0], "ApplyPixelMask modified its input")
}
