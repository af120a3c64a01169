// Package aperture encodes a target's pixel membership as a mask image.
package aperture

import "cadenceqa/internal/models"

// Mask image bits. They are independent and accumulate at a shared cell.
const (
	PixelCollected  int32 = 1
	OptimalAperture int32 = 2
	FluxCentroid    int32 = 4
	PrfCentroid     int32 = 8
)

// Per-product masks applied to the assembled image before export.
const (
	// TargetPixelMask keeps aperture membership for target pixel files.
	TargetPixelMask = PixelCollected | OptimalAperture

	// LightCurveMask keeps every bit.
	LightCurveMask = PixelCollected | OptimalAperture | FluxCentroid | PrfCentroid

	// K2Mask keeps only the collected bit; K2 optimal apertures are not
	// exported.
	K2Mask = PixelCollected
)

// Inputs positions a target's pixels in an image whose cell [0][0] is
// (RefRow, RefCol).
type Inputs struct {
	Pixels         []models.Pixel
	CentroidPixels []models.CentroidPixel
	RefRow         int
	RefCol         int
	Height         int
	Width          int
}

// InputsFor sizes the image to the bounding box of the aperture.
func InputsFor(a *models.TargetAperture) Inputs {
	refRow, refCol, height, width := a.BoundingBox()
	return Inputs{
		Pixels:         a.Pixels,
		CentroidPixels: a.CentroidPixels,
		RefRow:         refRow,
		RefCol:         refCol,
		Height:         height,
		Width:          width,
	}
}

// Assemble builds the Height x Width mask image. Every pixel and centroid
// pixel must translate into the image; one that does not panics with an
// index out of range.
func Assemble(in Inputs) [][]int32 {
	image := make([][]int32, in.Height)
	for i := range image {
		image[i] = make([]int32, in.Width)
	}

	for _, px := range in.Pixels {
		cell := &image[px.Row-in.RefRow][px.Column-in.RefCol]
		*cell |= PixelCollected
		if px.InOptimalAperture {
			*cell |= OptimalAperture
		}
	}
	for _, cp := range in.CentroidPixels {
		cell := &image[cp.Row-in.RefRow][cp.Column-in.RefCol]
		if cp.FluxCentroid {
			*cell |= FluxCentroid
		}
		if cp.PrfCentroid {
			*cell |= PrfCentroid
		}
	}
	return image
}

// ApplyPixelMask returns a copy of image with every cell ANDed with mask.
func ApplyPixelMask(image [][]int32, mask int32) [][]int32 {
	out := make([][]int32, len(image))
	for i, row := range image {
		out[i] = make([]int32, len(row))
		for j, v := range row {
			out[i][j] = v & mask
		}
	}
	return out
}

// Count returns how many cells have every bit of want set.
func Count(image [][]int32, want int32) int {
	n := 0
	for _, row := range image {
		for _, v := range row {
			if v&want == want {
				n++
			}
		}
	}
	return n
}
