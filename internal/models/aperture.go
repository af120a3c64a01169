package models

import "fmt"

// Pixel is a single CCD pixel collected for a target.
type Pixel struct {
	Row               int  `yaml:"row"`
	Column            int  `yaml:"column"`
	InOptimalAperture bool `yaml:"inOptimalAperture"`
}

// CentroidPixel is a pixel the target declares as contributing to one or
// both centroid estimates. It need not be a collected pixel.
type CentroidPixel struct {
	Row          int  `yaml:"row"`
	Column       int  `yaml:"column"`
	FluxCentroid bool `yaml:"fluxCentroid"`
	PrfCentroid  bool `yaml:"prfCentroid"`
}

// TargetAperture groups the pixels and centroid pixels of one target.
type TargetAperture struct {
	KeplerID       int             `yaml:"keplerId"`
	Pixels         []Pixel         `yaml:"pixels"`
	CentroidPixels []CentroidPixel `yaml:"centroidPixels"`
}

// BoundingBox returns the reference row/column and the image size that
// covers every pixel and centroid pixel of the aperture.
func (a *TargetAperture) BoundingBox() (refRow, refCol, height, width int) {
	first := true
	var minRow, maxRow, minCol, maxCol int
	visit := func(row, col int) {
		if first {
			minRow, maxRow, minCol, maxCol = row, row, col, col
			first = false
			return
		}
		minRow = min(minRow, row)
		maxRow = max(maxRow, row)
		minCol = min(minCol, col)
		maxCol = max(maxCol, col)
	}
	for _, px := range a.Pixels {
		visit(px.Row, px.Column)
	}
	for _, cp := range a.CentroidPixels {
		visit(cp.Row, cp.Column)
	}
	if first {
		return 0, 0, 0, 0
	}
	return minRow, minCol, maxRow - minRow + 1, maxCol - minCol + 1
}

// RollingBandKey identifies one row-band flag series of a target.
type RollingBandKey struct {
	Module        int `yaml:"module"`
	Output        int `yaml:"output"`
	Row           int `yaml:"row"`
	PulseDuration int `yaml:"pulseDuration"`
}

func (k RollingBandKey) String() string {
	return fmt.Sprintf("%d.%d/row %d/%d", k.Module, k.Output, k.Row, k.PulseDuration)
}

// RollingBandFlagTable maps row-band keys to one flag byte per cadence.
type RollingBandFlagTable map[RollingBandKey][]byte

// TargetDva is the per-cadence differential velocity aberration correction
// of one target, in pixels.
type TargetDva struct {
	KeplerID int         `yaml:"keplerId"`
	Row      FloatSeries `yaml:"row"`
	Column   FloatSeries `yaml:"column"`
}
