package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	"cadenceqa/pkg/aperture"
	"cadenceqa/pkg/quality"
)

// Colours of the mask image bits. A cell shows the highest priority bit it
// carries: PRF centroid, flux centroid, optimal aperture, collected.
var (
	emptyColor     = color.RGBA{0, 0, 0, 255}
	collectedColor = color.RGBA{96, 96, 96, 255}
	optimalColor   = color.RGBA{240, 240, 240, 255}
	fluxColor      = color.RGBA{220, 40, 40, 255}
	prfColor       = color.RGBA{40, 180, 60, 255}
)

// Viewer renders aperture mask images and quality flag strips so that a
// target's layout can be inspected by eye.
type Viewer struct {
	// scale is the side in image pixels of one mask cell or one flag cell
	scale int
}

// NewViewer creates a viewer drawing every cell as a scale x scale block.
func NewViewer(scale int) *Viewer {
	if scale < 1 {
		scale = 1
	}
	return &Viewer{scale: scale}
}

// RenderMask draws a mask image; row 0 is at the top.
func (v *Viewer) RenderMask(mask [][]int32) (image.Image, error) {
	height := len(mask)
	if height == 0 {
		return nil, fmt.Errorf("mask image is empty")
	}
	width := len(mask[0])
	for i, row := range mask {
		if len(row) != width {
			return nil, fmt.Errorf("mask row %d has %d cells, row 0 has %d", i, len(row), width)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, width*v.scale, height*v.scale))
	for y, row := range mask {
		for x, cell := range row {
			v.fill(img, x, y, maskColor(cell))
		}
	}
	return img, nil
}

func maskColor(cell int32) color.RGBA {
	switch {
	case cell&aperture.PrfCentroid != 0:
		return prfColor
	case cell&aperture.FluxCentroid != 0:
		return fluxColor
	case cell&aperture.OptimalAperture != 0:
		return optimalColor
	case cell&aperture.PixelCollected != 0:
		return collectedColor
	}
	return emptyColor
}

// RenderQualityStrip draws one column per cadence and one row per flag bit,
// lowest bit on top. A set bit is white.
func (v *Viewer) RenderQualityStrip(flags []quality.Flag) (image.Image, error) {
	if len(flags) == 0 {
		return nil, fmt.Errorf("no quality flags to draw")
	}
	var all quality.Flag
	for _, f := range flags {
		all |= f
	}
	rows := max(bits.Len32(uint32(all)), bits.Len32(uint32(quality.ThrusterFire)))

	img := image.NewGray(image.Rect(0, 0, len(flags)*v.scale, rows*v.scale))
	for x, f := range flags {
		for y := 0; y < rows; y++ {
			if f&(1<<y) == 0 {
				continue
			}
			for dy := 0; dy < v.scale; dy++ {
				for dx := 0; dx < v.scale; dx++ {
					img.SetGray(x*v.scale+dx, y*v.scale+dy, color.Gray{Y: 255})
				}
			}
		}
	}
	return img, nil
}

func (v *Viewer) fill(img *image.RGBA, x, y int, c color.RGBA) {
	for dy := 0; dy < v.scale; dy++ {
		for dx := 0; dx < v.scale; dx++ {
			img.SetRGBA(x*v.scale+dx, y*v.scale+dy, c)
		}
	}
}

// SaveImage writes img as a JPEG when filename ends in .jpg or .jpeg and as
// a PNG otherwise. Mask images should be PNG so cell colours stay exact.
func (v *Viewer) SaveImage(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(file, img)
	}
}

// SaveTarget writes the mask image and quality strip of one target into
// outputDir as mask_<id>.png and quality_<id>.png.
func SaveTarget(outputDir string, keplerID int, mask [][]int32, flags []quality.Flag) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	v := NewViewer(8)

	if len(mask) > 0 {
		img, err := v.RenderMask(mask)
		if err != nil {
			return err
		}
		if err := v.SaveImage(img, filepath.Join(outputDir, fmt.Sprintf("mask_%09d.png", keplerID))); err != nil {
			return err
		}
	}

	if len(flags) > 0 {
		strip := NewViewer(2)
		img, err := strip.RenderQualityStrip(flags)
		if err != nil {
			return err
		}
		if err := strip.SaveImage(img, filepath.Join(outputDir, fmt.Sprintf("quality_%09d.png", keplerID))); err != nil {
			return err
		}
	}
	return nil
}
