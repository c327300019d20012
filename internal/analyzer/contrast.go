// Package analyzer checks whether slide text stays legible on the pixels
// painted underneath it.
package analyzer

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ivlev/slidestudio/internal/layout"
	"github.com/ivlev/slidestudio/internal/renderer"
)

// Report describes the background behind one text block.
type Report struct {
	BlockID     string
	Contrast    float64 // contrast ratio between text color and background, 1..21
	EdgeDensity float64 // share of edge pixels behind the block, 0..1
}

// Checker scores text blocks against a rendered background using relative
// luminance for contrast and a Sobel operator for background busyness.
type Checker struct {
	EdgeThreshold  float64 // gradient magnitude threshold
	MinContrast    float64
	MaxEdgeDensity float64
}

func NewChecker() *Checker {
	return &Checker{
		EdgeThreshold:  30.0,
		MinContrast:    3.0,
		MaxEdgeDensity: 0.25,
	}
}

func (c *Checker) Legible(r Report) bool {
	return r.Contrast >= c.MinContrast && r.EdgeDensity <= c.MaxEdgeDensity
}

// Check scores every non-empty text block of slide against bg, which must be
// the surface the text is about to be drawn on.
func (c *Checker) Check(bg image.Image, slide *layout.Slide) []Report {
	b := bg.Bounds()
	var reports []Report
	for _, blk := range slide.TextBlocks {
		if blk.Text == "" {
			continue
		}
		x, y, w, h := blk.Rect.Pixels(b.Dx(), b.Dy())
		area := image.Rect(int(x), int(y), int(math.Ceil(x+w)), int(math.Ceil(y+h))).Add(b.Min).Intersect(b)
		if area.Empty() {
			continue
		}

		region := imaging.Crop(bg, area)
		text := renderer.ColorOr(blk.Color, color.NRGBA{255, 255, 255, 255})
		reports = append(reports, Report{
			BlockID:     blk.ID,
			Contrast:    contrastRatio(luminance(text), meanLuminance(region)),
			EdgeDensity: edgeDensity(imaging.Grayscale(region), c.EdgeThreshold),
		})
	}
	return reports
}

func linear(v uint8) float64 {
	c := float64(v) / 255
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// luminance is the relative luminance of an opaque color.
func luminance(c color.NRGBA) float64 {
	return 0.2126*linear(c.R) + 0.7152*linear(c.G) + 0.0722*linear(c.B)
}

func meanLuminance(img *image.NRGBA) float64 {
	b := img.Bounds()
	var sum float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sum += luminance(img.NRGBAAt(x, y))
		}
	}
	return sum / float64(b.Dx()*b.Dy())
}

func contrastRatio(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	return (a + 0.05) / (b + 0.05)
}

// edgeDensity applies the Sobel operator to a grayscale image and returns
// the share of interior pixels whose gradient magnitude exceeds threshold.
func edgeDensity(gray *image.NRGBA, threshold float64) float64 {
	b := gray.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return 0
	}

	gx := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	gy := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	edges, total := 0, 0
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			var sumX, sumY float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := float64(gray.NRGBAAt(x+kx, y+ky).R)
					sumX += pixel * gx[ky+1][kx+1]
					sumY += pixel * gy[ky+1][kx+1]
				}
			}
			if math.Sqrt(sumX*sumX+sumY*sumY) > threshold {
				edges++
			}
			total++
		}
	}
	return float64(edges) / float64(total)
}
