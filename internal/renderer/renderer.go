// Package renderer paints slide text, overlays and the link badge onto a
// raster surface. Style values are authored at a reference width and are
// multiplied by Scale so that every export resolution keeps the same
// proportions.
package renderer

import (
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/ivlev/slidestudio/internal/layout"
	"github.com/ivlev/slidestudio/internal/textlayout"
)

const defaultFontSize = 48.0

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

type Renderer struct {
	// Scale is exportWidth / referenceWidth.
	Scale float64
	Fonts *FontCache

	mu     sync.Mutex
	onStep func(step string) // paint order hook for tests
}

func New(scale float64, fonts *FontCache) *Renderer {
	if scale <= 0 {
		scale = 1
	}
	return &Renderer{Scale: scale, Fonts: fonts}
}

func (r *Renderer) step(name string) {
	if r.onStep != nil {
		r.onStep(name)
	}
}

// FillBackground paints the whole surface with the slide background color.
func FillBackground(canvas *image.RGBA, hex string) {
	c := ColorOr(hex, black)
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// DrawText paints the overlay, every text block in order and the link
// badge.
func (r *Renderer) DrawText(canvas *image.RGBA, slide *layout.Slide) error {
	r.DrawOverlay(canvas, slide.Style)
	return r.DrawBlocks(canvas, slide)
}

// DrawBlocks paints the text blocks and the link badge without the overlay.
func (r *Renderer) DrawBlocks(canvas *image.RGBA, slide *layout.Slide) error {
	for i := range slide.TextBlocks {
		if err := r.DrawTextBlock(canvas, &slide.TextBlocks[i], slide.Style); err != nil {
			return err
		}
	}
	if slide.Style.LinkURL != "" {
		return r.DrawLinkBadge(canvas, slide.Style.LinkURL)
	}
	return nil
}

type placedLine struct {
	text string
	x, y float64 // anchor point; y is the vertical middle of the line
	ax   float64
	w    float64
}

// DrawTextBlock paints one block: border stroke, then the glow (three
// shadowed fills), then the drop shadow with the final fill.
func (r *Renderer) DrawTextBlock(canvas *image.RGBA, b *layout.TextBlock, style layout.SlideStyle) error {
	if strings.TrimSpace(b.Text) == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	size := b.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	size *= r.Scale
	face, err := r.Fonts.Face(b.FontFamily, size, b.Bold())
	if err != nil {
		return err
	}

	bounds := canvas.Bounds()
	lines, lineHeight := r.place(face, size, b, style, bounds.Dx(), bounds.Dy())
	if len(lines) == 0 {
		return nil
	}

	dc := gg.NewContextForRGBA(canvas)
	dc.SetFontFace(face)
	fill := ColorOr(b.Color, white)

	if b.BorderEnabled && b.BorderWidth > 0 {
		r.step("border")
		dc.SetColor(ColorOr(b.BorderColor, black))
		for _, off := range strokeOffsets(b.BorderWidth * r.Scale / 2) {
			drawLines(dc, lines, off.X, off.Y)
		}
	}

	if b.GlowEnabled && b.GlowIntensity > 0 {
		blur := b.GlowIntensity * 3 * r.Scale
		area := layerBounds(lines, lineHeight, blur, 0, 0, bounds)
		glow := shadowLayer(lines, face, area, ColorOr(b.GlowColor, white), blur, 0, 0)
		for range 3 {
			r.step("glow")
			draw.Draw(canvas, area, glow, image.Point{}, draw.Over)
			dc.SetColor(fill)
			drawLines(dc, lines, 0, 0)
		}
	}

	if b.ShadowEnabled {
		r.step("shadow")
		blur := b.ShadowBlur * 2 * r.Scale
		dx, dy := b.ShadowOffsetX*2*r.Scale, b.ShadowOffsetY*2*r.Scale
		area := layerBounds(lines, lineHeight, blur, dx, dy, bounds)
		shadow := shadowLayer(lines, face, area, ColorOr(b.ShadowColor, black), blur, dx, dy)
		draw.Draw(canvas, area, shadow, image.Point{}, draw.Over)
	}

	r.step("fill")
	dc.SetColor(fill)
	drawLines(dc, lines, 0, 0)
	return nil
}

// place wraps the block text and positions every line in export pixels.
func (r *Renderer) place(face font.Face, size float64, b *layout.TextBlock, style layout.SlideStyle, w, h int) ([]placedLine, float64) {
	px, py, pw, ph := b.Rect.Pixels(w, h)

	pad := style.Padding * r.Scale
	maxW := pw - 2*pad
	if maxW <= 0 {
		maxW, pad = pw, 0
	}

	align := b.TextAlign
	if align == "" {
		align = style.TextAlign
	}
	ax := align.Anchor()
	x := px + pad + ax*maxW

	measure := textlayout.FaceMeasurer(face)
	texts := textlayout.Wrap(b.Text, maxW, measure)
	block := textlayout.Block{Y: py, Height: ph, FontSize: size, LineHeight: style.LineHeight}

	if len(texts) == 0 {
		return nil, 0
	}

	lines := make([]placedLine, len(texts))
	for i, t := range texts {
		lines[i] = placedLine{text: t, x: x, y: block.LineCenter(i, len(texts)), ax: ax, w: measure(t)}
	}
	return lines, block.TotalHeight(1)
}

func drawLines(dc *gg.Context, lines []placedLine, dx, dy float64) {
	for _, l := range lines {
		if l.text == "" {
			continue
		}
		dc.DrawStringAnchored(l.text, l.x+dx, l.y+dy, l.ax, 0.5)
	}
}

// strokeOffsets approximates a stroke of the given radius by concentric
// rings of offsets around the glyph origin.
func strokeOffsets(radius float64) []gg.Point {
	if radius <= 0 {
		return nil
	}
	var pts []gg.Point
	for ring := radius; ring > 0; ring-- {
		n := max(8, int(math.Ceil(2*math.Pi*ring)))
		for i := range n {
			a := 2 * math.Pi * float64(i) / float64(n)
			pts = append(pts, gg.Point{X: ring * math.Cos(a), Y: ring * math.Sin(a)})
		}
	}
	return pts
}

// layerBounds is the canvas area a blurred, offset copy of lines can touch.
func layerBounds(lines []placedLine, lineHeight, blur, dx, dy float64, canvas image.Rectangle) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, l := range lines {
		x0 := l.x - l.ax*l.w
		minX = math.Min(minX, x0)
		maxX = math.Max(maxX, x0+l.w)
		minY = math.Min(minY, l.y-lineHeight)
		maxY = math.Max(maxY, l.y+lineHeight)
	}
	margin := 1.5*blur + 2
	area := image.Rect(
		int(math.Floor(minX+math.Min(dx, 0)-margin)),
		int(math.Floor(minY+math.Min(dy, 0)-margin)),
		int(math.Ceil(maxX+math.Max(dx, 0)+margin)),
		int(math.Ceil(maxY+math.Max(dy, 0)+margin)),
	)
	return area.Intersect(canvas)
}

// shadowLayer renders lines in c onto a transparent layer covering area and
// blurs it. Canvas shadow blur b corresponds to a Gaussian sigma of b/2.
func shadowLayer(lines []placedLine, face font.Face, area image.Rectangle, c color.Color, blur, dx, dy float64) image.Image {
	if area.Empty() {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	dc := gg.NewContext(area.Dx(), area.Dy())
	dc.SetFontFace(face)
	dc.SetColor(c)
	drawLines(dc, lines, dx-float64(area.Min.X), dy-float64(area.Min.Y))
	if blur <= 0 {
		return dc.Image()
	}
	return imaging.Blur(dc.Image(), blur/2)
}
