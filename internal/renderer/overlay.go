package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/ivlev/slidestudio/internal/layout"
)

type overlayFunc func(dc *gg.Context, w, h float64, c color.NRGBA, alpha float64)

// fadeStops is the stop set shared by the linear gradients: full alpha at
// the start, half at the midpoint, transparent at the end.
func fadeStops(g gg.Gradient, c color.NRGBA, alpha float64) {
	g.AddColorStop(0, WithAlpha(c, alpha))
	g.AddColorStop(0.5, WithAlpha(c, alpha/2))
	g.AddColorStop(1, WithAlpha(c, 0))
}

func fillGradient(dc *gg.Context, g gg.Gradient, w, h float64) {
	dc.SetFillStyle(g)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
}

var overlayTable = map[layout.OverlayType]overlayFunc{
	// bottom edge to 30% of the canvas height
	layout.OverlayGradientBottom: func(dc *gg.Context, w, h float64, c color.NRGBA, alpha float64) {
		g := gg.NewLinearGradient(0, h, 0, h*0.3)
		fadeStops(g, c, alpha)
		fillGradient(dc, g, w, h)
	},
	layout.OverlayGradientTop: func(dc *gg.Context, w, h float64, c color.NRGBA, alpha float64) {
		g := gg.NewLinearGradient(0, 0, 0, h*0.7)
		fadeStops(g, c, alpha)
		fillGradient(dc, g, w, h)
	},
	layout.OverlayGradientDiagonal: func(dc *gg.Context, w, h float64, c color.NRGBA, alpha float64) {
		g := gg.NewLinearGradient(0, h, w, 0)
		fadeStops(g, c, alpha)
		fillGradient(dc, g, w, h)
	},
	// transparent center, full alpha in the corners
	layout.OverlayGradientRadial: func(dc *gg.Context, w, h float64, c color.NRGBA, alpha float64) {
		r := math.Hypot(w, h) / 2
		g := gg.NewRadialGradient(w/2, h/2, 0, w/2, h/2, r)
		g.AddColorStop(0, WithAlpha(c, 0))
		g.AddColorStop(0.5, WithAlpha(c, alpha/2))
		g.AddColorStop(1, WithAlpha(c, alpha))
		fillGradient(dc, g, w, h)
	},
	layout.OverlaySolid: func(dc *gg.Context, w, h float64, c color.NRGBA, alpha float64) {
		dc.SetColor(WithAlpha(c, alpha))
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	},
	layout.OverlayNone: func(*gg.Context, float64, float64, color.NRGBA, float64) {},
}

// DrawOverlay paints the slide overlay in the background color at
// OverlayOpacity percent. Unknown overlay types paint nothing.
func (r *Renderer) DrawOverlay(canvas *image.RGBA, style layout.SlideStyle) {
	fn, ok := overlayTable[style.OverlayType]
	if !ok {
		return
	}
	alpha := math.Max(0, math.Min(100, style.OverlayOpacity)) / 100
	if alpha == 0 {
		return
	}
	b := canvas.Bounds()
	fn(gg.NewContextForRGBA(canvas), float64(b.Dx()), float64(b.Dy()), ColorOr(style.BackgroundColor, black), alpha)
}
