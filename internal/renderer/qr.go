package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

const (
	badgeSize   = 160.0
	badgeMargin = 32.0
	badgePad    = 8.0
)

// DrawLinkBadge paints a QR code for url in the bottom-right corner.
func (r *Renderer) DrawLinkBadge(canvas *image.RGBA, url string) error {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr code for %q: %w", url, err)
	}
	q.DisableBorder = true

	size := int(badgeSize * r.Scale)
	if size < 21 {
		size = 21
	}
	pad, margin := badgePad*r.Scale, badgeMargin*r.Scale

	b := canvas.Bounds()
	x := float64(b.Max.X) - margin - float64(size)
	y := float64(b.Max.Y) - margin - float64(size)

	dc := gg.NewContextForRGBA(canvas)
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(x-pad, y-pad, float64(size)+2*pad, float64(size)+2*pad, pad)
	dc.Fill()

	code := q.Image(size)
	dst := image.Rect(int(x), int(y), int(x)+size, int(y)+size)
	draw.Draw(canvas, dst, code, code.Bounds().Min, draw.Over)
	return nil
}
