// Package fit resolves "cover" crops: the source is scaled to fill the
// target frame completely and the excess on one axis is cropped symmetrically.
package fit

import (
	"image"
	"math"
)

// Rect is a rectangle in pixels with float precision.
type Rect struct {
	X, Y, W, H float64
}

// Image rounds r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.W))
	y1 := int(math.Round(r.Y + r.H))
	return image.Rect(x0, y0, x1, y1)
}

// Cover returns the source crop and the destination rectangle for drawing a
// srcW x srcH image into frame. The destination is always the frame itself.
func Cover(srcW, srcH float64, frame Rect) (src, dst Rect) {
	dst = frame
	if srcW <= 0 || srcH <= 0 || frame.W <= 0 || frame.H <= 0 {
		return Rect{W: math.Max(srcW, 0), H: math.Max(srcH, 0)}, dst
	}

	srcAspect := srcW / srcH
	frameAspect := frame.W / frame.H

	if srcAspect > frameAspect {
		cropW := frameAspect * srcH
		return Rect{X: (srcW - cropW) / 2, Y: 0, W: cropW, H: srcH}, dst
	}
	cropH := srcW / frameAspect
	return Rect{X: 0, Y: (srcH - cropH) / 2, W: srcW, H: cropH}, dst
}

// Transform scales frame by scale about the center of a canvasW x canvasH
// canvas and then translates it by (tx, ty) pixels.
func Transform(frame Rect, canvasW, canvasH, scale, tx, ty float64) Rect {
	cx, cy := canvasW/2, canvasH/2
	return Rect{
		X: cx + (frame.X-cx)*scale + tx,
		Y: cy + (frame.Y-cy)*scale + ty,
		W: frame.W * scale,
		H: frame.H * scale,
	}
}
