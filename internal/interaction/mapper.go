// Package interaction turns pointer gestures over the editing canvas into
// normalized-space position and size updates.
package interaction

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/slidestudio/internal/layout"
)

const (
	MinResizeWidth = 20.0
	MaxResizeWidth = 100.0
)

var (
	ErrGestureActive = errors.New("another gesture is already active")
	ErrNoGesture     = errors.New("no active gesture")
	ErrEmptyBounds   = errors.New("container bounds have no area")
)

// Mode is the exclusive interaction state.
type Mode int

const (
	Idle Mode = iota
	MovingImage
	MovingText
	ResizingImage
	ResizingText
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case MovingImage:
		return "moving-image"
	case MovingText:
		return "moving-text"
	case ResizingImage:
		return "resizing-image"
	case ResizingText:
		return "resizing-text"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func (m Mode) targetsText() bool { return m == MovingText || m == ResizingText }
func (m Mode) isResize() bool    { return m == ResizingImage || m == ResizingText }

// Point is an absolute pointer position in container (screen) pixels.
type Point struct {
	X, Y float64
}

// Bounds is the container's bounding box in the same pixel space as Point.
type Bounds struct {
	Left, Top, Width, Height float64
}

// Delta converts the pointer travel from a to b into percentages of the
// container extent.
func (b Bounds) Delta(a, c Point) (dx, dy float64) {
	return (c.X - a.X) / b.Width * 100, (c.Y - a.Y) / b.Height * 100
}

// Move translates start by (dx, dy) percent without letting it leave the canvas.
func Move(start layout.Rect, dx, dy float64) layout.Rect {
	r := start
	r.X = clamp(start.X+dx, 0, 100-start.Width)
	r.Y = clamp(start.Y+dy, 0, 100-start.Height)
	return r
}

// Resize scales start uniformly. The dominant delta (in aspect-corrected
// terms) drives the new width, which is held to [MinResizeWidth,
// MaxResizeWidth]; height follows the original aspect and is capped at 100.
// The origin stays fixed unless the new size would overflow the canvas.
func Resize(start layout.Rect, dx, dy float64) layout.Rect {
	if start.Width <= 0 || start.Height <= 0 {
		return start.Clamp()
	}
	aspect := start.Height / start.Width

	grow := dx
	if math.Abs(dy/aspect) > math.Abs(dx) {
		grow = dy / aspect
	}

	w := clamp(start.Width+grow, MinResizeWidth, MaxResizeWidth)
	h := w * aspect
	if h > 100 {
		h = 100
		w = h / aspect
	}

	return layout.Rect{
		X:      clamp(start.X, 0, 100-w),
		Y:      clamp(start.Y, 0, 100-h),
		Width:  w,
		Height: h,
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Gesture is the snapshot taken when a drag or resize starts.
type Gesture struct {
	Mode    Mode
	TextID  string
	Pointer Point
	Start   layout.Rect
	Bounds  Bounds
}

// Mapper tracks at most one gesture at a time.
type Mapper struct {
	active *Gesture
}

func (m *Mapper) Mode() Mode {
	if m.active == nil {
		return Idle
	}
	return m.active.Mode
}

// Active returns the current gesture, if any.
func (m *Mapper) Active() (Gesture, bool) {
	if m.active == nil {
		return Gesture{}, false
	}
	return *m.active, true
}

// Begin starts a gesture on the slide target selected by mode and textID.
// The target's current rect is snapshotted.
func (m *Mapper) Begin(slide *layout.Slide, mode Mode, textID string, pointer Point, bounds Bounds) error {
	if m.active != nil {
		return ErrGestureActive
	}
	if mode == Idle {
		return fmt.Errorf("begin: %w", ErrNoGesture)
	}
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return ErrEmptyBounds
	}

	var start layout.Rect
	if mode.targetsText() {
		b, ok := slide.TextBlock(textID)
		if !ok {
			return layout.ErrTextBlockNotFound
		}
		start = b.Rect
	} else {
		if slide.Image == nil {
			return errors.New("slide has no image frame")
		}
		start = slide.Image.Rect
		textID = ""
	}

	m.active = &Gesture{Mode: mode, TextID: textID, Pointer: pointer, Start: start, Bounds: bounds}
	return nil
}

// Update computes the target rect for the pointer's current position.
func (m *Mapper) Update(pointer Point) (layout.Rect, error) {
	if m.active == nil {
		return layout.Rect{}, ErrNoGesture
	}
	g := m.active
	dx, dy := g.Bounds.Delta(g.Pointer, pointer)
	if g.Mode.isResize() {
		return Resize(g.Start, dx, dy), nil
	}
	return Move(g.Start, dx, dy), nil
}

// Apply writes r into the slide target of the active gesture.
func (m *Mapper) Apply(slide *layout.Slide, r layout.Rect) error {
	if m.active == nil {
		return ErrNoGesture
	}
	if m.active.Mode.targetsText() {
		return slide.SetTextRect(m.active.TextID, r)
	}
	slide.SetImageRect(r)
	return nil
}

// Drag is Update followed by Apply.
func (m *Mapper) Drag(slide *layout.Slide, pointer Point) (layout.Rect, error) {
	r, err := m.Update(pointer)
	if err != nil {
		return r, err
	}
	return r, m.Apply(slide, r)
}

// End finishes the gesture and returns to Idle.
func (m *Mapper) End() error {
	if m.active == nil {
		return ErrNoGesture
	}
	m.active = nil
	return nil
}

// Cancel restores the snapshot on the slide and returns to Idle.
func (m *Mapper) Cancel(slide *layout.Slide) error {
	if m.active == nil {
		return ErrNoGesture
	}
	err := m.Apply(slide, m.active.Start)
	m.active = nil
	return err
}
