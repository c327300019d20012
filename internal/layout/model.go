// Package layout holds the normalized-space slide model: an optional image
// frame, an ordered list of text blocks and the slide style. All positions and
// sizes are percentages (0-100) of the canvas extent.
package layout

// Rect is a position/size pair in normalized space.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// MinExtent is the smallest width/height Clamp will keep.
const MinExtent = 1.0

// Clamp returns r adjusted so that it has a positive size and lies inside
// the canvas: 0 <= x, x+width <= 100, 0 <= y, y+height <= 100.
func (r Rect) Clamp() Rect {
	r.Width = clamp(r.Width, MinExtent, 100)
	r.Height = clamp(r.Height, MinExtent, 100)
	r.X = clamp(r.X, 0, 100-r.Width)
	r.Y = clamp(r.Y, 0, 100-r.Height)
	return r
}

// Valid reports whether r satisfies the canvas invariants.
func (r Rect) Valid() bool {
	return r.Width > 0 && r.Height > 0 && r.X >= 0 && r.Y >= 0 &&
		r.X+r.Width <= 100 && r.Y+r.Height <= 100
}

// Pixels converts r to absolute pixels for a canvas of w x h.
func (r Rect) Pixels(w, h int) (x, y, width, height float64) {
	fw, fh := float64(w), float64(h)
	return r.X / 100 * fw, r.Y / 100 * fh, r.Width / 100 * fw, r.Height / 100 * fh
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// LayoutObject is the slide's image frame.
type LayoutObject struct {
	Rect `yaml:",inline"`
	URL  string `json:"url" yaml:"url"`
}

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Anchor is the horizontal anchor fraction used when drawing a line.
func (a TextAlign) Anchor() float64 {
	switch a {
	case AlignLeft:
		return 0
	case AlignRight:
		return 1
	default:
		return 0.5
	}
}

type TextPosition string

const (
	PositionTop    TextPosition = "top"
	PositionCenter TextPosition = "center"
	PositionBottom TextPosition = "bottom"
)

type TextBlock struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
	Rect `yaml:",inline"`

	FontSize   float64   `json:"fontSize" yaml:"font_size"`
	Color      string    `json:"color" yaml:"color"`
	FontFamily string    `json:"fontFamily" yaml:"font_family"`
	FontWeight string    `json:"fontWeight" yaml:"font_weight"`
	TextAlign  TextAlign `json:"textAlign" yaml:"text_align"`

	ShadowEnabled bool    `json:"shadowEnabled" yaml:"shadow_enabled"`
	ShadowColor   string  `json:"shadowColor" yaml:"shadow_color"`
	ShadowBlur    float64 `json:"shadowBlur" yaml:"shadow_blur"`
	ShadowOffsetX float64 `json:"shadowOffsetX" yaml:"shadow_offset_x"`
	ShadowOffsetY float64 `json:"shadowOffsetY" yaml:"shadow_offset_y"`

	BorderEnabled bool    `json:"borderEnabled" yaml:"border_enabled"`
	BorderColor   string  `json:"borderColor" yaml:"border_color"`
	BorderWidth   float64 `json:"borderWidth" yaml:"border_width"`

	GlowEnabled   bool    `json:"glowEnabled" yaml:"glow_enabled"`
	GlowColor     string  `json:"glowColor" yaml:"glow_color"`
	GlowIntensity float64 `json:"glowIntensity" yaml:"glow_intensity"`
}

// Bold reports whether the block asks for a bold face.
func (b *TextBlock) Bold() bool {
	switch b.FontWeight {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

type OverlayType string

const (
	OverlayGradientTop      OverlayType = "gradient-top"
	OverlayGradientBottom   OverlayType = "gradient-bottom"
	OverlayGradientRadial   OverlayType = "gradient-radial"
	OverlayGradientDiagonal OverlayType = "gradient-diagonal"
	OverlaySolid            OverlayType = "solid"
	OverlayNone             OverlayType = "none"
)

// OverlayTypes lists every overlay tag.
var OverlayTypes = []OverlayType{
	OverlayGradientTop, OverlayGradientBottom, OverlayGradientRadial,
	OverlayGradientDiagonal, OverlaySolid, OverlayNone,
}

type SlideStyle struct {
	BackgroundColor string       `json:"backgroundColor" yaml:"background_color"`
	OverlayType     OverlayType  `json:"overlayType" yaml:"overlay_type"`
	OverlayOpacity  float64      `json:"overlayOpacity" yaml:"overlay_opacity"` // 0-100
	TextAlign       TextAlign    `json:"textAlign" yaml:"text_align"`
	TextPosition    TextPosition `json:"textPosition" yaml:"text_position"`
	Padding         float64      `json:"padding" yaml:"padding"` // reference pixels
	LineHeight      float64      `json:"lineHeight" yaml:"line_height"`
	LinkURL         string       `json:"linkUrl,omitempty" yaml:"link_url,omitempty"`
}

type Direction string

const (
	ZoomIn   Direction = "zoom-in"
	ZoomOut  Direction = "zoom-out"
	PanLeft  Direction = "pan-left"
	PanRight Direction = "pan-right"
	PanUp    Direction = "pan-up"
	PanDown  Direction = "pan-down"
)

// Directions lists every pan/zoom direction.
var Directions = []Direction{ZoomIn, ZoomOut, PanLeft, PanRight, PanUp, PanDown}

type KenBurnsConfig struct {
	Direction Direction `json:"direction" yaml:"direction"`
	Duration  float64   `json:"duration" yaml:"duration"` // seconds
	FPS       int       `json:"fps" yaml:"fps"`
	Width     int       `json:"width" yaml:"width"`
	Height    int       `json:"height" yaml:"height"`
}

// Slide owns its image frame, text blocks (in paint order) and style.
type Slide struct {
	Label      string        `json:"label" yaml:"label"`
	Image      *LayoutObject `json:"image,omitempty" yaml:"image,omitempty"`
	TextBlocks []TextBlock   `json:"textBlocks" yaml:"text_blocks"`
	Style      SlideStyle    `json:"style" yaml:"style"`
}

// Project is the persisted document.
type Project struct {
	Name         string         `json:"name" yaml:"name"`
	BaseFilename string         `json:"baseFilename" yaml:"base_filename"`
	Slides       []Slide        `json:"slides" yaml:"slides"`
	KenBurns     KenBurnsConfig `json:"kenBurns" yaml:"ken_burns"`
}
