package layout

import (
	"errors"

	"github.com/google/uuid"
)

var ErrTextBlockNotFound = errors.New("text block not found")

// DefaultStyle returns the style a new slide starts with.
func DefaultStyle() SlideStyle {
	return SlideStyle{
		BackgroundColor: "#000000",
		OverlayType:     OverlayGradientBottom,
		OverlayOpacity:  60,
		TextAlign:       AlignCenter,
		TextPosition:    PositionBottom,
		Padding:         40,
		LineHeight:      1.2,
	}
}

// DefaultKenBurns returns the animation preset used when none is configured.
func DefaultKenBurns() KenBurnsConfig {
	return KenBurnsConfig{
		Direction: ZoomIn,
		Duration:  5,
		FPS:       30,
		Width:     1080,
		Height:    1350,
	}
}

// NewSlide creates a slide with the default style. A non-empty imageURL gets
// a full-canvas image frame.
func NewSlide(label, imageURL string) *Slide {
	s := &Slide{
		Label: label,
		Style: DefaultStyle(),
	}
	if imageURL != "" {
		s.Image = &LayoutObject{Rect: Rect{X: 0, Y: 0, Width: 100, Height: 100}, URL: imageURL}
	}
	return s
}

// NewTextBlock builds a block with the documented defaults, placed according
// to the style's default position and alignment.
func NewTextBlock(text string, style SlideStyle) TextBlock {
	y := 70.0
	switch style.TextPosition {
	case PositionTop:
		y = 10
	case PositionCenter:
		y = 40
	}
	align := style.TextAlign
	if align == "" {
		align = AlignCenter
	}
	return TextBlock{
		ID:            uuid.NewString(),
		Text:          text,
		Rect:          Rect{X: 10, Y: y, Width: 80, Height: 20},
		FontSize:      48,
		Color:         "#FFFFFF",
		FontFamily:    "Go",
		FontWeight:    "bold",
		TextAlign:     align,
		ShadowEnabled: true,
		ShadowColor:   "rgba(0,0,0,0.5)",
		ShadowBlur:    4,
		ShadowOffsetX: 2,
		ShadowOffsetY: 2,
		BorderColor:   "#000000",
		BorderWidth:   2,
		GlowColor:     "#FFFFFF",
		GlowIntensity: 5,
	}
}

// AddTextBlock appends a new default block and returns a pointer to it.
// The pointer is valid until the next structural mutation of the slide.
func (s *Slide) AddTextBlock(text string) *TextBlock {
	s.TextBlocks = append(s.TextBlocks, NewTextBlock(text, s.Style))
	return &s.TextBlocks[len(s.TextBlocks)-1]
}

// RemoveTextBlock deletes the block with the given id, keeping the order of
// the remaining blocks.
func (s *Slide) RemoveTextBlock(id string) bool {
	for i := range s.TextBlocks {
		if s.TextBlocks[i].ID == id {
			s.TextBlocks = append(s.TextBlocks[:i], s.TextBlocks[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Slide) TextBlock(id string) (*TextBlock, bool) {
	for i := range s.TextBlocks {
		if s.TextBlocks[i].ID == id {
			return &s.TextBlocks[i], true
		}
	}
	return nil, false
}

// SetImage points the slide at a new image, creating a full-canvas frame
// when the slide has none. An empty url removes the image.
func (s *Slide) SetImage(url string) {
	switch {
	case url == "":
		s.Image = nil
	case s.Image == nil:
		s.Image = &LayoutObject{Rect: Rect{Width: 100, Height: 100}, URL: url}
	default:
		s.Image.URL = url
	}
}

// SetImageRect updates the image frame position/size, clamped to the canvas.
// It is a no-op for slides without an image.
func (s *Slide) SetImageRect(r Rect) {
	if s.Image == nil {
		return
	}
	s.Image.Rect = r.Clamp()
}

// SetTextRect updates a text block position/size, clamped to the canvas.
func (s *Slide) SetTextRect(id string, r Rect) error {
	b, ok := s.TextBlock(id)
	if !ok {
		return ErrTextBlockNotFound
	}
	b.Rect = r.Clamp()
	return nil
}

func (s *Slide) SetText(id, text string) error {
	b, ok := s.TextBlock(id)
	if !ok {
		return ErrTextBlockNotFound
	}
	b.Text = text
	return nil
}

// Normalize fills zero-valued style fields with defaults, assigns missing
// block IDs and clamps every rect. It is applied to slides read from disk.
func (s *Slide) Normalize() {
	def := DefaultStyle()
	if s.Style.BackgroundColor == "" {
		s.Style.BackgroundColor = def.BackgroundColor
	}
	if s.Style.OverlayType == "" {
		s.Style.OverlayType = def.OverlayType
	}
	s.Style.OverlayOpacity = clamp(s.Style.OverlayOpacity, 0, 100)
	if s.Style.TextAlign == "" {
		s.Style.TextAlign = def.TextAlign
	}
	if s.Style.TextPosition == "" {
		s.Style.TextPosition = def.TextPosition
	}
	if s.Style.LineHeight <= 0 {
		s.Style.LineHeight = def.LineHeight
	}
	if s.Style.Padding < 0 {
		s.Style.Padding = 0
	}
	if s.Image != nil {
		s.Image.Rect = s.Image.Rect.Clamp()
	}

	seen := make(map[string]bool, len(s.TextBlocks))
	for i := range s.TextBlocks {
		b := &s.TextBlocks[i]
		if b.ID == "" || seen[b.ID] {
			b.ID = uuid.NewString()
		}
		seen[b.ID] = true
		b.Rect = b.Rect.Clamp()
		if b.FontSize <= 0 {
			b.FontSize = 48
		}
		if b.Color == "" {
			b.Color = "#FFFFFF"
		}
		if b.TextAlign == "" {
			b.TextAlign = s.Style.TextAlign
		}
	}
}
