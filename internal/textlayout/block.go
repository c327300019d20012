package textlayout

// Block is the vertical geometry of a text block in export pixels.
type Block struct {
	Y          float64
	Height     float64
	FontSize   float64
	LineHeight float64 // multiplier
}

func (b Block) lineHeight() float64 {
	mult := b.LineHeight
	if mult <= 0 {
		mult = 1.2
	}
	return b.FontSize * mult
}

// TotalHeight is the height occupied by n lines.
func (b Block) TotalHeight(n int) float64 {
	return float64(n) * b.lineHeight()
}

// StartY is the top of the first of n lines so that the text is vertically
// centered in the block, whatever n is.
func (b Block) StartY(n int) float64 {
	return b.Y + (b.Height-b.TotalHeight(n))/2
}

// LineCenter is the vertical middle of line i out of n.
func (b Block) LineCenter(i, n int) float64 {
	lh := b.lineHeight()
	return b.StartY(n) + float64(i)*lh + lh/2
}
