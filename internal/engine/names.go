package engine

import (
	"fmt"
	"strconv"

	"github.com/ivlev/slidestudio/internal/layout"
)

// StillName is "{label}_{index}_{com|sem}_texto.png".
func StillName(label string, index int, withText bool) string {
	if label == "" {
		label = "slide"
	}
	variant := "sem"
	if withText {
		variant = "com"
	}
	return fmt.Sprintf("%s_%d_%s_texto.png", label, index, variant)
}

// AnimationName is "ken-burns-{direction}-{duration}s.{ext}".
func AnimationName(d layout.Direction, duration float64, ext string) string {
	return fmt.Sprintf("ken-burns-%s-%ss.%s", d, strconv.FormatFloat(duration, 'f', -1, 64), ext)
}

// BatchName is "{base}_{i+1}.png" for the zero-based batch position i.
func BatchName(base string, i int) string {
	if base == "" {
		base = "slide"
	}
	return fmt.Sprintf("%s_%d.png", base, i+1)
}
