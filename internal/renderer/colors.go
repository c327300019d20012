package renderer

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"strings"
	"sync"

	"github.com/mazznoer/csscolorparser"
)

// ParseColor parses any CSS color: names, "#rgb[a]", "#rrggbb[aa]",
// rgb()/rgba() with numbers or percentages and hsl()/hsla().
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}
	c, err := csscolorparser.Parse(strings.ToLower(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{to8(c.R), to8(c.G), to8(c.B), to8(c.A)}, nil
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

var warnedColors sync.Map

// ColorOr parses s and falls back to def on error. An unset color falls back
// silently; an invalid one is logged once per value.
func ColorOr(s string, def color.NRGBA) color.NRGBA {
	if strings.TrimSpace(s) == "" {
		return def
	}
	c, err := ParseColor(s)
	if err != nil {
		if _, seen := warnedColors.LoadOrStore(s, true); !seen {
			log.Printf("[!] %v, using %s", err, hexOf(def))
		}
		return def
	}
	return c
}

func hexOf(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// WithAlpha returns c with its alpha multiplied by a in [0, 1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	a = math.Max(0, math.Min(1, a))
	c.A = uint8(math.Round(float64(c.A) * a))
	return c
}
