// Package textlayout implements greedy word wrapping and vertical centering
// of wrapped text inside a block.
package textlayout

import (
	"iter"
	"slices"
	"strings"

	"golang.org/x/image/font"
)

// Measurer returns the rendered width of s in pixels.
type Measurer func(s string) float64

// FaceMeasurer measures strings with an x/image font face.
func FaceMeasurer(face font.Face) Measurer {
	return func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64
	}
}

// Lines lazily yields the wrapped lines of text for maxWidth.
//
// Words are accumulated greedily: the next word joins the current line when
// the measured width of the joined line is <= maxWidth, otherwise the current
// line is closed. A single word wider than maxWidth is emitted alone and
// unmodified. A newline starts a new paragraph; blank paragraphs between
// others produce an empty line, leading and trailing ones are dropped. Text
// without any words yields nothing.
func Lines(text string, maxWidth float64, measure Measurer) iter.Seq[string] {
	return func(yield func(string) bool) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		for _, para := range strings.Split(text, "\n") {
			words := strings.Fields(para)
			if len(words) == 0 {
				if !yield("") {
					return
				}
				continue
			}

			current := words[0]
			for _, word := range words[1:] {
				candidate := current + " " + word
				if measure(candidate) <= maxWidth {
					current = candidate
					continue
				}
				if !yield(current) {
					return
				}
				current = word
			}
			if !yield(current) {
				return
			}
		}
	}
}

// Wrap collects Lines into a slice.
func Wrap(text string, maxWidth float64, measure Measurer) []string {
	return slices.Collect(Lines(text, maxWidth, measure))
}
