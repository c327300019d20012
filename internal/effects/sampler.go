// Package effects samples the pan & zoom ("Ken Burns") animation: an eased
// progress curve mapped through a per-direction transform, either per export
// frame or per tick of a live preview.
package effects

import (
	"iter"
	"math"

	"github.com/ivlev/slidestudio/internal/layout"
)

type Sampler struct {
	cfg layout.KenBurnsConfig
}

// NewSampler normalizes cfg and returns a sampler for it together with any
// adjustments that were made.
func NewSampler(cfg layout.KenBurnsConfig) (*Sampler, *ConfigValidationError) {
	norm, verr := Normalize(cfg)
	return &Sampler{cfg: norm}, verr
}

func (s *Sampler) Config() layout.KenBurnsConfig { return s.cfg }

// TotalFrames is duration*fps rounded to a whole frame count.
func (s *Sampler) TotalFrames() int {
	n := int(math.Round(s.cfg.Duration * float64(s.cfg.FPS)))
	if n < 1 {
		n = 1
	}
	return n
}

// At returns the transform for an export frame index in [0, TotalFrames).
func (s *Sampler) At(frame int) Transform {
	return TransformAt(s.cfg.Direction, float64(frame)/float64(s.TotalFrames()))
}

// Frames yields every export frame in order. The sequence is finite.
func (s *Sampler) Frames() iter.Seq2[int, Transform] {
	return func(yield func(int, Transform) bool) {
		total := s.TotalFrames()
		for i := 0; i < total; i++ {
			if !yield(i, s.At(i)) {
				return
			}
		}
	}
}
