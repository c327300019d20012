package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/slidestudio/internal/layout"
)

// Transform is the pan/zoom state of one frame. Translations are
// percentages of the canvas width/height.
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// Pixels converts the translation to pixels for a w x h canvas.
func (t Transform) Pixels(w, h int) (tx, ty float64) {
	return t.TranslateX * float64(w) / 100, t.TranslateY * float64(h) / 100
}

// Ease is the cubic ease-in-out curve: 4t³ below 0.5, 1-(-2t+2)³/2 above.
func Ease(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

const (
	zoomAmount = 0.3
	panScale   = 1.2
	panAmount  = 10.0 // percent
)

type transformFunc func(e float64) Transform

var directionTable = map[layout.Direction]transformFunc{
	layout.ZoomIn:   func(e float64) Transform { return Transform{Scale: 1 + e*zoomAmount} },
	layout.ZoomOut:  func(e float64) Transform { return Transform{Scale: 1.3 - e*zoomAmount} },
	layout.PanLeft:  func(e float64) Transform { return Transform{Scale: panScale, TranslateX: -e * panAmount} },
	layout.PanRight: func(e float64) Transform { return Transform{Scale: panScale, TranslateX: e * panAmount} },
	layout.PanUp:    func(e float64) Transform { return Transform{Scale: panScale, TranslateY: -e * panAmount} },
	layout.PanDown:  func(e float64) Transform { return Transform{Scale: panScale, TranslateY: e * panAmount} },
}

// TransformAt returns the transform for direction d at linear progress p.
func TransformAt(d layout.Direction, p float64) Transform {
	fn, ok := directionTable[d]
	if !ok {
		fn = directionTable[layout.ZoomIn]
	}
	return fn(Ease(p))
}

const (
	MinDuration = 3.0
	MaxDuration = 15.0
	MaxFPS      = 120
)

// ConfigValidationError lists the fields Normalize had to repair.
type ConfigValidationError struct {
	Fixes []string
}

func (e *ConfigValidationError) Error() string {
	return "ken burns config adjusted: " + strings.Join(e.Fixes, "; ")
}

// Normalize replaces malformed fields with preset values. It never fails:
// the returned error only describes what was changed and may be logged.
func Normalize(cfg layout.KenBurnsConfig) (layout.KenBurnsConfig, *ConfigValidationError) {
	def := layout.DefaultKenBurns()
	var fixes []string

	if _, ok := directionTable[cfg.Direction]; !ok {
		fixes = append(fixes, fmt.Sprintf("direction %q -> %s", cfg.Direction, def.Direction))
		cfg.Direction = def.Direction
	}

	switch d := cfg.Duration; {
	case math.IsNaN(d) || math.IsInf(d, 0) || d <= 0:
		fixes = append(fixes, fmt.Sprintf("duration %v -> %v", d, def.Duration))
		cfg.Duration = def.Duration
	case d < MinDuration:
		fixes = append(fixes, fmt.Sprintf("duration %v -> %v", d, MinDuration))
		cfg.Duration = MinDuration
	case d > MaxDuration:
		fixes = append(fixes, fmt.Sprintf("duration %v -> %v", d, MaxDuration))
		cfg.Duration = MaxDuration
	}

	if cfg.FPS <= 0 {
		fixes = append(fixes, fmt.Sprintf("fps %d -> %d", cfg.FPS, def.FPS))
		cfg.FPS = def.FPS
	} else if cfg.FPS > MaxFPS {
		fixes = append(fixes, fmt.Sprintf("fps %d -> %d", cfg.FPS, MaxFPS))
		cfg.FPS = MaxFPS
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		fixes = append(fixes, fmt.Sprintf("size %dx%d -> %dx%d", cfg.Width, cfg.Height, def.Width, def.Height))
		cfg.Width, cfg.Height = def.Width, def.Height
	}

	if len(fixes) == 0 {
		return cfg, nil
	}
	return cfg, &ConfigValidationError{Fixes: fixes}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
