package main

import (
	"testing"

	"github.com/ivlev/slidestudio/internal/config"
	"github.com/ivlev/slidestudio/internal/layout"
)

func TestAnimationSettings(t *testing.T) {
	cfg := &config.Config{Width: 1080, Height: 1350, FPS: 30}
	saved := layout.KenBurnsConfig{Direction: layout.PanLeft, Duration: 5, FPS: 24, Width: 1920, Height: 1080}

	tests := []struct {
		name string
		kb   layout.KenBurnsConfig
		set  map[string]bool
		fps  int
		w, h int
	}{
		{"project values kept", saved, nil, 24, 1920, 1080},
		{"fps flag", saved, map[string]bool{"fps": true}, 30, 1920, 1080},
		{"width flag", saved, map[string]bool{"width": true}, 24, 1080, 1350},
		{"preset flag", saved, map[string]bool{"preset": true}, 24, 1080, 1350},
		{"unset project values", layout.KenBurnsConfig{Direction: layout.ZoomIn}, nil, 30, 1080, 1350},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := animationSettings(tt.kb, cfg, tt.set)
			if got.FPS != tt.fps || got.Width != tt.w || got.Height != tt.h {
				t.Errorf("Expected %d FPS %dx%d, got %d FPS %dx%d", tt.fps, tt.w, tt.h, got.FPS, got.Width, got.Height)
			}
			if got.Direction != tt.kb.Direction || got.Duration != tt.kb.Duration {
				t.Errorf("Direction/duration changed: %+v", got)
			}
		})
	}
}

func TestSelectSlides(t *testing.T) {
	p := &layout.Project{Slides: make([]layout.Slide, 3)}
	if idx, err := selectSlides(p, 0); err != nil || len(idx) != 3 {
		t.Errorf("Expected every slide, got %v (%v)", idx, err)
	}
	if idx, err := selectSlides(p, 2); err != nil || len(idx) != 1 || idx[0] != 1 {
		t.Errorf("Expected [1], got %v (%v)", idx, err)
	}
	if _, err := selectSlides(p, 4); err == nil {
		t.Error("Expected out of range error")
	}
}
