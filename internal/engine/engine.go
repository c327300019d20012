// Package engine drives the export pipeline: single stills, pan & zoom
// animations and ordered batch exports.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/slidestudio/internal/analyzer"
	"github.com/ivlev/slidestudio/internal/config"
	"github.com/ivlev/slidestudio/internal/effects"
	"github.com/ivlev/slidestudio/internal/fit"
	"github.com/ivlev/slidestudio/internal/layout"
	"github.com/ivlev/slidestudio/internal/renderer"
	"github.com/ivlev/slidestudio/internal/source"
	"github.com/ivlev/slidestudio/internal/system"
	"github.com/ivlev/slidestudio/internal/video"
)

// MaxSurfaceSide bounds either side of a render target.
const MaxSurfaceSide = 16384

// ImageSource resolves an image URL to decoded pixels.
type ImageSource interface {
	Acquire(ctx context.Context, url string) (*source.Image, error)
}

type Exporter struct {
	Config   *config.Config
	Images   ImageSource
	Renderer *renderer.Renderer
	Encoder  video.Encoder
	Sink     Sink
	Logger   *log.Logger

	// Legibility warns about text blocks that are hard to read; nil disables it.
	Legibility *analyzer.Checker

	// Sleep waits between batch items.
	Sleep func(time.Duration)
}

// New wires an Exporter from cfg: proxy-aware acquisition, a font cache
// rooted at cfg.FontDir, the configured video encoder and a directory sink.
func New(cfg *config.Config) (*Exporter, error) {
	fonts, err := renderer.NewFontCache(cfg.FontDir)
	if err != nil {
		return nil, err
	}
	return &Exporter{
		Config:   cfg,
		Images:   source.NewAcquirer(cfg.ProxyURL, cfg.FetchTimeout, cfg.MinImageBytes, cfg.PDFDPI),
		Renderer: renderer.New(cfg.Scale(), fonts),
		Encoder:  video.NewEncoder(cfg.VideoEncoder, cfg.Quality),
		Sink:     DirSink{Dir: cfg.OutputDir},
		Sleep:    time.Sleep,

		Legibility: analyzer.NewChecker(),
	}, nil
}

func (e *Exporter) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

func newSurface(w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 || w > MaxSurfaceSide || h > MaxSurfaceSide {
		return nil, &SurfaceUnavailableError{Width: w, Height: h, Err: errors.New("size out of range")}
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// loadImage acquires the slide image. Failures are logged and yield nil so
// the caller renders background-only output.
func (e *Exporter) loadImage(ctx context.Context, slide *layout.Slide) image.Image {
	if slide.Image == nil || slide.Image.URL == "" {
		return nil
	}
	img, err := e.Images.Acquire(ctx, slide.Image.URL)
	if err != nil {
		e.logger().Printf("[!] Image unavailable, rendering without it: %v", err)
		return nil
	}
	return img.Pixels
}

// drawCover paints src into frame with cover semantics; the part of frame
// outside the surface is clipped.
func drawCover(dst *image.RGBA, src image.Image, frame fit.Rect, scaler draw.Scaler) {
	sb := src.Bounds()
	crop, target := fit.Cover(float64(sb.Dx()), float64(sb.Dy()), frame)
	sr := crop.Image().Add(sb.Min).Intersect(sb)
	dr := target.Image()
	if sr.Empty() || dr.Empty() {
		return
	}
	scaler.Scale(dst, dr, src, sr, draw.Over, nil)
}

// RenderStill composes one slide on a new surface of the configured size.
func (e *Exporter) RenderStill(ctx context.Context, slide *layout.Slide, withText bool) (*image.RGBA, error) {
	w, h := e.Config.Width, e.Config.Height
	canvas, err := newSurface(w, h)
	if err != nil {
		return nil, err
	}

	renderer.FillBackground(canvas, slide.Style.BackgroundColor)

	if img := e.loadImage(ctx, slide); img != nil {
		x, y, fw, fh := slide.Image.Rect.Clamp().Pixels(w, h)
		drawCover(canvas, img, fit.Rect{X: x, Y: y, W: fw, H: fh}, draw.CatmullRom)
	}

	if withText {
		e.Renderer.DrawOverlay(canvas, slide.Style)
		e.checkLegibility(canvas, slide)
		if err := e.Renderer.DrawBlocks(canvas, slide); err != nil {
			return nil, fmt.Errorf("draw text: %w", err)
		}
	}
	return canvas, nil
}

func (e *Exporter) checkLegibility(bg image.Image, slide *layout.Slide) {
	if e.Legibility == nil {
		return
	}
	for _, r := range e.Legibility.Check(bg, slide) {
		if !e.Legibility.Legible(r) {
			e.logger().Printf("[!] Slide %q, text block %s may be hard to read: contrast %.1f:1, background edges %.0f%%",
				slide.Label, r.BlockID, r.Contrast, r.EdgeDensity*100)
		}
	}
}

func encodePNG(name string, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, &EncodeError{Name: name, Err: err}
	}
	return buf.Bytes(), nil
}

func (e *Exporter) exportNamed(ctx context.Context, slide *layout.Slide, withText bool, name string) (Artifact, error) {
	canvas, err := e.RenderStill(ctx, slide, withText)
	if err != nil {
		return Artifact{Name: name}, err
	}
	data, err := encodePNG(name, canvas)
	if err != nil {
		return Artifact{Name: name}, err
	}
	a := Artifact{Name: name, Data: data}
	if e.Sink != nil {
		if err := e.Sink.Save(ctx, a); err != nil {
			return a, fmt.Errorf("save %s: %w", name, err)
		}
	}
	return a, nil
}

// ExportStill renders, encodes and saves one slide as
// "{label}_{index}_{com|sem}_texto.png".
func (e *Exporter) ExportStill(ctx context.Context, slide *layout.Slide, index int, withText bool) (Artifact, error) {
	name := StillName(slide.Label, index, withText)
	a, err := e.exportNamed(ctx, slide, withText, name)
	if err != nil {
		e.logger().Printf("[!] Export %s failed, retry is possible: %v", name, err)
		return a, err
	}
	e.logger().Printf("[+++] Exported %s (%d bytes)", name, len(a.Data))
	return a, nil
}

// BatchResult is the outcome of one batch item.
type BatchResult struct {
	Index    int
	Artifact Artifact
	Err      error
}

// ExportBatch exports slides strictly in order, one at a time, waiting
// PacingDelay between items. A failed item does not stop the batch unless
// StopOnError is set; the returned error joins every item failure.
func (e *Exporter) ExportBatch(ctx context.Context, slides []layout.Slide, withText bool, base string) ([]BatchResult, error) {
	results := make([]BatchResult, 0, len(slides))
	var errs []error

	for i := range slides {
		if i > 0 && e.Config.PacingDelay > 0 && e.Sleep != nil {
			e.Sleep(e.Config.PacingDelay)
		}

		name := BatchName(base, i)
		a, err := e.exportNamed(ctx, &slides[i], withText, name)
		results = append(results, BatchResult{Index: i, Artifact: a, Err: err})
		if err != nil {
			e.logger().Printf("[!] Batch item %d (%s) failed: %v", i+1, name, err)
			errs = append(errs, fmt.Errorf("item %d: %w", i+1, err))
			if e.Config.StopOnError {
				break
			}
			continue
		}
		e.logger().Printf("[>] Batch %d/%d: %s", i+1, len(slides), name)
	}

	if e.Config.ShowStats {
		system.LogStats(e.logger(), "batch")
	}
	return results, errors.Join(errs...)
}

// ExportAnimation renders the pan & zoom sequence of the slide image and
// encodes it as one artifact named "ken-burns-{direction}-{duration}s.{ext}".
//
// Frames are rendered in windows of Config.Workers, each on its own pooled
// surface, and handed to the encoder in frame order.
func (e *Exporter) ExportAnimation(ctx context.Context, slide *layout.Slide, kb layout.KenBurnsConfig) (Artifact, error) {
	sampler, verr := effects.NewSampler(kb)
	if verr != nil {
		e.logger().Printf("[!] %v", verr)
	}
	cfg := sampler.Config()
	name := AnimationName(cfg.Direction, cfg.Duration, e.Encoder.Ext())

	if _, err := newSurface(cfg.Width, cfg.Height); err != nil {
		return Artifact{Name: name}, err
	}

	src := e.loadImage(ctx, slide)
	if src != nil {
		// The largest transform scale never needs more than twice the canvas.
		src = imaging.Fit(src, cfg.Width*2, cfg.Height*2, imaging.Lanczos)
	}

	var buf bytes.Buffer
	fw, err := e.Encoder.Begin(ctx, &buf, cfg.Width, cfg.Height, cfg.FPS)
	if err != nil {
		return Artifact{Name: name}, &EncodeError{Name: name, Err: err}
	}

	total := sampler.TotalFrames()
	e.logger().Printf("[*] Rendering %s: %d frames %dx%d @ %d FPS", name, total, cfg.Width, cfg.Height, cfg.FPS)
	start := time.Now()

	if err := e.renderFrames(ctx, sampler, slide.Style.BackgroundColor, src, fw); err != nil {
		fw.Close()
		var encErr *EncodeError
		if errors.As(err, &encErr) {
			encErr.Name = name
		}
		return Artifact{Name: name}, err
	}
	if err := fw.Close(); err != nil {
		return Artifact{Name: name}, &EncodeError{Name: name, Err: err}
	}

	a := Artifact{Name: name, Data: buf.Bytes()}
	if e.Sink != nil {
		if err := e.Sink.Save(ctx, a); err != nil {
			return a, fmt.Errorf("save %s: %w", name, err)
		}
	}
	e.logger().Printf("[+++] Exported %s in %v (%d bytes)", name, time.Since(start).Round(time.Millisecond), len(a.Data))
	if e.Config.ShowStats {
		system.LogStats(e.logger(), "animation")
	}
	return a, nil
}

func (e *Exporter) renderFrames(ctx context.Context, s *effects.Sampler, background string, src image.Image, fw video.FrameWriter) error {
	cfg := s.Config()
	total := s.TotalFrames()
	window := max(1, e.Config.Workers)
	w, h := cfg.Width, cfg.Height
	canvasFrame := fit.Rect{W: float64(w), H: float64(h)}

	for first := 0; first < total; first += window {
		last := min(first+window, total)
		frames := make([]*image.RGBA, last-first)

		g, gctx := errgroup.WithContext(ctx)
		for i := first; i < last; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				surface := system.GetSurface(w, h)
				renderer.FillBackground(surface, background)
				if src != nil {
					t := s.At(i)
					tx, ty := t.Pixels(w, h)
					frame := fit.Transform(canvasFrame, float64(w), float64(h), t.Scale, tx, ty)
					drawCover(surface, src, frame, draw.ApproxBiLinear)
				}
				frames[i-first] = surface
				return nil
			})
		}
		err := g.Wait()
		if err == nil {
			for _, f := range frames {
				if err = fw.WriteFrame(f); err != nil {
					err = &EncodeError{Err: err}
					break
				}
			}
		}
		for _, f := range frames {
			if f != nil {
				system.PutSurface(f)
			}
		}
		if err != nil {
			return err
		}

		if last == total || (first/window)%10 == 0 {
			e.logger().Printf("[>] Frames %d/%d", last, total)
		}
	}
	return nil
}
