package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/slidestudio/internal/analyzer"
	"github.com/ivlev/slidestudio/internal/config"
	"github.com/ivlev/slidestudio/internal/layout"
	"github.com/ivlev/slidestudio/internal/renderer"
	"github.com/ivlev/slidestudio/internal/source"
	"github.com/ivlev/slidestudio/internal/video"
)

type fakeImages struct {
	img   image.Image
	err   error
	calls int
}

func (f *fakeImages) Acquire(ctx context.Context, url string) (*source.Image, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	b := f.img.Bounds()
	return &source.Image{Pixels: f.img, Width: b.Dx(), Height: b.Dy(), Format: "png", Origin: "direct"}, nil
}

type memorySink struct {
	saved  []Artifact
	failOn map[string]bool
}

func (m *memorySink) Save(ctx context.Context, a Artifact) error {
	if m.failOn[a.Name] {
		return errors.New("storage rejected the upload")
	}
	m.saved = append(m.saved, a)
	return nil
}

// fakeEncoder records the top-left red value of every frame it receives.
type fakeEncoder struct {
	corner   []uint8
	failAt   int
	closed   bool
	begunFPS int
}

func (f *fakeEncoder) Ext() string { return "fake" }

func (f *fakeEncoder) Begin(ctx context.Context, w io.Writer, width, height, fps int) (video.FrameWriter, error) {
	f.begunFPS = fps
	return &fakeFrameWriter{enc: f, w: w}, nil
}

type fakeFrameWriter struct {
	enc *fakeEncoder
	w   io.Writer
}

func (fw *fakeFrameWriter) WriteFrame(img image.Image) error {
	if fw.enc.failAt > 0 && len(fw.enc.corner) == fw.enc.failAt {
		return errors.New("disk full")
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	fw.enc.corner = append(fw.enc.corner, uint8(r>>8))
	_, err := fw.w.Write([]byte{1})
	return err
}

func (fw *fakeFrameWriter) Close() error {
	fw.enc.closed = true
	return nil
}

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / (w - 1)), 0, 0, 255})
		}
	}
	return img
}

func newTestExporter(t *testing.T, images ImageSource) (*Exporter, *memorySink, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{Width: 216, Height: 270, ReferenceWidth: 1080, Workers: 4, PacingDelay: 25 * time.Millisecond}
	fonts, err := renderer.NewFontCache("")
	if err != nil {
		t.Fatal(err)
	}
	sink := &memorySink{}
	logs := &bytes.Buffer{}
	return &Exporter{
		Config:   cfg,
		Images:   images,
		Renderer: renderer.New(cfg.Scale(), fonts),
		Encoder:  &fakeEncoder{},
		Sink:     sink,
		Logger:   log.New(logs, "", 0),
		Sleep:    func(time.Duration) {},
	}, sink, logs
}

func TestExportStillWithoutImage(t *testing.T) {
	images := &fakeImages{err: errors.New("must not be called")}
	e, sink, _ := newTestExporter(t, images)

	slide := layout.NewSlide("intro", "")
	slide.Style.BackgroundColor = "#336699"
	slide.AddTextBlock("Hello there")

	a, err := e.ExportStill(context.Background(), slide, 1, true)
	if err != nil {
		t.Fatalf("ExportStill: %v", err)
	}
	if a.Name != "intro_1_com_texto.png" || len(a.Data) == 0 {
		t.Fatalf("Unexpected artifact %s (%d bytes)", a.Name, len(a.Data))
	}
	if images.calls != 0 {
		t.Error("Image source called for a slide without image")
	}
	if len(sink.saved) != 1 {
		t.Errorf("Expected one saved artifact, got %d", len(sink.saved))
	}

	img, err := png.Decode(bytes.NewReader(a.Data))
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 216 || img.Bounds().Dy() != 270 {
		t.Errorf("Unexpected size %v", img.Bounds())
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 0x33 || g>>8 != 0x66 || b>>8 != 0x99 {
		t.Errorf("Background not filled: %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestImageLoadFailureDegrades(t *testing.T) {
	loadErr := &source.ImageLoadError{URL: "https://x/y.png", Direct: errors.New("404")}
	e, _, logs := newTestExporter(t, &fakeImages{err: loadErr})

	slide := layout.NewSlide("s", "https://x/y.png")
	a, err := e.ExportStill(context.Background(), slide, 2, false)
	if err != nil {
		t.Fatalf("Acquisition failure must not fail the export: %v", err)
	}
	if a.Name != "s_2_sem_texto.png" || len(a.Data) == 0 {
		t.Errorf("Unexpected artifact %s", a.Name)
	}
	if !strings.Contains(logs.String(), "[!] Image unavailable") {
		t.Errorf("Failure was not logged: %q", logs.String())
	}
}

func TestRenderStillDrawsCoverImage(t *testing.T) {
	e, _, _ := newTestExporter(t, &fakeImages{img: gradientImage(400, 100)})
	slide := layout.NewSlide("s", "img.png")

	canvas, err := e.RenderStill(context.Background(), slide, false)
	if err != nil {
		t.Fatal(err)
	}
	left := canvas.RGBAAt(0, 135).R
	right := canvas.RGBAAt(215, 135).R
	if left < 80 || right > 175 || left >= right {
		t.Errorf("Expected the horizontally cropped middle of the gradient, got %d..%d", left, right)
	}
}

func TestSurfaceUnavailable(t *testing.T) {
	e, _, _ := newTestExporter(t, &fakeImages{})
	e.Config.Width = 0

	_, err := e.ExportStill(context.Background(), layout.NewSlide("s", ""), 1, true)
	var surfErr *SurfaceUnavailableError
	if !errors.As(err, &surfErr) {
		t.Fatalf("Expected SurfaceUnavailableError, got %v", err)
	}
}

func TestExportBatchOrder(t *testing.T) {
	e, sink, _ := newTestExporter(t, &fakeImages{})
	var pauses []time.Duration
	e.Sleep = func(d time.Duration) { pauses = append(pauses, d) }

	slides := []layout.Slide{*layout.NewSlide("a", ""), *layout.NewSlide("b", ""), *layout.NewSlide("c", "")}
	results, err := e.ExportBatch(context.Background(), slides, true, "carousel")
	if err != nil {
		t.Fatalf("ExportBatch: %v", err)
	}
	if len(results) != 3 || len(sink.saved) != 3 {
		t.Fatalf("Expected 3 artifacts, got %d results / %d saved", len(results), len(sink.saved))
	}
	for i, suffix := range []string{"_1.png", "_2.png", "_3.png"} {
		if sink.saved[i].Name != "carousel"+suffix || results[i].Index != i {
			t.Errorf("Item %d: %s (index %d)", i, sink.saved[i].Name, results[i].Index)
		}
	}
	if len(pauses) != 2 || pauses[0] != 25*time.Millisecond {
		t.Errorf("Expected two pacing pauses, got %v", pauses)
	}
}

func TestExportBatchContinuesAfterFailure(t *testing.T) {
	e, sink, _ := newTestExporter(t, &fakeImages{})
	sink.failOn = map[string]bool{"deck_2.png": true}
	slides := []layout.Slide{*layout.NewSlide("a", ""), *layout.NewSlide("b", ""), *layout.NewSlide("c", "")}

	results, err := e.ExportBatch(context.Background(), slides, false, "deck")
	if err == nil || len(results) != 3 {
		t.Fatalf("Expected 3 results and an error, got %d, %v", len(results), err)
	}
	if results[0].Err != nil || results[1].Err == nil || results[2].Err != nil {
		t.Errorf("Only the second item should fail: %+v", results)
	}
	if sink.saved[1].Name != "deck_3.png" {
		t.Errorf("Numbering must be preserved after a failure, got %s", sink.saved[1].Name)
	}

	e.Config.StopOnError = true
	sink.saved = nil
	results, _ = e.ExportBatch(context.Background(), slides, false, "deck")
	if len(results) != 2 {
		t.Errorf("StopOnError should stop after the failing item, got %d results", len(results))
	}
}

func TestExportAnimation(t *testing.T) {
	e, sink, _ := newTestExporter(t, &fakeImages{img: gradientImage(80, 60)})
	enc := &fakeEncoder{}
	e.Encoder = enc

	kb := layout.KenBurnsConfig{Direction: layout.ZoomIn, Duration: 3, FPS: 10, Width: 40, Height: 30}
	a, err := e.ExportAnimation(context.Background(), layout.NewSlide("s", "img.png"), kb)
	if err != nil {
		t.Fatalf("ExportAnimation: %v", err)
	}
	if a.Name != "ken-burns-zoom-in-3s.fake" {
		t.Errorf("Unexpected name %s", a.Name)
	}
	if len(enc.corner) != 30 || len(a.Data) != 30 || !enc.closed || enc.begunFPS != 10 {
		t.Fatalf("Expected 30 frames and a closed stream, got %d frames", len(enc.corner))
	}
	for i := 1; i < len(enc.corner); i++ {
		if enc.corner[i]+2 < enc.corner[i-1] {
			t.Fatalf("Frame %d out of order: corner %d after %d", i, enc.corner[i], enc.corner[i-1])
		}
	}
	if enc.corner[len(enc.corner)-1] <= enc.corner[0] {
		t.Errorf("Zoom-in should move the corner into the image: %d -> %d", enc.corner[0], enc.corner[len(enc.corner)-1])
	}
	if len(sink.saved) != 1 {
		t.Errorf("Expected the animation to be saved once")
	}
}

func TestExportAnimationEncodeError(t *testing.T) {
	e, _, _ := newTestExporter(t, &fakeImages{img: gradientImage(80, 60)})
	e.Encoder = &fakeEncoder{failAt: 5}

	_, err := e.ExportAnimation(context.Background(), layout.NewSlide("s", "img.png"),
		layout.KenBurnsConfig{Direction: "sideways", Duration: 1, FPS: 10, Width: 40, Height: 30})
	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatalf("Expected EncodeError, got %v", err)
	}
	if encErr.Name != "ken-burns-zoom-in-3s.fake" {
		t.Errorf("Invalid config should be normalized before naming, got %s", encErr.Name)
	}
}

func TestNames(t *testing.T) {
	tests := []struct{ got, want string }{
		{StillName("cover", 1, true), "cover_1_com_texto.png"},
		{StillName("", 4, false), "slide_4_sem_texto.png"},
		{AnimationName(layout.PanLeft, 7.5, "mp4"), "ken-burns-pan-left-7.5s.mp4"},
		{AnimationName(layout.ZoomOut, 5, "avi"), "ken-burns-zoom-out-5s.avi"},
		{BatchName("post", 0), "post_1.png"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Got %s, want %s", tt.got, tt.want)
		}
	}
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := DirSink{Dir: dir}
	if err := s.Save(context.Background(), Artifact{Name: "../a.png", Data: []byte("png")}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	if err != nil || string(data) != "png" {
		t.Errorf("Artifact not written inside the sink dir: %v", err)
	}
}

func TestLegibilityWarning(t *testing.T) {
	e, _, logs := newTestExporter(t, &fakeImages{})
	e.Legibility = analyzer.NewChecker()

	slide := layout.NewSlide("pale", "")
	slide.Style.BackgroundColor = "#FFFFFF"
	slide.Style.OverlayType = layout.OverlayNone
	b := slide.AddTextBlock("Invisible")
	b.Color = "#FFFFFF"

	if _, err := e.RenderStill(context.Background(), slide, true); err != nil {
		t.Fatalf("RenderStill: %v", err)
	}
	if !strings.Contains(logs.String(), "hard to read") {
		t.Errorf("Expected a legibility warning, got %q", logs.String())
	}

	logs.Reset()
	b.Color = "#000000"
	if _, err := e.RenderStill(context.Background(), slide, true); err != nil {
		t.Fatalf("RenderStill: %v", err)
	}
	if strings.Contains(logs.String(), "hard to read") {
		t.Errorf("Unexpected warning for dark text: %q", logs.String())
	}
}
