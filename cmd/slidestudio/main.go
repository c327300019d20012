package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/slidestudio/internal/config"
	"github.com/ivlev/slidestudio/internal/effects"
	"github.com/ivlev/slidestudio/internal/engine"
	"github.com/ivlev/slidestudio/internal/layout"
	"github.com/ivlev/slidestudio/internal/manifest"
	"github.com/ivlev/slidestudio/internal/system"
)

var version = "dev"

const projectsDir = "input/projects"

func main() {
	for _, d := range []string{projectsDir, "output"} {
		os.MkdirAll(d, 0755)
	}

	configPtr := flag.String("config", "slidestudio.yaml", "YAML config file (optional)")
	projectPtr := flag.String("project", "", "Project file, JSON or YAML (default: newest file in input/projects/)")
	modePtr := flag.String("mode", "batch", "Mode: still, notext, animate, batch, preview")
	slidePtr := flag.Int("slide", 0, "1-based slide number for still/notext/animate/preview (0 = every slide for stills)")
	imagePtr := flag.String("image", "", "Image URL or path replacing the image of the selected slides")
	outputPtr := flag.String("output", "", "Output directory")
	presetPtr := flag.String("preset", "", "Aspect preset: 16:9, 9:16, 4:5, 1:1")
	widthPtr := flag.Int("width", 0, "Export width")
	heightPtr := flag.Int("height", 0, "Export height")
	workersPtr := flag.Int("workers", 0, "Parallel frame renderers")
	proxyPtr := flag.String("proxy", "", "Image proxy endpoint (called as ?url=...)")
	encoderPtr := flag.String("encoder", "", "Video encoder: auto, avi, libx264, h264_nvenc, h264_videotoolbox")
	qualityPtr := flag.Int("quality", 0, "Video quality (0 = per-encoder default; x264: CRF, VideoToolbox: bitrate = Q*100 kbit/s)")
	fontDirPtr := flag.String("fonts", "", "Directory with .ttf/.otf font families")
	directionPtr := flag.String("direction", "", "Pan/zoom direction: zoom-in, zoom-out, pan-left, pan-right, pan-up, pan-down")
	durationPtr := flag.Float64("duration", 0, "Animation duration in seconds (3-15)")
	fpsPtr := flag.Int("fps", 0, "Animation FPS")
	loopPtr := flag.Bool("loop", false, "Loop the preview until interrupted")
	statsPtr := flag.Bool("stats", false, "Print memory statistics after exports")
	stopPtr := flag.Bool("stop-on-error", false, "Stop a batch at the first failed item")
	versionPtr := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *versionPtr {
		fmt.Println("slidestudio", version)
		return
	}

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	cfg.BuildVersion = version

	// Explicit flags override the config file. A preset goes first so that
	// -width/-height can refine it.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["preset"] {
		cfg.Preset = *presetPtr
		cfg.ApplyPreset(cfg.Preset)
	}
	if set["width"] {
		cfg.Width = *widthPtr
	}
	if set["height"] {
		cfg.Height = *heightPtr
	}
	if set["output"] {
		cfg.OutputDir = *outputPtr
	}
	if set["workers"] {
		cfg.Workers = *workersPtr
	}
	if set["proxy"] {
		cfg.ProxyURL = *proxyPtr
	}
	if set["encoder"] {
		cfg.VideoEncoder = *encoderPtr
	}
	if set["quality"] {
		cfg.Quality = *qualityPtr
	}
	if set["fonts"] {
		cfg.FontDir = *fontDirPtr
	}
	if set["fps"] {
		cfg.FPS = *fpsPtr
	}
	if set["stats"] {
		cfg.ShowStats = *statsPtr
	}
	if set["stop-on-error"] {
		cfg.StopOnError = *stopPtr
	}
	cfg.SetDefaults()

	project, projectPath := loadProject(*projectPtr)
	if len(project.Slides) == 0 {
		log.Fatalf("[-] Project %s has no slides", projectPath)
	}

	slides, err := selectSlides(project, *slidePtr)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	if *imagePtr != "" {
		for _, i := range slides {
			project.Slides[i].SetImage(*imagePtr)
		}
	}

	kb := project.KenBurns
	if *directionPtr != "" {
		kb.Direction = layout.Direction(*directionPtr)
	}
	if *durationPtr > 0 {
		kb.Duration = *durationPtr
	}
	kb = animationSettings(kb, cfg, set)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *modePtr == "preview" {
		runPreview(ctx, kb, *loopPtr)
		return
	}

	exporter, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("[-] Engine init error: %v", err)
	}

	fmt.Printf("--- [SLIDESTUDIO %s] ---\n", cfg.BuildVersion)
	fmt.Printf("[*] Project: %s | Slides: %d\n", projectPath, len(project.Slides))
	fmt.Printf("[*] Export: %dx%d (scale %.3f) -> %s\n", cfg.Width, cfg.Height, cfg.Scale(), cfg.OutputDir)
	fmt.Println("-----------------------------")

	report := &manifest.Manifest{
		Project:   project.Name,
		Mode:      *modePtr,
		Version:   cfg.BuildVersion,
		CreatedAt: time.Now(),
		Width:     cfg.Width,
		Height:    cfg.Height,
	}

	switch *modePtr {
	case "still", "notext":
		withText := *modePtr == "still"
		for _, i := range slides {
			a, err := exporter.ExportStill(ctx, &project.Slides[i], i+1, withText)
			report.Add(i+1, project.Slides[i].Label, a.Name, len(a.Data), err)
		}

	case "animate":
		slide := &project.Slides[slides[0]]
		a, err := exporter.ExportAnimation(ctx, slide, kb)
		report.Add(slides[0]+1, slide.Label, a.Name, len(a.Data), err)
		if err == nil {
			fmt.Printf("[*] Animation: %s\n", filepath.Join(cfg.OutputDir, a.Name))
		}

	case "batch":
		results, _ := exporter.ExportBatch(ctx, project.Slides, true, project.BaseFilename)
		for _, r := range results {
			report.Add(r.Index+1, project.Slides[r.Index].Label, r.Artifact.Name, len(r.Artifact.Data), r.Err)
		}
		fmt.Printf("[*] Batch: %d/%d exported\n", len(results)-report.Failed(), len(project.Slides))

	default:
		log.Fatalf("[-] Unknown mode %q", *modePtr)
	}

	manifestPath := manifest.Path(cfg.OutputDir, report.CreatedAt)
	if err := manifest.Write(report, manifestPath); err != nil {
		log.Printf("[!] Could not write manifest: %v", err)
	} else {
		fmt.Printf("[*] Manifest: %s\n", manifestPath)
	}

	if n := report.Failed(); n > 0 {
		log.Fatalf("[-] %d of %d exports failed", n, len(report.Items))
	}
	fmt.Printf("[+++] Done! Results in %s\n", cfg.OutputDir)
}

// loadProject reads the given project or the newest one in input/projects.
// Without any project file a demo project is used.
func loadProject(path string) (*layout.Project, string) {
	if path == "" {
		latest, err := system.FindLatestProject(projectsDir)
		if err != nil {
			log.Printf("[!] %v, using a demo project", err)
			return demoProject(), "(demo)"
		}
		path = latest
		fmt.Printf("[*] Selected project: %s\n", path)
	}
	project, err := layout.Load(path)
	if err != nil {
		log.Fatalf("[-] Project error: %v", err)
	}
	return project, path
}

func demoProject() *layout.Project {
	p := layout.DefaultProject()
	p.Name = "demo"
	slide := &p.Slides[0]
	slide.Label = "demo"
	slide.Style.BackgroundColor = "#1d3557"
	slide.AddTextBlock("Slide Studio")
	return p
}

// animationSettings keeps the project's saved frame rate and size unless a
// flag asks for another one or the project leaves them unset.
func animationSettings(kb layout.KenBurnsConfig, cfg *config.Config, set map[string]bool) layout.KenBurnsConfig {
	if set["fps"] || kb.FPS <= 0 {
		kb.FPS = cfg.FPS
	}
	if set["width"] || set["height"] || set["preset"] || kb.Width <= 0 || kb.Height <= 0 {
		kb.Width, kb.Height = cfg.Width, cfg.Height
	}
	return kb
}

// selectSlides returns the zero-based indexes addressed by a 1-based slide
// number; 0 selects every slide.
func selectSlides(p *layout.Project, n int) ([]int, error) {
	if n == 0 {
		idx := make([]int, len(p.Slides))
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	if n < 0 || n > len(p.Slides) {
		return nil, fmt.Errorf("slide %d out of range 1..%d", n, len(p.Slides))
	}
	return []int{n - 1}, nil
}

func runPreview(ctx context.Context, kb layout.KenBurnsConfig, loop bool) {
	norm, verr := effects.Normalize(kb)
	if verr != nil {
		log.Printf("[!] %v", verr)
	}
	sched := effects.NewTickerScheduler(norm.FPS)
	defer sched.Stop()

	p := &effects.Preview{Direction: norm.Direction, Duration: norm.Duration, Loop: loop, Scheduler: sched}
	err := p.Run(ctx, func(progress float64, t effects.Transform) {
		const width = 40
		filled := int(progress * width)
		fmt.Printf("\r[>] %s [%s%s] %5.1f%% scale=%.3f tx=%+.2f%% ty=%+.2f%%",
			norm.Direction, strings.Repeat("#", filled), strings.Repeat(".", width-filled),
			progress*100, t.Scale, t.TranslateX, t.TranslateY)
	})
	fmt.Println()
	if err != nil && ctx.Err() == nil {
		log.Fatalf("[-] Preview error: %v", err)
	}
}
