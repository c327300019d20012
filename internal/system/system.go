package system

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// HasFFmpeg reports whether an ffmpeg binary is on PATH.
func HasFFmpeg() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

var (
	encoderOnce sync.Once
	encoderName string
)

// GetBestH264Encoder returns the preferred H.264 encoder that actually works
// with the local ffmpeg: VideoToolbox on macOS, then NVENC, then libx264.
// Hardware encoders are listed by most builds even without the hardware, so
// each candidate must pass a one-frame test encode. The probe runs once per
// process.
func GetBestH264Encoder() string {
	encoderOnce.Do(func() {
		encoderName = "libx264"
		out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
		if err != nil {
			return
		}
		encoderName = pickEncoder(string(out), testEncode)
	})
	return encoderName
}

var hardwareEncoders = []string{"h264_videotoolbox", "h264_nvenc"}

// pickEncoder returns the first hardware encoder that is listed and passes
// works, or libx264.
func pickEncoder(listing string, works func(codec string) bool) string {
	for _, name := range hardwareEncoders {
		if !strings.Contains(listing, name) {
			continue
		}
		if works(name) {
			return name
		}
		log.Printf("[!] %s is listed by ffmpeg but failed a test encode, skipping", name)
	}
	return "libx264"
}

// testEncode encodes one small black frame with codec and discards it.
func testEncode(codec string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=c=black:s=256x256:d=0.1",
		"-frames:v", "1", "-c:v", codec, "-f", "null", "-")
	return cmd.Run() == nil
}

var (
	ProjectExtensions = []string{".json", ".yaml", ".yml"}
	ImageExtensions   = []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp", ".tif", ".tiff", ".pdf"}
)

// FindLatestProject returns the most recently modified project file in dir.
func FindLatestProject(dir string) (string, error) {
	return findLatest(dir, ProjectExtensions, "project")
}

// FindLatestImage returns the most recently modified image in path, or in
// the directory containing path when path is a file.
func FindLatestImage(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	dir := path
	if !fi.IsDir() {
		dir = filepath.Dir(path)
	}
	return findLatest(dir, ImageExtensions, "image")
}

func findLatest(dir string, extensions []string, kind string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !slices.Contains(extensions, strings.ToLower(filepath.Ext(f.Name()))) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", kind, dir)
	}
	return latestFile, nil
}
