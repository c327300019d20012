// Package video turns an ordered stream of frames into a single encoded
// artifact.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log"
	"os"
	"os/exec"

	"github.com/ivlev/slidestudio/internal/system"
)

// FrameWriter accepts frames in presentation order. Close finishes the
// stream and flushes the encoded artifact.
type FrameWriter interface {
	WriteFrame(img image.Image) error
	Close() error
}

type Encoder interface {
	// Ext is the file extension of the produced container, without dot.
	Ext() string
	Begin(ctx context.Context, w io.Writer, width, height, fps int) (FrameWriter, error)
}

// NewEncoder picks an encoder by name. "auto" uses the best ffmpeg H.264
// encoder when ffmpeg is installed and the built-in MJPEG AVI writer
// otherwise.
func NewEncoder(name string, quality int) Encoder {
	switch name {
	case "avi", "mjpeg":
		return &AVIEncoder{}
	case "", "auto":
		if !system.HasFFmpeg() {
			log.Println("[!] ffmpeg not found, animated exports fall back to MJPEG AVI")
			return &AVIEncoder{}
		}
		return &FFmpegEncoder{Codec: system.GetBestH264Encoder(), Quality: quality}
	default:
		return &FFmpegEncoder{Codec: name, Quality: quality}
	}
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process writing an
// H.264 mp4.
type FFmpegEncoder struct {
	Codec   string
	Quality int
}

func (e *FFmpegEncoder) Ext() string { return "mp4" }

func (e *FFmpegEncoder) Begin(ctx context.Context, w io.Writer, width, height, fps int) (FrameWriter, error) {
	tmp, err := os.CreateTemp("", "slidestudio-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg", e.buildArgs(width, height, fps, tmp.Name())...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &ffmpegWriter{cmd: cmd, stdin: stdin, stderr: stderr, path: tmp.Name(), out: w, width: width, height: height}, nil
}

func (e *FFmpegEncoder) buildArgs(width, height, fps int, path string) []string {
	codec := e.Codec
	if codec == "" {
		codec = "libx264"
	}
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", codec,
	}

	quality := e.Quality
	if quality <= 0 {
		quality = defaultQuality(codec)
	}
	switch codec {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	return append(args, "-movflags", "+faststart", path)
}

func defaultQuality(codec string) int {
	switch codec {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}

type ffmpegWriter struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	path   string
	out    io.Writer

	width, height int
	closed        bool
}

func (f *ffmpegWriter) WriteFrame(img image.Image) error {
	if b := img.Bounds(); b.Dx() != f.width || b.Dy() != f.height {
		return fmt.Errorf("frame is %dx%d, stream is %dx%d", b.Dx(), b.Dy(), f.width, f.height)
	}
	if err := writeRawRGBA(f.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	return nil
}

func (f *ffmpegWriter) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	defer os.Remove(f.path)

	f.stdin.Close()
	if err := f.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %v, output: %s", err, f.stderr.String())
	}

	encoded, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer encoded.Close()
	if _, err := io.Copy(f.out, encoded); err != nil {
		return fmt.Errorf("copy encoded video: %w", err)
	}
	return nil
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix[:rgba.Stride*bounds.Dy()])
	return err
}
