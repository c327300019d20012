package video

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

const defaultJPEGQuality = 90

// AVIEncoder writes a Motion JPEG AVI without external tools. Frames are
// JPEG-compressed as they arrive; the RIFF structure is written on Close
// once every chunk size is known.
type AVIEncoder struct {
	JPEGQuality int
}

func (e *AVIEncoder) Ext() string { return "avi" }

func (e *AVIEncoder) Begin(_ context.Context, w io.Writer, width, height, fps int) (FrameWriter, error) {
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid stream %dx%d@%d", width, height, fps)
	}
	q := e.JPEGQuality
	if q <= 0 || q > 100 {
		q = defaultJPEGQuality
	}
	return &aviWriter{out: w, width: width, height: height, fps: fps, quality: q}, nil
}

type aviWriter struct {
	out                io.Writer
	width, height, fps int
	quality            int

	frames  [][]byte
	maxSize int
	closed  bool
}

func (a *aviWriter) WriteFrame(img image.Image) error {
	if b := img.Bounds(); b.Dx() != a.width || b.Dy() != a.height {
		return fmt.Errorf("frame is %dx%d, stream is %dx%d", b.Dx(), b.Dy(), a.width, a.height)
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: a.quality}); err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	a.frames = append(a.frames, buf.Bytes())
	a.maxSize = max(a.maxSize, buf.Len())
	return nil
}

// riffWriter accumulates the first write error so the layout code below
// reads like the file format.
type riffWriter struct {
	w   io.Writer
	err error
}

func (r *riffWriter) fourCC(s string) { r.raw([]byte(s)) }

func (r *riffWriter) u32(v uint32) {
	if r.err == nil {
		r.err = binary.Write(r.w, binary.LittleEndian, v)
	}
}

func (r *riffWriter) u16(v uint16) {
	if r.err == nil {
		r.err = binary.Write(r.w, binary.LittleEndian, v)
	}
}

func (r *riffWriter) raw(b []byte) {
	if r.err == nil {
		_, r.err = r.w.Write(b)
	}
}

func (a *aviWriter) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if len(a.frames) == 0 {
		return fmt.Errorf("no frames written")
	}

	total := uint32(len(a.frames))
	width, height, fps := uint32(a.width), uint32(a.height), uint32(a.fps)

	moviSize := uint32(4)
	for _, f := range a.frames {
		moviSize += 8 + padded(len(f))
	}
	idx1Size := 8 + total*16
	hdrlSize := uint32(4 + 64 + 124)
	fileSize := 4 + (8 + hdrlSize) + (8 + moviSize) + idx1Size

	w := &riffWriter{w: a.out}

	w.fourCC("RIFF")
	w.u32(fileSize)
	w.fourCC("AVI ")

	w.fourCC("LIST")
	w.u32(hdrlSize)
	w.fourCC("hdrl")

	// avih
	w.fourCC("avih")
	w.u32(56)
	w.u32(1000000 / fps)
	w.u32(uint32(a.maxSize) * fps)
	w.u32(0)
	w.u32(0x10) // AVIF_HASINDEX
	w.u32(total)
	w.u32(0)
	w.u32(1)
	w.u32(uint32(a.maxSize))
	w.u32(width)
	w.u32(height)
	w.u32(0)
	w.u32(0)
	w.u32(0)
	w.u32(0)

	w.fourCC("LIST")
	w.u32(116)
	w.fourCC("strl")

	// strh
	w.fourCC("strh")
	w.u32(56)
	w.fourCC("vids")
	w.fourCC("MJPG")
	w.u32(0)
	w.u16(0)
	w.u16(0)
	w.u32(0)
	w.u32(1)
	w.u32(fps)
	w.u32(0)
	w.u32(total)
	w.u32(uint32(a.maxSize))
	w.u32(0)
	w.u32(0)
	w.u16(0)
	w.u16(0)
	w.u16(uint16(width))
	w.u16(uint16(height))

	// strf: BITMAPINFOHEADER
	w.fourCC("strf")
	w.u32(40)
	w.u32(40)
	w.u32(width)
	w.u32(height)
	w.u16(1)
	w.u16(24)
	w.fourCC("MJPG")
	w.u32(width * height * 3)
	w.u32(0)
	w.u32(0)
	w.u32(0)
	w.u32(0)

	w.fourCC("LIST")
	w.u32(moviSize)
	w.fourCC("movi")
	for _, f := range a.frames {
		w.fourCC("00dc")
		w.u32(uint32(len(f)))
		w.raw(f)
		if len(f)%2 != 0 {
			w.raw([]byte{0})
		}
	}

	w.fourCC("idx1")
	w.u32(total * 16)
	offset := uint32(4)
	for _, f := range a.frames {
		w.fourCC("00dc")
		w.u32(0x10) // AVIIF_KEYFRAME
		w.u32(offset)
		w.u32(uint32(len(f)))
		offset += 8 + padded(len(f))
	}

	a.frames = nil
	return w.err
}

func padded(n int) uint32 {
	return uint32(n + n%2)
}
