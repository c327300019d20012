package source

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is a decoded, drawable source image.
type Image struct {
	Pixels image.Image
	Width  int
	Height int
	Format string
	Origin string // "proxy" or "direct"
}

// Decoder turns raw bytes into pixels. Decoders are tried in order; a decoder
// that does not recognise the payload returns ErrUnsupported.
type Decoder interface {
	Decode(data []byte) (image.Image, string, error)
}

var ErrUnsupported = errors.New("unsupported image format")

// StdDecoder handles every format registered with the image package
// (png, jpeg, gif, bmp, tiff, webp).
type StdDecoder struct{}

func (StdDecoder) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, "", ErrUnsupported
	}
	return img, format, err
}

// PDFDecoder rasterises the first page of a PDF document.
type PDFDecoder struct {
	DPI int
}

func (d PDFDecoder) Decode(data []byte) (image.Image, string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, "", ErrUnsupported
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, "", err
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, "", errors.New("pdf has no pages")
	}
	dpi := d.DPI
	if dpi <= 0 {
		dpi = 150
	}
	img, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return nil, "", err
	}
	return img, "pdf", nil
}

// DefaultDecoders is the standard decoder chain.
func DefaultDecoders(pdfDPI int) []Decoder {
	return []Decoder{StdDecoder{}, PDFDecoder{DPI: pdfDPI}}
}

func decode(decoders []Decoder, data []byte) (*Image, error) {
	for _, d := range decoders {
		img, format, err := d.Decode(data)
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", format, err)
		}
		b := img.Bounds()
		if b.Empty() {
			return nil, errors.New("decoded image is empty")
		}
		// NRGBA with a zero origin keeps per-frame scaling on the fast path.
		return &Image{Pixels: imaging.Clone(img), Width: b.Dx(), Height: b.Dy(), Format: format}, nil
	}
	return nil, ErrUnsupported
}

// ImageLoadError reports that no acquisition path produced a usable image.
// It is recoverable: callers render without the image.
type ImageLoadError struct {
	URL    string
	Proxy  error
	Direct error
}

func (e *ImageLoadError) Error() string {
	var parts []string
	if e.Proxy != nil {
		parts = append(parts, "proxy: "+e.Proxy.Error())
	}
	if e.Direct != nil {
		parts = append(parts, "direct: "+e.Direct.Error())
	}
	return fmt.Sprintf("image load %q failed (%s)", e.URL, strings.Join(parts, "; "))
}

func (e *ImageLoadError) Unwrap() []error {
	var errs []error
	if e.Proxy != nil {
		errs = append(errs, e.Proxy)
	}
	if e.Direct != nil {
		errs = append(errs, e.Direct)
	}
	return errs
}
