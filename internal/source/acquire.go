// Package source resolves image URLs into decoded pixels. Every URL is first
// requested through a same-origin proxy; when that fails or returns no usable
// payload the URL is loaded directly.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultMinBytes is the size below which a payload is treated as a
// placeholder rather than an image.
const DefaultMinBytes = 100

var ErrTooSmall = errors.New("payload below minimum image size")

type Acquirer struct {
	// ProxyURL is the proxy endpoint; the source URL is passed as ?url=.
	// Empty disables the proxy path.
	ProxyURL string
	Client   *http.Client
	MinBytes int
	Decoders []Decoder
	Logger   *log.Logger
}

// NewAcquirer returns an Acquirer with the default decoder chain.
func NewAcquirer(proxyURL string, timeout time.Duration, minBytes, pdfDPI int) *Acquirer {
	if minBytes <= 0 {
		minBytes = DefaultMinBytes
	}
	return &Acquirer{
		ProxyURL: proxyURL,
		Client:   &http.Client{Timeout: timeout},
		MinBytes: minBytes,
		Decoders: DefaultDecoders(pdfDPI),
	}
}

func (a *Acquirer) logger() *log.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return log.Default()
}

func (a *Acquirer) client() *http.Client {
	if a.Client != nil {
		return a.Client
	}
	return http.DefaultClient
}

// Acquire resolves rawURL into a decoded image. When neither the proxy nor
// the direct path succeeds it returns an *ImageLoadError.
func (a *Acquirer) Acquire(ctx context.Context, rawURL string) (*Image, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &ImageLoadError{URL: rawURL, Direct: errors.New("empty URL")}
	}
	loadErr := &ImageLoadError{URL: rawURL}

	if a.ProxyURL != "" && !strings.HasPrefix(rawURL, "data:") {
		img, err := a.viaProxy(ctx, rawURL)
		if err == nil {
			img.Origin = "proxy"
			return img, nil
		}
		loadErr.Proxy = err
		a.logger().Printf("[!] Proxy failed for %s, trying direct: %v", rawURL, err)
	}

	if err := ctx.Err(); err != nil {
		loadErr.Direct = err
		return nil, loadErr
	}

	img, err := a.direct(ctx, rawURL)
	if err == nil {
		img.Origin = "direct"
		return img, nil
	}
	loadErr.Direct = err
	return nil, loadErr
}

func (a *Acquirer) viaProxy(ctx context.Context, rawURL string) (*Image, error) {
	endpoint := a.ProxyURL
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	body, err := fetch(ctx, a.client(), endpoint+sep+"url="+url.QueryEscape(rawURL))
	if err != nil {
		return nil, err
	}
	payload, err := unwrapProxyPayload(body)
	if err != nil {
		return nil, err
	}
	return a.decode(payload)
}

func (a *Acquirer) direct(ctx context.Context, rawURL string) (*Image, error) {
	data, err := readDirect(ctx, a.client(), rawURL)
	if err != nil {
		return nil, err
	}
	return a.decode(data)
}

func (a *Acquirer) decode(data []byte) (*Image, error) {
	minBytes := a.MinBytes
	if minBytes <= 0 {
		minBytes = DefaultMinBytes
	}
	if len(data) < minBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooSmall, len(data))
	}
	decoders := a.Decoders
	if len(decoders) == 0 {
		decoders = DefaultDecoders(0)
	}
	return decode(decoders, data)
}

// proxyDocument is the JSON shape a proxy may answer with instead of raw bytes.
type proxyDocument struct {
	DataURL    string `json:"dataUrl"`
	DataURLAlt string `json:"data_url"`
	Image      string `json:"image"`
	Error      string `json:"error"`
}

// unwrapProxyPayload accepts raw image bytes, a bare data URL or a JSON
// document wrapping a data URL.
func unwrapProxyPayload(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	switch {
	case bytes.HasPrefix(trimmed, []byte("data:")):
		return parseDataURL(string(trimmed))
	case bytes.HasPrefix(trimmed, []byte("{")):
		var doc proxyDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("proxy document: %w", err)
		}
		if doc.Error != "" {
			return nil, fmt.Errorf("proxy: %s", doc.Error)
		}
		for _, s := range []string{doc.DataURL, doc.DataURLAlt, doc.Image} {
			if strings.HasPrefix(s, "data:") {
				return parseDataURL(s)
			}
		}
		return nil, errors.New("proxy document has no data URL")
	}
	return body, nil
}
