package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

const maxPayload = 50 << 20

// readDirect loads the bytes behind rawURL without the proxy: data URLs are
// decoded inline, file:// URLs and bare paths are read from disk, anything
// else is fetched over HTTP.
func readDirect(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return parseDataURL(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Scheme == "file" || len(u.Scheme) == 1 {
		path := rawURL
		if err == nil && u.Scheme == "file" {
			path = u.Path
		}
		return os.ReadFile(path)
	}

	return fetch(ctx, client, rawURL)
}

func fetch(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPayload))
}

// parseDataURL decodes "data:[<mediatype>][;base64],<payload>".
func parseDataURL(s string) ([]byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some encoders drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		return data, err
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(decoded), nil
}
