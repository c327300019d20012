package renderer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type faceKey struct {
	family string
	size   float64
	bold   bool
}

// FontCache resolves a family/weight/size to a font face. Families are
// looked up among the .ttf/.otf files of Dir; anything not found falls back
// to the embedded Go fonts.
type FontCache struct {
	Dir string

	mu      sync.Mutex
	scanned bool
	fonts   map[string]*opentype.Font
	faces   map[faceKey]font.Face

	regular *opentype.Font
	bold    *opentype.Font
}

func NewFontCache(dir string) (*FontCache, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go regular: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go bold: %w", err)
	}
	return &FontCache{
		Dir:     dir,
		fonts:   make(map[string]*opentype.Font),
		faces:   make(map[faceKey]font.Face),
		regular: regular,
		bold:    bold,
	}, nil
}

// Face returns a cached face. Faces are not safe for concurrent use.
func (fc *FontCache) Face(family string, size float64, bold bool) (font.Face, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.scan()

	key := faceKey{family: strings.ToLower(family), size: size, bold: bold}
	if face, ok := fc.faces[key]; ok {
		return face, nil
	}

	face, err := opentype.NewFace(fc.find(key.family, bold), &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %q %.1f: %w", family, size, err)
	}
	fc.faces[key] = face
	return face, nil
}

func (fc *FontCache) find(family string, bold bool) *opentype.Font {
	if bold {
		for _, suffix := range []string{" bold", "bd", "b"} {
			if f, ok := fc.fonts[family+suffix]; ok {
				return f
			}
		}
	}
	if f, ok := fc.fonts[family]; ok {
		return f
	}
	if bold {
		return fc.bold
	}
	return fc.regular
}

func (fc *FontCache) scan() {
	if fc.scanned || fc.Dir == "" {
		fc.scanned = true
		return
	}
	fc.scanned = true

	entries, err := os.ReadDir(fc.Dir)
	if err != nil {
		log.Printf("[!] Font directory %s is not readable: %v", fc.Dir, err)
		return
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(fc.Dir, e.Name()))
		if err != nil {
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			log.Printf("[!] Skipping font %s: %v", e.Name(), err)
			continue
		}
		name := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
		fc.fonts[name] = f
	}
}
