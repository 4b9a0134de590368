package renderer

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Only the Go fonts are bundled. Families are mapped onto them by kind:
// anything mentioning "mono" gets Go Mono, "bold"/"medium" gets Go Medium,
// everything else Go Regular.
func fontData(family string) (string, []byte) {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"):
		return "gomono", gomono.TTF
	case strings.Contains(f, "bold"), strings.Contains(f, "medium"):
		return "gomedium", gomedium.TTF
	default:
		return "goregular", goregular.TTF
	}
}

type faceKey struct {
	name string
	size float64
}

type fontCache struct {
	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

func newFontCache() *fontCache {
	return &fontCache{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
	}
}

func (c *fontCache) face(family string, size float64) (font.Face, error) {
	name, data := fontData(family)
	key := faceKey{name: name, size: size}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.faces[key]; ok {
		return f, nil
	}

	parsed, ok := c.fonts[name]
	if !ok {
		var err error
		parsed, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font %s: %w", name, err)
		}
		c.fonts[name] = parsed
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %s@%.1f: %w", name, size, err)
	}
	c.faces[key] = face
	return face, nil
}

func (c *fontCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, f := range c.faces {
		f.Close()
		delete(c.faces, k)
	}
}
