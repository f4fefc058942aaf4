package iconic

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// The font families offered by the text editor are mapped onto the embedded Go fonts.
// The Go font family ships no serif face, the serif names fall back to the italic one.
var builtinFonts = map[string][]byte{
	"Arial":           goregular.TTF,
	"Helvetica":       goregular.TTF,
	"Verdana":         goregular.TTF,
	"Times New Roman": goitalic.TTF,
	"Georgia":         goitalic.TTF,
	"Courier New":     gomono.TTF,
	"Impact":          gobold.TTF,
}

type fontRegistry struct {
	mu     sync.RWMutex
	raw    map[string][]byte
	parsed map[string]*opentype.Font
}

var fonts = &fontRegistry{
	raw:    builtinFonts,
	parsed: make(map[string]*opentype.Font),
}

// RegisterFont makes a TrueType or OpenType font available under the given family name.
// A registered font replaces a builtin one with the same name.
func RegisterFont(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("could not parse font %q: %w", family, err)
	}
	fonts.mu.Lock()
	defer fonts.mu.Unlock()

	raw := make(map[string][]byte, len(fonts.raw)+1)
	for k, v := range fonts.raw {
		raw[k] = v
	}
	raw[family] = data
	fonts.raw = raw
	fonts.parsed[family] = f
	return nil
}

// LoadFontDir registers every .ttf and .otf file found in dir.
// The family name is the file name without its extension.
func LoadFontDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read the font directory: %w", err)
	}
	var families []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return families, err
		}
		family := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := RegisterFont(family, data); err != nil {
			return families, err
		}
		families = append(families, family)
	}
	return families, nil
}

// HasFont reports whether the font family is known.
func HasFont(family string) bool {
	fonts.mu.RLock()
	defer fonts.mu.RUnlock()
	_, ok := fonts.raw[family]
	return ok
}

// FontFamilies returns the sorted list of the available font families.
func FontFamilies() []string {
	fonts.mu.RLock()
	defer fonts.mu.RUnlock()
	families := make([]string, 0, len(fonts.raw))
	for k := range fonts.raw {
		families = append(families, k)
	}
	sort.Strings(families)
	return families
}

// lookup returns the parsed font, parsing it on first use.
// Parsed fonts are read only and shared between renders.
func (r *fontRegistry) lookup(family string) (*opentype.Font, error) {
	r.mu.RLock()
	f, ok := r.parsed[family]
	data, known := r.raw[family]
	r.mu.RUnlock()
	if ok {
		return f, nil
	}
	if !known {
		return nil, fmt.Errorf("unknown font family %q", family)
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse font %q: %w", family, err)
	}
	r.mu.Lock()
	r.parsed[family] = f
	r.mu.Unlock()
	return f, nil
}

// newFace creates a face of size px. Faces hold internal buffers, so every
// render gets its own and closes it when done. Glyphs are not snapped to the
// pixel grid, the text has to land on fractional positions at every icon size.
func newFace(family string, size int) (font.Face, error) {
	f, err := fonts.lookup(family)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
