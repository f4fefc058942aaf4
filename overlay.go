package iconic

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
)

// Text overlay limits.
const (
	MaxOverlayText  = 20
	MinFontSize     = 12
	MaxFontSize     = 72
	DefaultFontSize = 48
	DefaultFont     = "Arial"
)

// Position is a resolution independent point, both coordinates in [0, 1].
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Abs converts the normalized position into absolute coordinates of a w×h surface.
func (p Position) Abs(w, h int) (float64, float64) {
	return p.X * float64(w), p.Y * float64(h)
}

// TextOverlay describes the optional text drawn on top of the icon.
// It is a value object: the pipeline only reads it.
type TextOverlay struct {
	Text       string   `json:"text" yaml:"text"`
	Color      string   `json:"color" yaml:"color"`
	FontSize   int      `json:"fontSize" yaml:"font_size"`
	FontFamily string   `json:"fontFamily" yaml:"font_family"`
	Position   Position `json:"position" yaml:"position"`
	Enabled    bool     `json:"enabled" yaml:"enabled"`
}

// NewTextOverlay returns an enabled overlay with the default styling,
// centered on the icon.
func NewTextOverlay(text string) TextOverlay {
	return TextOverlay{
		Text:       text,
		Color:      "#000000",
		FontSize:   DefaultFontSize,
		FontFamily: DefaultFont,
		Position:   Position{X: 0.5, Y: 0.5},
		Enabled:    true,
	}
}

// Active reports whether the overlay has to be drawn.
func (o *TextOverlay) Active() bool {
	return o != nil && o.Enabled && len(strings.TrimSpace(o.Text)) > 0
}

// Validate checks the overlay constraints. A disabled overlay is always valid.
func (o *TextOverlay) Validate() error {
	if o == nil || !o.Enabled {
		return nil
	}
	if n := utf8.RuneCountInString(o.Text); n > MaxOverlayText {
		return fmt.Errorf("%w: text is %d characters long, at most %d allowed", ErrInvalidOverlay, n, MaxOverlayText)
	}
	if _, err := ParseHexColor(o.Color); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOverlay, err)
	}
	if o.FontSize < MinFontSize || o.FontSize > MaxFontSize {
		return fmt.Errorf("%w: font size %d out of range [%d, %d]", ErrInvalidOverlay, o.FontSize, MinFontSize, MaxFontSize)
	}
	if !HasFont(o.FontFamily) {
		return fmt.Errorf("%w: unknown font family %q", ErrInvalidOverlay, o.FontFamily)
	}
	if !inUnit(o.Position.X) || !inUnit(o.Position.Y) {
		return fmt.Errorf("%w: position (%g, %g) outside of [0, 1]", ErrInvalidOverlay, o.Position.X, o.Position.Y)
	}
	return nil
}

// RGBA returns the overlay fill color.
func (o *TextOverlay) RGBA() color.NRGBA {
	c, err := ParseHexColor(o.Color)
	if err != nil {
		return color.NRGBA{A: 0xff}
	}
	return c
}

// ParseHexColor converts a "#rgb" or "#rrggbb" string into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
