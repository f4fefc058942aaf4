package iconic

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/esimov/iconic/imop"
	"github.com/esimov/iconic/utils"
)

// Canvas describes how a decoded source is placed before it gets rasterized.
// The zero value keeps the source untouched.
type Canvas struct {
	// Background is a hex color the source is flattened over. Empty keeps the transparency.
	Background string `json:"background" yaml:"background"`
	// FitSquare centers a non-square source on a square canvas instead of stretching it.
	FitSquare bool `json:"fitSquare" yaml:"fit_square"`
	// Scale is the share of the square canvas the fitted source occupies, in (0, 1].
	Scale float64 `json:"scale" yaml:"scale"`
	// Blend is the Porter-Duff operator composing the source with the background.
	// Empty means source over background.
	Blend imop.Op `json:"blend" yaml:"blend"`
}

// Validate checks the canvas options.
func (c Canvas) Validate() error {
	if len(c.Background) > 0 {
		if _, err := ParseHexColor(c.Background); err != nil {
			return fmt.Errorf("invalid canvas background: %w", err)
		}
	}
	if c.Scale < 0 || c.Scale > 1 {
		return fmt.Errorf("invalid canvas scale %g, expected a value in (0, 1]", c.Scale)
	}
	if c.FitSquare && c.Scale == 0 {
		return fmt.Errorf("invalid canvas scale 0, expected a value in (0, 1]")
	}
	if len(c.Blend) > 0 && !c.Blend.Valid() {
		return fmt.Errorf("invalid canvas blend %q, expected one of %v", c.Blend, imop.Ops)
	}
	return nil
}

// prepare applies the canvas placement to the source. It always returns a new
// image when a change is needed, the source itself is never modified.
func (c Canvas) prepare(src *image.NRGBA) (*image.NRGBA, error) {
	img := src
	if c.FitSquare {
		img = fitSquare(img, c.Scale)
	}
	if len(c.Background) > 0 {
		bg, err := ParseHexColor(c.Background)
		if err != nil {
			return nil, err
		}
		if img, err = imop.Flatten(img, bg, c.blend()); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (c Canvas) blend() imop.Op {
	if len(c.Blend) == 0 {
		return imop.SrcOver
	}
	return c.Blend
}

// fitSquare centers the image, scaled to fit, on a transparent square canvas
// whose edge is the longest edge of the source.
func fitSquare(src *image.NRGBA, scale float64) *image.NRGBA {
	if scale <= 0 || scale > 1 {
		scale = 1
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	side := utils.Max(w, h)
	if w == h && scale == 1 {
		return src
	}

	fw := utils.Max(1, int(math.Round(float64(side)*scale)))
	fitted := imaging.Fit(src, fw, fw, imaging.Lanczos)

	dst := image.NewNRGBA(image.Rect(0, 0, side, side))
	fb := fitted.Bounds()
	offset := image.Pt((side-fb.Dx())/2, (side-fb.Dy())/2)
	draw.Draw(dst, fb.Add(offset), fitted, fb.Min, draw.Src)
	return dst
}
