package iconic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Renderer draws the icon at a square pixel size.
// Implementations must be safe for concurrent use: the pipeline renders every size
// in its own goroutine, all of them sharing the same read-only source.
type Renderer interface {
	Render(ctx context.Context, src *image.NRGBA, size int, overlay *TextOverlay) (image.Image, error)
}

// Rasterizer is the default Renderer. It stretches the source over the whole
// size×size surface and draws the text overlay on top of it.
// Each call allocates its own drawing surface, nothing is shared between calls.
type Rasterizer struct{}

var _ Renderer = (*Rasterizer)(nil)

// Render implements the Renderer interface.
func (r *Rasterizer) Render(ctx context.Context, src *image.NRGBA, size int, overlay *TextOverlay) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == nil || src.Bounds().Empty() {
		return nil, &RasterizationError{Size: size, Err: ErrNoImage}
	}
	if size <= 0 {
		return nil, &RasterizationError{Size: size, Err: errors.New("invalid size")}
	}

	surface := image.NewRGBA(image.Rect(0, 0, size, size))
	resized := imaging.Resize(src, size, size, imaging.Lanczos)
	draw.Draw(surface, surface.Bounds(), resized, image.Point{}, draw.Src)

	dc := gg.NewContextForRGBA(surface)

	if overlay.Active() {
		if err := drawText(dc, overlay, size); err != nil {
			return nil, &RasterizationError{Size: size, Err: err}
		}
	}
	return dc.Image(), nil
}

// Rasterize renders the icon at the given size and encodes it as PNG.
func Rasterize(ctx context.Context, r Renderer, src *image.NRGBA, size int, overlay *TextOverlay) ([]byte, error) {
	img, err := r.Render(ctx, src, size, overlay)
	if err != nil {
		return nil, err
	}
	data, err := encodePNG(img)
	if err != nil {
		return nil, &EncodeError{Name: SizeName(size), Err: err}
	}
	return data, nil
}

// drawText draws the overlay text centered on its ink box at the normalized position.
// The font size is kept as is at every icon size, large text on small icons overflows.
func drawText(dc *gg.Context, overlay *TextOverlay, size int) error {
	face, err := newFace(overlay.FontFamily, overlay.FontSize)
	if err != nil {
		return fmt.Errorf("could not create the font face: %w", err)
	}
	defer face.Close()

	dc.SetFontFace(face)
	dc.SetColor(overlay.RGBA())

	x, y := overlay.Position.Abs(size, size)
	bounds, _ := font.BoundString(face, overlay.Text)
	cx := float64(bounds.Min.X+bounds.Max.X) / 2 / 64
	cy := float64(bounds.Min.Y+bounds.Max.Y) / 2 / 64

	dc.DrawString(overlay.Text, x-cx, y-cy)
	return nil
}
