package iconic

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaster_ShouldRenderEverySize(t *testing.T) {
	src := uniformImage(300, 200, color.NRGBA{R: 20, G: 40, B: 60, A: 255})
	r := &Rasterizer{}

	for _, size := range append(Sizes, FaviconSize, AppleTouchSize) {
		img, err := r.Render(context.Background(), src, size, nil)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, size, size), img.Bounds())

		c := color.NRGBAModel.Convert(img.At(size/2, size/2)).(color.NRGBA)
		assert.True(t, compareColors(c, color.NRGBA{R: 20, G: 40, B: 60, A: 255}, 1), "size %d: %v", size, c)
	}
}

func TestRaster_ShouldNotModifySource(t *testing.T) {
	src := uniformImage(64, 64, color.NRGBA{B: 255, A: 255})
	before := append([]uint8(nil), src.Pix...)

	o := NewTextOverlay("X")
	o.Color = "#ffffff"
	_, err := (&Rasterizer{}).Render(context.Background(), src, 64, &o)
	require.NoError(t, err)
	assert.Equal(t, before, src.Pix)
}

func TestRaster_Errors(t *testing.T) {
	r := &Rasterizer{}

	_, err := r.Render(context.Background(), nil, 16, nil)
	assert.ErrorIs(t, err, ErrNoImage)
	var re *RasterizationError
	assert.ErrorAs(t, err, &re)

	_, err = r.Render(context.Background(), uniformImage(4, 4, color.White), 0, nil)
	assert.ErrorAs(t, err, &re)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, uniformImage(4, 4, color.White), 16, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRaster_OverlayColor(t *testing.T) {
	src := uniformImage(128, 128, color.NRGBA{A: 0})
	o := NewTextOverlay("H")
	o.Color = "#ff0000"
	o.FontSize = MaxFontSize

	img, err := (&Rasterizer{}).Render(context.Background(), src, 256, &o)
	require.NoError(t, err)

	var found bool
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !found; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 255 && c.R == 255 && c.G == 0 && c.B == 0 {
				found = true
				break
			}
		}
	}
	assert.True(t, found, "the overlay text should be drawn in red")
}

func TestRaster_OverlayDisabled(t *testing.T) {
	src := uniformImage(32, 32, color.NRGBA{})
	o := NewTextOverlay("H")
	o.Enabled = false

	img, err := (&Rasterizer{}).Render(context.Background(), src, 64, &o)
	require.NoError(t, err)
	_, _, _, ok := inkBox(img)
	assert.False(t, ok)
}

// The text keeps its normalized position at every icon size.
func TestRaster_OverlayPositionIsProportional(t *testing.T) {
	src := uniformImage(64, 64, color.NRGBA{})
	o := NewTextOverlay("H")
	o.FontSize = 24
	o.Position = Position{X: 0.3, Y: 0.8}

	for _, size := range []int{256, 512} {
		img, err := (&Rasterizer{}).Render(context.Background(), src, size, &o)
		require.NoError(t, err)

		cx, cy, _, ok := inkBox(img)
		require.True(t, ok, "size %d", size)
		assert.InDelta(t, 0.3*float64(size), cx, 1.0, "size %d", size)
		assert.InDelta(t, 0.8*float64(size), cy, 1.0, "size %d", size)
	}
}

// inkBox returns the center and the height of the region covered by
// mostly opaque pixels.
func inkBox(img image.Image) (cx, cy float64, h int, ok bool) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a>>8 > 127 {
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
	}
	if maxX < minX {
		return 0, 0, 0, false
	}
	return float64(minX+maxX+1) / 2, float64(minY+maxY+1) / 2, maxY - minY + 1, true
}
