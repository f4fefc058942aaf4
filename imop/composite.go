// Package imop implements the Porter-Duff composition operators used for
// mixing a graphic element with its backdrop.
// The image/draw core package implements only source-over-destination and source,
// this package provides the remaining operators on non-premultiplied NRGBA images.
//
// It is used to compose the icon sources with a solid background before they
// get rasterized.
package imop

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/esimov/iconic/utils"
)

// Op is a Porter-Duff composition operator.
type Op string

const (
	Clear   Op = "clear"
	Copy    Op = "copy"
	Dst     Op = "dst"
	SrcOver Op = "src_over"
	DstOver Op = "dst_over"
	SrcIn   Op = "src_in"
	DstIn   Op = "dst_in"
	SrcOut  Op = "src_out"
	DstOut  Op = "dst_out"
	SrcAtop Op = "src_atop"
	DstAtop Op = "dst_atop"
	Xor     Op = "xor"
)

// Ops lists every supported operator.
var Ops = []Op{Clear, Copy, Dst, SrcOver, DstOver, SrcIn, DstIn, SrcOut, DstOut, SrcAtop, DstAtop, Xor}

// Valid reports whether op is a supported operator.
func (op Op) Valid() bool {
	return utils.Contains(Ops, op)
}

// factors returns the fraction of the source (fa) and of the backdrop (fb)
// contributing to the result, given the source and backdrop alpha.
func (op Op) factors(as, ab float64) (fa, fb float64) {
	switch op {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case SrcOver:
		return 1, 1 - as
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	return 0, 0
}

// Mix composes a single source color over a backdrop color.
func (op Op) Mix(src, dst color.NRGBA) color.NRGBA {
	as := float64(src.A) / 255
	ab := float64(dst.A) / 255
	fa, fb := op.factors(as, ab)

	ao := as*fa + ab*fb
	if ao <= 0 {
		return color.NRGBA{}
	}
	channel := func(cs, cb uint8) uint8 {
		co := (float64(cs)/255*as*fa + float64(cb)/255*ab*fb) / ao
		return uint8(math.Round(utils.Clamp(co, 0, 1) * 255))
	}
	return color.NRGBA{
		R: channel(src.R, dst.R),
		G: channel(src.G, dst.G),
		B: channel(src.B, dst.B),
		A: uint8(math.Round(utils.Clamp(ao, 0, 1) * 255)),
	}
}

// Composite composes src over dst using the operator and returns a new image.
// Both images must have the same size; their min-points may differ.
func Composite(op Op, src, dst image.Image) (*image.NRGBA, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("unsupported composite operation: %q", op)
	}
	sb, db := src.Bounds(), dst.Bounds()
	if sb.Dx() != db.Dx() || sb.Dy() != db.Dy() {
		return nil, fmt.Errorf("size mismatch: source %dx%d, backdrop %dx%d", sb.Dx(), sb.Dy(), db.Dx(), db.Dy())
	}
	s, d := toNRGBA(src), toNRGBA(dst)
	out := image.NewNRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))

	for y := 0; y < sb.Dy(); y++ {
		for x := 0; x < sb.Dx(); x++ {
			out.SetNRGBA(x, y, op.Mix(s.NRGBAAt(x, y), d.NRGBAAt(x, y)))
		}
	}
	return out, nil
}

// Flatten composes the image with a solid background color using the operator.
func Flatten(img image.Image, bg color.Color, op Op) (*image.NRGBA, error) {
	b := img.Bounds()
	backdrop := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(backdrop, backdrop.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	return Composite(op, img, backdrop)
}

// toNRGBA returns the image as *image.NRGBA with min-point at (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
