package iconic

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"sync"

	"github.com/esimov/iconic/utils"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// svgRenderSize is the length of the longest edge of a rasterized SVG source.
const svgRenderSize = 1024

// MaxSourcePixels caps the pixel count a source image header may declare.
// The bitmap is allocated by the decoder before the pixel data is read.
const MaxSourcePixels = 8192 * 8192

// pngEncoder is shared by all renders, its buffer pool makes repeated encodes cheaper.
var pngEncoder = &png.Encoder{
	CompressionLevel: png.DefaultCompression,
	BufferPool:       &bufferPool{},
}

// decodeImg decodes the raw source data into an *image.NRGBA with min-point at (0, 0).
// Besides the formats registered in the image package, SVG documents are rasterized.
func decodeImg(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	if utils.IsSVG(data) {
		return decodeSVG(data)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxSourcePixels {
		return nil, fmt.Errorf("image of %dx%d exceeds the limit of %d pixels", cfg.Width, cfg.Height, MaxSourcePixels)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return imgToNRGBA(src), nil
}

// decodeSVG rasterizes an SVG document at its view box aspect ratio.
func decodeSVG(data []byte) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not parse the svg document: %w", err)
	}
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = svgRenderSize, svgRenderSize
	}
	scale := svgRenderSize / math.Max(w, h)
	outW := int(math.Round(w * scale))
	outH := int(math.Round(h * scale))
	if outW < 1 || outH < 1 {
		return nil, fmt.Errorf("invalid svg view box %gx%g", w, h)
	}
	icon.SetTarget(0, 0, float64(outW), float64(outH))

	rgba := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(outW, outH, scanner)
	icon.Draw(raster, 1.0)

	return imgToNRGBA(rgba), nil
}

// encodePNG encodes an image into PNG bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	dstBounds := srcBounds.Sub(srcBounds.Min)
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.YCbCr:
		for dstY := 0; dstY < dstBounds.Dy(); dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstBounds.Dx(); dstX++ {
				srcX := srcBounds.Min.X + dstX
				srcY := srcBounds.Min.Y + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		draw.Draw(dst, dstBounds, img, srcBounds.Min, draw.Src)
	}
	return dst
}

// bufferPool implements png.EncoderBufferPool on top of sync.Pool.
type bufferPool struct {
	pool sync.Pool
}

func (p *bufferPool) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *bufferPool) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}
