package iconic

import (
	"encoding/base64"
	"image"
)

type svgText struct {
	X, Y       float64
	Color      string
	FontFamily string
	FontSize   int
	Content    string
}

type svgDoc struct {
	Width, Height int
	Data          string
	Text          *svgText
}

// EncodeSVG wraps the bitmap as a base64 PNG data URI into an SVG document sized
// to the bitmap. An active overlay becomes a sibling text node placed with the same
// normalized-to-absolute conversion the rasterizer uses, so both renditions match.
func EncodeSVG(img image.Image, overlay *TextOverlay) ([]byte, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	doc := svgDoc{
		Width:  b.Dx(),
		Height: b.Dy(),
		Data:   base64.StdEncoding.EncodeToString(data),
	}
	if overlay.Active() {
		x, y := overlay.Position.Abs(b.Dx(), b.Dy())
		doc.Text = &svgText{
			X:          x,
			Y:          y,
			Color:      overlay.Color,
			FontFamily: overlay.FontFamily,
			FontSize:   overlay.FontSize,
			Content:    overlay.Text,
		}
	}
	return execTemplate("icon.svg.tmpl", doc)
}
