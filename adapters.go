package iconic

import (
	"bytes"
	"context"
	"image"

	ico "github.com/sergeymakinen/go-ico"
)

// Special purpose artifacts.
const (
	FaviconName    = "favicon.ico"
	FaviconSize    = 32
	AppleTouchName = "apple-touch-icon.png"
	AppleTouchSize = 180
	SVGName        = "icon.svg"
	ReadmeName     = "README.txt"
)

// faviconTask renders the 32×32 favicon and stores it in an ICO container.
func faviconTask(r Renderer, src *image.NRGBA, overlay *TextOverlay) task {
	return func(ctx context.Context) (Artifact, error) {
		img, err := r.Render(ctx, src, FaviconSize, overlay)
		if err != nil {
			return Artifact{}, err
		}
		var buf bytes.Buffer
		if err := ico.Encode(&buf, img); err != nil {
			return Artifact{}, &EncodeError{Name: FaviconName, Err: err}
		}
		return Artifact{Name: FaviconName, Data: buf.Bytes()}, nil
	}
}

// appleTouchTask renders the 180×180 icon used on iOS home screens.
func appleTouchTask(r Renderer, src *image.NRGBA, overlay *TextOverlay) task {
	return func(ctx context.Context) (Artifact, error) {
		img, err := r.Render(ctx, src, AppleTouchSize, overlay)
		if err != nil {
			return Artifact{}, err
		}
		data, err := encodePNG(img)
		if err != nil {
			return Artifact{}, &EncodeError{Name: AppleTouchName, Err: err}
		}
		return Artifact{Name: AppleTouchName, Data: data}, nil
	}
}

// svgTask wraps the source bitmap into a standalone SVG document.
func svgTask(src *image.NRGBA, overlay *TextOverlay) task {
	return func(ctx context.Context) (Artifact, error) {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		data, err := EncodeSVG(src, overlay)
		if err != nil {
			return Artifact{}, &EncodeError{Name: SVGName, Err: err}
		}
		return Artifact{Name: SVGName, Data: data}, nil
	}
}
