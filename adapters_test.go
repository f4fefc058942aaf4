package iconic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"image/color"
	"image/png"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapters_Favicon(t *testing.T) {
	src := uniformImage(64, 64, color.NRGBA{R: 255, A: 255})
	a, err := faviconTask(&Rasterizer{}, src, nil)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, FaviconName, a.Name)

	// ICONDIR: reserved 0, type 1 (icon), one image.
	require.Greater(t, len(a.Data), 22)
	assert.Equal(t, []byte{0, 0, 1, 0}, a.Data[:4])
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(a.Data[4:6]))
	// ICONDIRENTRY width and height.
	assert.Equal(t, byte(FaviconSize), a.Data[6])
	assert.Equal(t, byte(FaviconSize), a.Data[7])
}

func TestAdapters_AppleTouchIcon(t *testing.T) {
	src := uniformImage(64, 64, color.NRGBA{R: 255, A: 255})
	a, err := appleTouchTask(&Rasterizer{}, src, nil)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AppleTouchName, a.Name)

	img, err := png.Decode(bytes.NewReader(a.Data))
	require.NoError(t, err)
	assert.Equal(t, AppleTouchSize, img.Bounds().Dx())
	assert.Equal(t, AppleTouchSize, img.Bounds().Dy())
}

func TestAdapters_SVG(t *testing.T) {
	src := uniformImage(300, 200, color.NRGBA{B: 255, A: 255})
	o := NewTextOverlay(`A<&>"B`)
	o.Color = "#00ff00"
	o.Position = Position{X: 0.5, Y: 0.25}

	a, err := svgTask(src, &o)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SVGName, a.Name)

	doc := string(a.Data)
	assert.Contains(t, doc, `width="300" height="200" viewBox="0 0 300 200"`)
	assert.Contains(t, doc, `x="150" y="50"`)
	assert.Contains(t, doc, `fill="#00ff00"`)
	assert.Contains(t, doc, `font-family="Arial"`)
	assert.Contains(t, doc, `font-size="48"`)
	assert.Contains(t, doc, `text-anchor="middle"`)
	assert.Contains(t, doc, "A&lt;&amp;&gt;&#34;B")
	assert.NotContains(t, doc, `A<&>"B`)

	// The document is well formed XML.
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
	}

	// The embedded payload is the source bitmap at its natural size.
	m := regexp.MustCompile(`href="data:image/png;base64,([^"]+)"`).FindStringSubmatch(doc)
	require.Len(t, m, 2)
	data, err := base64.StdEncoding.DecodeString(m[1])
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())
}

func TestAdapters_SVGWithoutOverlay(t *testing.T) {
	src := uniformImage(16, 16, color.White)

	data, err := EncodeSVG(src, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<text")

	o := NewTextOverlay("Hi")
	o.Enabled = false
	data, err = EncodeSVG(src, &o)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<text")
}
