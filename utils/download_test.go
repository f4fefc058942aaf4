package utils

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestUtils_ShouldDownloadImage(t *testing.T) {
	data := samplePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	got, err := DownloadImage(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestUtils_ShouldFailOnMissingImage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := DownloadImage(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestUtils_ShouldRejectNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello world"))
	}))
	defer srv.Close()

	_, err := DownloadImage(context.Background(), srv.Client(), srv.URL)
	assert.Error(t, err)
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	assert.True(t, IsValidUrl("https://github.com/esimov/iconic/"))
	assert.False(t, IsValidUrl("testdata/sample.png"))
	assert.False(t, IsValidUrl("-"))
}

func TestUtils_ShouldDetectImageTypes(t *testing.T) {
	assert.True(t, IsImage(samplePNG(t)))
	assert.True(t, IsImage([]byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`)))
	assert.False(t, IsImage([]byte("plain text")))
}

func TestUtils_IsSVG(t *testing.T) {
	assert.True(t, IsSVG([]byte(`  <svg xmlns="http://www.w3.org/2000/svg"/>`)))
	assert.True(t, IsSVG([]byte("\xef\xbb\xbf<?xml version=\"1.0\"?>\n<svg/>")))
	assert.True(t, IsSVG([]byte("<!-- logo -->\n<SVG/>")))
	assert.False(t, IsSVG([]byte("\x89PNG\r\n\x1a\n tEXt <svg/>")))
	assert.False(t, IsSVG([]byte("<?xml version=\"1.0\"?><html/>")))
}

func TestUtils_ShouldRejectOversizedInput(t *testing.T) {
	data, err := ReadLimited(bytes.NewReader(make([]byte, 10)), 10)
	require.NoError(t, err)
	assert.Len(t, data, 10)

	_, err = ReadLimited(bytes.NewReader(make([]byte, 11)), 10)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "exceeds 10 B")
}
