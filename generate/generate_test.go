package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/esimov/iconic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestGenerate_ShouldPostPrompt(t *testing.T) {
	data := samplePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, map[string]string{"prompt": "a lighthouse at dusk"}, req)

		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	got, err := c.Generate(context.Background(), "  a lighthouse at dusk ")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestGenerate_ShouldReportStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Generate(context.Background(), "fox")
	var se *utils.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}

func TestGenerate_ShouldRejectNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Generate(context.Background(), "fox")
	assert.Error(t, err)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	_, err := New("", 0).Generate(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestGenerate_Defaults(t *testing.T) {
	c := New("", 0)
	assert.Equal(t, DefaultEndpoint, c.Endpoint)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)
}

func TestGenerate_ShouldHonorContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, 5*time.Second).Generate(ctx, "fox")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
