package iconic

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRenderer delegates to the rasterizer, optionally delaying or failing
// the render of a given size.
type stubRenderer struct {
	delay    map[int]time.Duration
	failSize int
	calls    atomic.Int32
}

func (s *stubRenderer) Render(ctx context.Context, src *image.NRGBA, size int, overlay *TextOverlay) (image.Image, error) {
	s.calls.Add(1)
	if d, ok := s.delay[size]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if size == s.failSize {
		return nil, &RasterizationError{Size: size, Err: errors.New("boom")}
	}
	return (&Rasterizer{}).Render(ctx, src, size, overlay)
}

func TestGenerator_SizeName(t *testing.T) {
	assert.Equal(t, "icon-16x16.png", SizeName(16))
	assert.Equal(t, "icon-512x512.png", SizeName(512))
}

func TestGenerator_ShouldKeepCanonicalOrder(t *testing.T) {
	src := uniformImage(100, 100, color.NRGBA{G: 255, A: 255})
	// The smallest sizes complete last.
	r := &stubRenderer{delay: map[int]time.Duration{16: 60 * time.Millisecond, 32: 30 * time.Millisecond}}
	g := &Generator{Renderer: r, Workers: len(Sizes)}

	artifacts, err := g.Generate(context.Background(), src, nil)
	require.NoError(t, err)
	require.Len(t, artifacts, len(Sizes))

	for i, size := range Sizes {
		assert.Equal(t, SizeName(size), artifacts[i].Name)

		img, err := png.Decode(bytes.NewReader(artifacts[i].Data))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
		assert.Equal(t, size, img.Bounds().Dy())
	}
}

func TestGenerator_ShouldFailFast(t *testing.T) {
	src := uniformImage(10, 10, color.White)
	r := &stubRenderer{failSize: 64, delay: map[int]time.Duration{512: 5 * time.Second}}
	g := &Generator{Renderer: r, Workers: len(Sizes)}

	start := time.Now()
	artifacts, err := g.Generate(context.Background(), src, nil)
	assert.Nil(t, artifacts)

	var re *RasterizationError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 64, re.Size)
	assert.Less(t, time.Since(start), 5*time.Second, "the slow render should be cancelled")
}

func TestGenerator_ShouldRespectWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	tasks := make([]task, 20)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (Artifact, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return Artifact{Name: "x"}, nil
		}
	}
	_, err := runAll(context.Background(), 3, tasks)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
