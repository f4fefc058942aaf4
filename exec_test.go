package iconic

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/esimov/iconic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec_PackName(t *testing.T) {
	assert.Equal(t, "logo-iconic-pack.zip", PackName("/tmp/assets/logo.png"))
	assert.Equal(t, "brand.mark-iconic-pack.zip", PackName("brand.mark.svg"))
}

func TestExec_ValidExtensions(t *testing.T) {
	for _, ext := range []string{".png", ".JPG", ".jpeg", ".svg", ".webp", ".bmp", ".tiff"} {
		assert.True(t, isValidExtension(ext, validExtensions), ext)
	}
	assert.False(t, isValidExtension(".zip", validExtensions))
	assert.False(t, isValidExtension("", validExtensions))

	assert.True(t, IsSupported("/a/b/logo.PNG"))
	assert.False(t, IsSupported("/a/b/iconic-pack.zip"))
}

func TestExec_ShouldExportSingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(src, encodeTestPNG(t, uniformImage(64, 64, color.White)), 0644))

	dst := filepath.Join(dir, "out.zip")
	var log bytes.Buffer
	require.NoError(t, NewProcessor().Execute(context.Background(), &Ops{Src: src, Dst: dst, Log: &log}))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	names, _ := unzip(t, data)
	assert.Contains(t, names, FaviconName)

	assert.Contains(t, log.String(), dst)
	assert.Contains(t, log.String(), "("+utils.FormatBytes(len(data))+")")
	assert.Contains(t, log.String(), "Execution time")
}

func TestExec_ShouldExportIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(src, encodeTestPNG(t, uniformImage(64, 64, color.White)), 0644))

	require.NoError(t, NewProcessor().Execute(context.Background(), &Ops{Src: src, Dst: dir}))
	_, err := os.Stat(filepath.Join(dir, DefaultArchiveName))
	assert.NoError(t, err)
}

func TestExec_ShouldRejectUnsupportedDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(src, encodeTestPNG(t, uniformImage(8, 8, color.White)), 0644))

	err := NewProcessor().Execute(context.Background(), &Ops{Src: src, Dst: filepath.Join(dir, "out.png")})
	assert.Error(t, err)
}

func TestExec_Batch(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "packs")

	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.png"), encodeTestPNG(t, uniformImage(32, 32, color.White)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "b.png"), encodeTestPNG(t, uniformImage(48, 24, color.Black)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip"), 0644))

	err := NewProcessor().Execute(context.Background(), &Ops{Src: src, Dst: dst, Workers: 2, Log: io.Discard})
	require.NoError(t, err)

	assertOnlyFiles(t, dst, "a-iconic-pack.zip", "b-iconic-pack.zip")
}

func TestExec_BatchReportsFailures(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "good.png"), encodeTestPNG(t, uniformImage(32, 32, color.White)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "broken.png"), []byte("not a png"), 0644))

	err := NewProcessor().Execute(context.Background(), &Ops{Src: src, Dst: dst, Workers: 2, Log: io.Discard})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	assertOnlyFiles(t, dst, "good-iconic-pack.zip")
}
