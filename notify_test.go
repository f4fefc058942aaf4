package iconic

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotify_Kinds(t *testing.T) {
	n := newNotification(nil)
	assert.Equal(t, Success, n.Kind)
	assert.Equal(t, "Download complete", n.Title)
	assert.Equal(t, "Icon pack downloaded successfully!", n.Description)
	assert.NoError(t, n.Err)

	n = newNotification(&DecodeError{Source: "x", Err: errors.New("bad")})
	assert.Equal(t, GenerationFailed, n.Kind)
	assert.Equal(t, "Generation failed", n.Title)

	n = newNotification(ErrNoImage)
	assert.Equal(t, GenerationFailed, n.Kind)

	n = newNotification(&PackagingError{Err: errors.New("disk full")})
	assert.Equal(t, DownloadFailed, n.Kind)
	assert.Equal(t, "Download failed", n.Title)
	assert.Error(t, n.Err)
}

func TestNotify_LogNotifier(t *testing.T) {
	var buf bytes.Buffer
	ln := NewLogNotifier(&buf)

	ln.Notify(newNotification(nil))
	assert.Contains(t, buf.String(), "Download complete")

	buf.Reset()
	ln.Notify(newNotification(&EncodeError{Name: FaviconName, Err: errors.New("oops")}))
	assert.Contains(t, buf.String(), "Download failed")
	assert.Contains(t, buf.String(), "oops")
}
