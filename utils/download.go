package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// MaxDownloadSize caps the number of bytes read from a remote image.
const MaxDownloadSize = 32 << 20

// ErrTooLarge is returned when an image source holds more than MaxDownloadSize bytes.
var ErrTooLarge = errors.New("image too large")

// ReadLimited reads r to the end and fails with ErrTooLarge when it holds
// more than limit bytes.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: the source exceeds %s", ErrTooLarge, FormatBytes(int(limit)))
	}
	return data, nil
}

// StatusError is returned when a remote server answers with a non 2xx status code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unable to download image file from URI: %s, status %d %s",
		e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// DownloadImage retrieves the image found at uri and returns its raw content.
// The response must sniff as an image type.
func DownloadImage(ctx context.Context, client *http.Client, uri string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request for %s: %w", uri, err)
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI: %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{URL: uri, StatusCode: res.StatusCode}
	}

	data, err := ReadLimited(res.Body, MaxDownloadSize)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	if !IsImage(data) {
		return nil, fmt.Errorf("the downloaded file is not a valid image type: %s", DetectContentType(data))
	}
	return data, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}

// DetectContentType detects the MIME type of the provided data.
// Only the first 512 bytes are used to sniff the content type.
func DetectContentType(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

// IsImage reports whether data looks like an image. SVG documents are sniffed
// as text or XML by the standard detector, so they are checked separately.
func IsImage(data []byte) bool {
	ctype := DetectContentType(data)
	if strings.Contains(ctype, "image") {
		return true
	}
	return IsSVG(data)
}

// IsSVG reports whether data starts like an SVG document: either the root
// element itself, or an XML prolog, doctype or comment followed by it.
// Binary formats embedding "<svg" in their metadata are not matched.
func IsSVG(data []byte) bool {
	if len(data) > 1024 {
		data = data[:1024]
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	head := strings.ToLower(strings.TrimSpace(string(data)))
	switch {
	case strings.HasPrefix(head, "<svg"):
		return true
	case strings.HasPrefix(head, "<?xml"), strings.HasPrefix(head, "<!doctype"), strings.HasPrefix(head, "<!--"):
		return strings.Contains(head, "<svg")
	}
	return false
}
