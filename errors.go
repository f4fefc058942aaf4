package iconic

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImage is returned when an export is requested without a source image.
	ErrNoImage = errors.New("no source image provided")

	// ErrBusy is returned when an export is requested while another one is in flight.
	ErrBusy = errors.New("an export is already in progress")

	// ErrInvalidOverlay is wrapped by every text overlay validation error.
	ErrInvalidOverlay = errors.New("invalid text overlay")
)

// DecodeError reports that the source image could not be retrieved or decoded.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("could not decode the source image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RasterizationError reports a failure while drawing the icon at a given size.
type RasterizationError struct {
	Size int
	Err  error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("could not rasterize the icon at %dx%d: %v", e.Size, e.Size, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// EncodeError reports a failure while converting a bitmap into its binary format.
type EncodeError struct {
	Name string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("could not encode %s: %v", e.Name, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// PackagingError reports a failure while assembling or delivering the archive.
type PackagingError struct {
	Err error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("could not package the icon pack: %v", e.Err)
}

func (e *PackagingError) Unwrap() error { return e.Err }

// IsSourceError reports whether the error originates from the image source,
// either a missing image or a failed download, generation or decode.
func IsSourceError(err error) bool {
	var de *DecodeError
	return errors.Is(err, ErrNoImage) || errors.As(err, &de)
}
