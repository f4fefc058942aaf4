package iconic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/esimov/iconic/utils"
)

// Source produces the raw bitmap an icon pack is exported from.
type Source interface {
	// Load retrieves and decodes the image.
	Load(ctx context.Context) (*image.NRGBA, error)
	// String names the source in errors and log lines.
	String() string
}

// ImageGenerator turns a text prompt into image bytes, e.g. a remote text-to-image service.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// NewSource returns the source matching the location: an http(s) URL, the pipe
// name "-" for stdin, or a local file path.
func NewSource(location string) Source {
	switch {
	case utils.IsValidUrl(location):
		return &URLSource{URL: location}
	case location == PipeName:
		return &ReaderSource{Reader: os.Stdin, Name: "stdin"}
	default:
		return &FileSource{Path: location}
	}
}

// FileSource loads the image from the local file system.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(ctx context.Context) (*image.NRGBA, error) {
	if len(strings.TrimSpace(s.Path)) == 0 {
		return nil, ErrNoImage
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &DecodeError{Source: s.String(), Err: err}
	}
	defer f.Close()

	data, err := utils.ReadLimited(f, utils.MaxDownloadSize)
	if err != nil {
		return nil, &DecodeError{Source: s.String(), Err: err}
	}
	return decode(s, data)
}

func (s *FileSource) String() string { return s.Path }

// URLSource downloads the image from a remote location.
type URLSource struct {
	URL    string
	Client *http.Client
}

func (s *URLSource) Load(ctx context.Context) (*image.NRGBA, error) {
	if len(strings.TrimSpace(s.URL)) == 0 {
		return nil, ErrNoImage
	}
	data, err := utils.DownloadImage(ctx, s.Client, s.URL)
	if err != nil {
		return nil, &DecodeError{Source: s.String(), Err: err}
	}
	return decode(s, data)
}

func (s *URLSource) String() string { return s.URL }

// ReaderSource reads the encoded image from an io.Reader, e.g. stdin or an upload.
type ReaderSource struct {
	Reader io.Reader
	Name   string
}

func (s *ReaderSource) Load(ctx context.Context) (*image.NRGBA, error) {
	if s.Reader == nil {
		return nil, ErrNoImage
	}
	data, err := utils.ReadLimited(s.Reader, utils.MaxDownloadSize)
	if err != nil {
		return nil, &DecodeError{Source: s.String(), Err: err}
	}
	return decode(s, data)
}

func (s *ReaderSource) String() string {
	if s.Name == "" {
		return "reader"
	}
	return s.Name
}

// ImageSource wraps an already decoded bitmap, e.g. the content of a drawing surface.
type ImageSource struct {
	Image image.Image
}

func (s *ImageSource) Load(ctx context.Context) (*image.NRGBA, error) {
	if s.Image == nil || s.Image.Bounds().Empty() {
		return nil, ErrNoImage
	}
	return imgToNRGBA(s.Image), nil
}

func (s *ImageSource) String() string { return "bitmap" }

// PromptSource asks an image generator for a picture matching the prompt.
type PromptSource struct {
	Generator ImageGenerator
	Prompt    string
}

func (s *PromptSource) Load(ctx context.Context) (*image.NRGBA, error) {
	if s.Generator == nil {
		return nil, &DecodeError{Source: s.String(), Err: errors.New("no image generator configured")}
	}
	if len(strings.TrimSpace(s.Prompt)) == 0 {
		return nil, ErrNoImage
	}
	data, err := s.Generator.Generate(ctx, s.Prompt)
	if err != nil {
		return nil, &DecodeError{Source: s.String(), Err: err}
	}
	return decode(s, data)
}

func (s *PromptSource) String() string {
	return fmt.Sprintf("prompt %q", s.Prompt)
}

func decode(s Source, data []byte) (*image.NRGBA, error) {
	img, err := decodeImg(data)
	if err != nil {
		if errors.Is(err, ErrNoImage) {
			return nil, err
		}
		return nil, &DecodeError{Source: s.String(), Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &DecodeError{Source: s.String(), Err: errors.New("empty image")}
	}
	return img, nil
}
