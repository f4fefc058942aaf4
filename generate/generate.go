// Package generate implements the client of the remote text-to-image service
// used to produce a source image out of a text prompt.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/esimov/iconic/utils"
)

// DefaultEndpoint is the text-to-image service queried when none is configured.
const DefaultEndpoint = "https://text-to-image.jessejesse.workers.dev"

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 60 * time.Second

// ErrEmptyPrompt is returned when the prompt holds no text.
var ErrEmptyPrompt = errors.New("empty prompt")

type request struct {
	Prompt string `json:"prompt"`
}

// Client posts prompts to the text-to-image endpoint and returns the image body.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

// New returns a client for the endpoint. An empty endpoint selects DefaultEndpoint
// and a non positive timeout selects DefaultTimeout.
func New(endpoint string, timeout time.Duration) *Client {
	if len(endpoint) == 0 {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Generate sends the prompt as a JSON document and returns the raw image bytes.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	prompt = strings.TrimSpace(prompt)
	if len(prompt) == 0 {
		return nil, ErrEmptyPrompt
	}
	body, err := json.Marshal(request{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to create the generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4<<10))
		return nil, &utils.StatusError{URL: c.endpoint(), StatusCode: res.StatusCode}
	}

	data, err := utils.ReadLimited(res.Body, utils.MaxDownloadSize)
	if err != nil {
		return nil, fmt.Errorf("unable to read the generated image: %w", err)
	}
	if !utils.IsImage(data) {
		return nil, fmt.Errorf("the generated content is not a valid image type: %s", utils.DetectContentType(data))
	}
	return data, nil
}

func (c *Client) endpoint() string {
	if len(c.Endpoint) == 0 {
		return DefaultEndpoint
	}
	return c.Endpoint
}

func (c *Client) client() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}
