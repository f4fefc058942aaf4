// Package server exposes the icon pack export over HTTP. The exported pack is
// returned as a zip attachment, ready to be saved by the browser.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/esimov/iconic"
	"github.com/esimov/iconic/utils"
)

// DefaultMaxUpload caps the size of an uploaded source image.
const DefaultMaxUpload = 10 << 20

// Server handles the export requests. Every request runs on its own processor
// cloned from the configured one.
type Server struct {
	Processor *iconic.Processor
	Generator iconic.ImageGenerator
	// Client downloads the remote sources.
	Client    *http.Client
	MaxUpload int64

	mux *http.ServeMux
}

// exportRequest is the JSON form of an export request.
type exportRequest struct {
	URL     string              `json:"url"`
	Prompt  string              `json:"prompt"`
	Overlay *iconic.TextOverlay `json:"overlay"`
}

type errorResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

// New returns a server exporting packs with the options of p.
func New(p *iconic.Processor, g iconic.ImageGenerator) *Server {
	s := &Server{
		Processor: p,
		Generator: g,
		MaxUpload: DefaultMaxUpload,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /api/export", s.handleExport)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves the requests on addr until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", utils.DecorateText(addr, utils.StatusMessage))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleExport accepts either a multipart form with an "image" file, an "url" or
// a "prompt" field and an optional JSON encoded "overlay" field, or the same
// values as a JSON document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload())

	src, overlay, err := s.parseExport(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{
			Title:       "Invalid request",
			Description: "The export request could not be read.",
			Error:       err.Error(),
		})
		return
	}
	defer closeSource(src)

	var note iconic.Notification
	p := s.Processor.Clone()
	if overlay != nil {
		p.Overlay = overlay
	}
	p.Notifier = iconic.NotifierFunc(func(n iconic.Notification) {
		note = n
		if s.Processor.Notifier != nil {
			s.Processor.Notifier.Notify(n)
		}
	})

	att := &attachment{w: w}
	if _, err = p.Export(r.Context(), src, att); err == nil {
		return
	}
	if att.written {
		// The headers are gone, nothing else can be reported.
		log.Printf(utils.DecorateText("unable to send the icon pack: %v", utils.ErrorMessage), err)
		return
	}
	writeError(w, statusOf(err), errorResponse{
		Title:       note.Title,
		Description: note.Description,
		Error:       err.Error(),
	})
}

func (s *Server) parseExport(r *http.Request) (iconic.Source, *iconic.TextOverlay, error) {
	ctype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var req exportRequest
	switch ctype {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, fmt.Errorf("invalid JSON body: %w", err)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(s.maxUpload()); err != nil {
			return nil, nil, fmt.Errorf("invalid form: %w", err)
		}
		if raw := r.FormValue("overlay"); len(raw) > 0 {
			req.Overlay = new(iconic.TextOverlay)
			if err := json.Unmarshal([]byte(raw), req.Overlay); err != nil {
				return nil, nil, fmt.Errorf("invalid overlay: %w", err)
			}
		}
		if file, hdr, err := r.FormFile("image"); err == nil {
			return &iconic.ReaderSource{Reader: file, Name: hdr.Filename}, req.Overlay, nil
		} else if !errors.Is(err, http.ErrMissingFile) {
			return nil, nil, fmt.Errorf("invalid image upload: %w", err)
		}
		req.URL = r.FormValue("url")
		req.Prompt = r.FormValue("prompt")
	default:
		return nil, nil, fmt.Errorf("unsupported content type %q", ctype)
	}

	switch {
	case len(strings.TrimSpace(req.URL)) > 0:
		if !utils.IsValidUrl(req.URL) {
			return nil, nil, fmt.Errorf("invalid url %q", req.URL)
		}
		return &iconic.URLSource{URL: req.URL, Client: s.Client}, req.Overlay, nil
	case len(strings.TrimSpace(req.Prompt)) > 0:
		return &iconic.PromptSource{Generator: s.Generator, Prompt: req.Prompt}, req.Overlay, nil
	}
	// Let the pipeline report the missing image.
	return nil, req.Overlay, nil
}

// closeSource releases the uploaded file backing a reader source.
func closeSource(src iconic.Source) {
	rs, ok := src.(*iconic.ReaderSource)
	if !ok {
		return
	}
	if c, ok := rs.Reader.(io.Closer); ok {
		c.Close()
	}
}

// handleGenerate returns the image generated out of the prompt.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(strings.TrimSpace(req.Prompt)) == 0 {
		writeError(w, http.StatusBadRequest, errorResponse{
			Title:       "Invalid request",
			Description: "Please enter a prompt.",
			Error:       "missing prompt",
		})
		return
	}
	if s.Generator == nil {
		writeError(w, http.StatusServiceUnavailable, errorResponse{
			Title:       "Generation failed",
			Description: "No image generator is configured.",
			Error:       "no image generator configured",
		})
		return
	}

	data, err := s.Generator.Generate(r.Context(), req.Prompt)
	if err != nil {
		writeError(w, http.StatusBadGateway, errorResponse{
			Title:       "Generation failed",
			Description: "Failed to generate image. Please try again.",
			Error:       err.Error(),
		})
		return
	}
	ctype := utils.DetectContentType(data)
	if utils.IsSVG(data) {
		ctype = "image/svg+xml"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) maxUpload() int64 {
	if s.MaxUpload <= 0 {
		return DefaultMaxUpload
	}
	return s.MaxUpload
}

// attachment sends the archive as the response body, triggering the browser save.
type attachment struct {
	w       http.ResponseWriter
	written bool
}

// Save implements the iconic.Saver interface.
func (a *attachment) Save(name string, data []byte) error {
	h := a.w.Header()
	h.Set("Content-Type", "application/zip")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	a.w.WriteHeader(http.StatusOK)
	a.written = true

	if _, err := a.w.Write(data); err != nil {
		return fmt.Errorf("unable to send %s: %w", name, err)
	}
	return nil
}

// statusOf maps the export error onto the HTTP status code.
func statusOf(err error) int {
	var se *utils.StatusError
	switch {
	case errors.Is(err, iconic.ErrInvalidOverlay), errors.Is(err, iconic.ErrNoImage):
		return http.StatusBadRequest
	case errors.As(err, &se):
		return http.StatusBadGateway
	case iconic.IsSourceError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, res errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(res)
}
