package iconic

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"
)

// Processor options
type Processor struct {
	// Overlay is the optional text drawn on the icon.
	Overlay *TextOverlay
	// Canvas controls how the source is placed before rendering.
	Canvas Canvas
	// IncludeSVG adds the icon.svg wrapper to the pack.
	IncludeSVG bool
	// OverlayFavicon draws the text overlay on the 32×32 favicon as well.
	OverlayFavicon bool
	// OverlaySVG adds the text overlay as a text node of the SVG document.
	OverlaySVG bool
	// ArchiveName is the file name of the downloaded pack.
	ArchiveName string
	// Workers limits the concurrently running renders.
	Workers int

	Renderer Renderer
	Notifier Notifier
	// OnState, when set, observes every state transition.
	OnState func(from, to State)

	mu    sync.Mutex
	state State
}

// Pack is the outcome of a successful export.
type Pack struct {
	Name     string
	Manifest *Manifest
	// Size is the archive size in bytes. The archive buffer itself is released
	// once it has been handed over to the Saver.
	Size int
}

// NewProcessor returns a processor with the default options: SVG included and
// the overlay applied to every rendition.
func NewProcessor() *Processor {
	return &Processor{
		IncludeSVG:     true,
		OverlayFavicon: true,
		OverlaySVG:     true,
		ArchiveName:    DefaultArchiveName,
	}
}

// Clone returns an idle processor sharing the options of p.
func (p *Processor) Clone() *Processor {
	return &Processor{
		Overlay:        p.Overlay,
		Canvas:         p.Canvas,
		IncludeSVG:     p.IncludeSVG,
		OverlayFavicon: p.OverlayFavicon,
		OverlaySVG:     p.OverlaySVG,
		ArchiveName:    p.ArchiveName,
		Workers:        p.Workers,
		Renderer:       p.Renderer,
		Notifier:       p.Notifier,
		OnState:        p.OnState,
	}
}

// State returns the current pipeline stage.
func (p *Processor) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Busy reports whether an export is in flight.
func (p *Processor) Busy() bool {
	return p.State() != Idle
}

// Process reads the source image from r and writes the zipped icon pack into w.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	_, err := p.Export(context.Background(), &ReaderSource{Reader: r}, &WriterSaver{W: w})
	return err
}

// Export runs the whole pipeline: it loads the source once, renders all the
// artifacts concurrently, waits for every one of them, then packages and saves
// the archive. On failure nothing is saved. Exactly one notification is emitted
// per call, except when the processor is busy with another export, in which
// case ErrBusy is returned straight away.
func (p *Processor) Export(ctx context.Context, src Source, saver Saver) (*Pack, error) {
	if !p.acquire() {
		return nil, ErrBusy
	}
	pack, err := p.export(ctx, src, saver)
	if err != nil {
		p.transition(Failed)
	}
	p.transition(Idle)
	p.notify(newNotification(err))

	return pack, err
}

func (p *Processor) export(ctx context.Context, src Source, saver Saver) (*Pack, error) {
	// Loading
	if err := p.Overlay.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrNoImage
	}
	if err := p.Canvas.Validate(); err != nil {
		return nil, err
	}
	img, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if img, err = p.Canvas.prepare(img); err != nil {
		return nil, err
	}

	// Rendering
	p.transition(Rendering)
	artifacts, err := runAll(ctx, p.Workers, p.tasks(img))
	if err != nil {
		return nil, err
	}

	// Assembling
	p.transition(Assembling)
	m := NewManifest()
	for _, a := range artifacts {
		if err := m.Add(a); err != nil {
			return nil, &PackagingError{Err: err}
		}
	}
	if err := m.Seal(); err != nil {
		return nil, &PackagingError{Err: err}
	}
	archive, err := Assemble(m)
	if err != nil {
		return nil, err
	}

	// Downloading
	p.transition(Downloading)
	name := p.archiveName()
	if err := saver.Save(name, archive); err != nil {
		return nil, &PackagingError{Err: err}
	}
	return &Pack{Name: name, Manifest: m, Size: len(archive)}, nil
}

// tasks lists every artifact of the pack: the canonical sizes in ascending
// order, then the favicon, the apple touch icon and the optional SVG.
func (p *Processor) tasks(img *image.NRGBA) []task {
	r := p.renderer()
	gen := &Generator{Renderer: r, Workers: p.Workers}

	favOverlay := p.Overlay
	if !p.OverlayFavicon {
		favOverlay = nil
	}
	tasks := append(gen.tasks(img, p.Overlay),
		faviconTask(r, img, favOverlay),
		appleTouchTask(r, img, p.Overlay),
	)
	if p.IncludeSVG {
		svgOverlay := p.Overlay
		if !p.OverlaySVG {
			svgOverlay = nil
		}
		tasks = append(tasks, svgTask(img, svgOverlay))
	}
	return tasks
}

func (p *Processor) acquire() bool {
	p.mu.Lock()
	if p.state != Idle {
		p.mu.Unlock()
		return false
	}
	p.state = Loading
	p.mu.Unlock()

	if p.OnState != nil {
		p.OnState(Idle, Loading)
	}
	return true
}

func (p *Processor) transition(to State) {
	p.mu.Lock()
	from := p.state
	if !from.canMoveTo(to) {
		p.mu.Unlock()
		panic(fmt.Sprintf("iconic: invalid state transition %s -> %s", from, to))
	}
	p.state = to
	p.mu.Unlock()

	if p.OnState != nil {
		p.OnState(from, to)
	}
}

func (p *Processor) notify(n Notification) {
	if p.Notifier != nil {
		p.Notifier.Notify(n)
	}
}

func (p *Processor) renderer() Renderer {
	if p.Renderer == nil {
		return &Rasterizer{}
	}
	return p.Renderer
}

func (p *Processor) archiveName() string {
	if len(p.ArchiveName) == 0 {
		return DefaultArchiveName
	}
	return p.ArchiveName
}
