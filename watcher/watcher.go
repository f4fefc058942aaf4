// Package watcher exports an icon pack for every image dropped into a watched folder.
package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/esimov/iconic"
	"github.com/esimov/iconic/utils"
	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period a file must go through before it gets exported.
const DefaultDelay = 500 * time.Millisecond

// Result reports a finished export.
type Result struct {
	Source string
	Pack   string
	// Size is the archive size in bytes.
	Size int
	Err  error
}

// Watcher monitors a folder and exports the images written into it.
type Watcher struct {
	// Delay debounces the successive write events of the same file.
	Delay time.Duration
	// OnExport is called after every export. It defaults to a log line.
	OnExport func(Result)

	dir, out string
	proc     *iconic.Processor
	watcher  *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	wg     sync.WaitGroup
}

// New creates a watcher over dir writing the packs into out with the
// options of the processor.
func New(dir, out string, p *iconic.Processor) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch folder %s: %w", dir, err)
	}
	return &Watcher{
		Delay:   DefaultDelay,
		dir:     dir,
		out:     out,
		proc:    p,
		watcher: fsWatcher,
		timers:  make(map[string]*time.Timer),
	}, nil
}

// Run processes the file system events until the context is cancelled, then
// waits for the running exports to finish.
func (w *Watcher) Run(ctx context.Context) error {
	log.Printf("Watching folder: %s", utils.DecorateText(w.dir, utils.StatusMessage))
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			if n := w.Pending(); n > 0 {
				log.Printf("Cancelling %d pending export(s)", n)
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf(utils.DecorateText("Watcher error: %v", utils.ErrorMessage), err)
		}
	}
}

// handle schedules the export of a created or modified image. Every new event
// of the same file restarts its timer.
func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	name := filepath.Base(event.Name)
	// Skip temp files
	if strings.HasPrefix(name, ".") || !iconic.IsSupported(name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, exists := w.timers[event.Name]; exists {
		timer.Stop()
	}
	path := event.Name
	w.timers[path] = time.AfterFunc(w.delay(), func() {
		w.mu.Lock()
		if w.closed {
			w.mu.Unlock()
			return
		}
		delete(w.timers, path)
		w.wg.Add(1)
		w.mu.Unlock()

		defer w.wg.Done()
		w.export(ctx, path)
	})
}

func (w *Watcher) export(ctx context.Context, path string) {
	dst := filepath.Join(w.out, iconic.PackName(path))
	pack, err := w.proc.Clone().Export(ctx, &iconic.FileSource{Path: path}, &iconic.FileSaver{Path: dst})

	res := Result{Source: path, Pack: dst, Err: err}
	if pack != nil {
		res.Size = pack.Size
	}
	if w.OnExport != nil {
		w.OnExport(res)
		return
	}
	if err != nil {
		log.Printf("%s %s: %v", utils.DecorateText("Export failed", utils.ErrorMessage), path, err)
		return
	}
	log.Printf("%s %s (%s)", utils.DecorateText("Icon pack saved as", utils.SuccessMessage), dst, utils.FormatBytes(res.Size))
}

func (w *Watcher) delay() time.Duration {
	if w.Delay <= 0 {
		return DefaultDelay
	}
	return w.Delay
}

// shutdown cancels the pending exports and waits for the running ones.
func (w *Watcher) shutdown() {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.watcher.Close()
}

// Pending returns the number of files waiting for their quiet period to end.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}
