package iconic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/iconic/utils"
	"golang.org/x/term"
)

// PipeName is the file name standing for stdin as source and stdout as destination.
const PipeName = "-"

// maxWorkers sets the maximum number of concurrently exported packs in batch mode.
const maxWorkers = 20

// packSuffix is appended to the source base name of every pack exported in batch mode.
const packSuffix = "-" + DefaultArchiveName

// Supported source files.
var validExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".svg"}

// Ops holds the command line level options of an export run.
type Ops struct {
	// Src is a file, a directory, an URL or the pipe name.
	Src string
	// Dst is the archive path, a directory or the pipe name.
	Dst string
	// Prompt, when set, replaces Src with a generated image.
	Prompt    string
	Generator ImageGenerator
	// Workers is the number of sources exported concurrently in batch mode.
	Workers int
	// Log receives the progress indicator and the status lines. Defaults to stderr.
	Log io.Writer
}

// result holds the outcome of a single export.
type result struct {
	path string
	size int
	err  error
}

// Execute runs the export described by op. A directory source is exported in
// batch mode: every supported image of the tree gets its own pack in op.Dst.
func (p *Processor) Execute(ctx context.Context, op *Ops) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	spinner := utils.NewSpinner(fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ ICONIC", utils.StatusMessage),
		utils.DecorateText("⇢ exporting the icon pack...", utils.DefaultMessage),
	), 80*time.Millisecond, true)
	spinner.SetWriter(op.log())
	defer spinner.RestoreCursor()

	now := time.Now()

	if len(op.Prompt) == 0 && op.Src != PipeName && !utils.IsValidUrl(op.Src) {
		fs, err := os.Stat(op.Src)
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		if fs.IsDir() {
			err = op.batch(ctx, p, spinner)
			if err == nil {
				op.printExecTime(now)
			}
			return err
		}
	}

	src, err := op.source()
	if err != nil {
		return err
	}
	saver, dst, err := op.saver()
	if err != nil {
		return err
	}

	spinner.Start()
	pack, err := p.Export(ctx, src, saver)
	spinner.StopMsg = op.statusMsg(err)
	spinner.Stop()

	res := result{path: dst, err: err}
	if pack != nil {
		res.size = pack.Size
	}
	op.printOpStatus(res)
	if err == nil {
		op.printExecTime(now)
	}
	return err
}

// batch walks the source directory and exports the found images concurrently.
func (op *Ops) batch(ctx context.Context, p *Processor, spinner *utils.Spinner) error {
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}
	// Limit the concurrently running workers to maxWorkers.
	if op.Workers <= 0 || op.Workers > maxWorkers {
		op.Workers = runtime.NumCPU()
	}

	ch := make(chan result)
	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(done, op.Src, validExtensions)

	var wg sync.WaitGroup
	wg.Add(op.Workers)
	for i := 0; i < op.Workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(ctx, p, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	spinner.Start()
	var (
		results []result
		errs    []error
	)
	for res := range ch {
		results = append(results, res)
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.path, res.err))
		}
		spinner.SetMessage(fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ ICONIC", utils.StatusMessage),
			utils.DecorateText(fmt.Sprintf("⇢ exported %d icon pack(s)...", len(results)), utils.DefaultMessage),
		))
	}
	spinner.StopMsg = op.statusMsg(errors.Join(errs...))
	spinner.Stop()

	for _, res := range results {
		op.printOpStatus(res)
	}
	if err := <-errc; err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// consumer reads the path names from the paths channel and exports a pack for each of them.
func (op *Ops) consumer(
	ctx context.Context,
	p *Processor,
	res chan<- result,
	done <-chan struct{},
	paths <-chan string,
) {
	for src := range paths {
		dst := filepath.Join(op.Dst, PackName(src))
		pack, err := p.Clone().Export(ctx, &FileSource{Path: src}, &FileSaver{Path: dst})

		r := result{path: dst, err: err}
		if pack != nil {
			r.size = pack.Size
		}
		select {
		case <-done:
			return
		case res <- r:
		}
	}
}

// source resolves the single image the pack is exported from.
func (op *Ops) source() (Source, error) {
	if len(op.Prompt) > 0 {
		return &PromptSource{Generator: op.Generator, Prompt: op.Prompt}, nil
	}
	if op.Src == PipeName && term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("`-` should be used with a pipe for stdin")
	}
	return NewSource(op.Src), nil
}

// saver resolves where the pack goes: stdout, a directory or an archive path.
func (op *Ops) saver() (Saver, string, error) {
	if op.Dst == PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, "", errors.New("`-` should be used with a pipe for stdout")
		}
		return &WriterSaver{W: os.Stdout}, PipeName, nil
	}
	if fs, err := os.Stat(op.Dst); len(op.Dst) == 0 || (err == nil && fs.IsDir()) {
		return &FileSaver{Dir: op.Dst}, filepath.Join(op.Dst, DefaultArchiveName), nil
	}
	if ext := filepath.Ext(op.Dst); !strings.EqualFold(ext, ".zip") {
		return nil, "", fmt.Errorf("%v file type not supported, the icon pack is a zip archive", ext)
	}
	return &FileSaver{Path: op.Dst}, op.Dst, nil
}

func (op *Ops) statusMsg(err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s %s\n",
			utils.DecorateText("⚡ ICONIC", utils.StatusMessage),
			utils.DecorateText("exporting the icon pack failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	}
	return fmt.Sprintf("%s %s %s\n",
		utils.DecorateText("⚡ ICONIC", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the icon pack has been exported successfully ✔", utils.SuccessMessage),
	)
}

// printOpStatus displays the relevant information about a finished export.
func (op *Ops) printOpStatus(res result) {
	if res.err != nil {
		fmt.Fprintf(op.log(), "%s%s",
			utils.DecorateText(fmt.Sprintf("\nError exporting %s", filepath.Base(res.path)), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", res.err), utils.DefaultMessage),
		)
		return
	}
	if res.path != PipeName {
		fmt.Fprintf(op.log(), "\nThe icon pack has been saved as: %s %s%s\n",
			utils.DecorateText(res.path, utils.SuccessMessage),
			utils.DecorateText(fmt.Sprintf("(%s)", utils.FormatBytes(res.size)), utils.DefaultMessage),
			utils.DefaultColor,
		)
	}
}

func (op *Ops) printExecTime(start time.Time) {
	fmt.Fprintf(op.log(), "\nExecution time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(start)), utils.SuccessMessage),
	)
}

func (op *Ops) log() io.Writer {
	if op.Log == nil {
		return os.Stderr
	}
	return op.Log
}

// PackName returns the archive name of a source exported in batch mode.
func PackName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + packSuffix
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(filepath.Ext(f.Name()), srcExts) {
				return nil
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// IsSupported reports whether the file extension belongs to a supported source format.
func IsSupported(path string) bool {
	return isValidExtension(filepath.Ext(path), validExtensions)
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	return utils.Contains(extensions, strings.ToLower(ext))
}
