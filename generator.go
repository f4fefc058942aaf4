package iconic

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Sizes is the canonical, ordered set of square icon sizes every pack contains.
var Sizes = []int{16, 32, 48, 64, 128, 256, 512}

// SizeName returns the archive file name of the icon rendered at size.
func SizeName(size int) string {
	return fmt.Sprintf("icon-%dx%d.png", size, size)
}

// task produces a single named artifact.
type task func(ctx context.Context) (Artifact, error)

// Generator renders the icon at every canonical size.
type Generator struct {
	Renderer Renderer
	// Workers limits the number of renders running at once. Zero or less means runtime.NumCPU.
	Workers int
}

// tasks returns one render task per canonical size, in canonical order.
func (g *Generator) tasks(src *image.NRGBA, overlay *TextOverlay) []task {
	tasks := make([]task, 0, len(Sizes))
	for _, size := range Sizes {
		size := size
		tasks = append(tasks, func(ctx context.Context) (Artifact, error) {
			data, err := Rasterize(ctx, g.renderer(), src, size, overlay)
			if err != nil {
				return Artifact{}, err
			}
			return Artifact{Name: SizeName(size), Data: data}, nil
		})
	}
	return tasks
}

// Generate renders all the canonical sizes concurrently and returns the artifacts
// ordered by size, whatever the completion order was. The first failure cancels
// the remaining renders and is returned.
func (g *Generator) Generate(ctx context.Context, src *image.NRGBA, overlay *TextOverlay) ([]Artifact, error) {
	return runAll(ctx, g.Workers, g.tasks(src, overlay))
}

func (g *Generator) renderer() Renderer {
	if g.Renderer == nil {
		return &Rasterizer{}
	}
	return g.Renderer
}

// runAll fans out the tasks and joins them. Every result is stored in the slot
// matching its task, so the output order is the input order.
func runAll(ctx context.Context, workers int, tasks []task) ([]Artifact, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Artifact, len(tasks))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, t := range tasks {
		i, t := i, t
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := t(ctx)
			if err != nil {
				return err
			}
			results[i] = a
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
