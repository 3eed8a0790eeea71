package fractal

import (
	"context"
	"fmt"
	"golang.org/x/sync/errgroup"
	"runtime"
	"strings"
)

// Unit is a half-open range [Start, End) of flat cell indices owned by exactly one worker.
type Unit struct {
	Start, End int
}

// A Partition splits width*height cells into units. Units must be in ascending order and cover
// every index exactly once.
type Partition interface {
	Units(width, height, workers int) []Unit
}

// Rows gives every row its own unit.
type Rows struct{}

func (Rows) Units(width, height, _ int) []Unit {
	units := make([]Unit, height)
	for y := range height {
		units[y] = Unit{Start: y * width, End: (y + 1) * width}
	}
	return units
}

// Blocks gives each worker one contiguous range of rows.
type Blocks struct{}

func (Blocks) Units(width, height, workers int) []Unit {
	workers = max(1, min(workers, height))
	rowsPer := (height + workers - 1) / workers

	units := make([]Unit, 0, workers)
	for y := 0; y < height; y += rowsPer {
		end := min(y+rowsPer, height)
		units = append(units, Unit{Start: y * width, End: end * width})
	}
	return units
}

// Chunks splits the flat index space into ranges of Size cells, ignoring row boundaries.
type Chunks struct {
	Size int
}

func (c Chunks) Units(width, height, _ int) []Unit {
	n := width * height
	size := c.Size
	if size <= 0 {
		size = width
	}

	units := make([]Unit, 0, (n+size-1)/size)
	for i := 0; i < n; i += size {
		units = append(units, Unit{Start: i, End: min(i+size, n)})
	}
	return units
}

// Dispatcher runs the kernel over a partition on a fixed number of workers.
//
// Results do not depend on Workers or Partition; both only affect throughput.
type Dispatcher struct {
	// Workers is the number of goroutines. Zero means GOMAXPROCS.
	Workers int
	// Partition defaults to Rows.
	Partition Partition
}

func (d Dispatcher) workers() int {
	if d.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return d.Workers
}

func (d Dispatcher) partition() Partition {
	if d.Partition == nil {
		return Rows{}
	}
	return d.Partition
}

// run fills cells for r. Cancellation is checked before each unit; a unit that has
// started always runs to completion.
func (d Dispatcher) run(ctx context.Context, r *request, cells []uint32) error {
	workers := d.workers()
	units := d.partition().Units(r.Width, r.Height, workers)
	if err := checkCover(units, len(cells)); err != nil {
		return err
	}
	workers = max(1, min(workers, len(units)))

	unitChannel := make(chan Unit)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(unitChannel)
		for _, u := range units {
			select {
			case unitChannel <- u:
			case <-ctx.Done():
				return context.Cause(ctx)
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			for u := range unitChannel {
				if err := ctx.Err(); err != nil {
					return context.Cause(ctx)
				}
				r.fill(cells, u.Start, u.End)
			}
			return nil
		})
	}

	return g.Wait()
}

// checkCover verifies units are in order, disjoint, and cover [0, n).
func checkCover(units []Unit, n int) error {
	next := 0
	for _, u := range units {
		if u.Start != next || u.End < u.Start {
			return fmt.Errorf("partition unit [%d, %d) does not continue at %d", u.Start, u.End, next)
		}
		next = u.End
	}
	if next != n {
		return fmt.Errorf("partition covers %d of %d cells", next, n)
	}
	return nil
}

// ParsePartition resolves a partition strategy by name. chunkSize is only used by "chunks".
func ParsePartition(name string, chunkSize int) (Partition, error) {
	switch strings.ToLower(name) {
	case "", "rows":
		return Rows{}, nil
	case "blocks":
		return Blocks{}, nil
	case "chunks":
		if chunkSize <= 0 {
			return nil, fmt.Errorf("chunk size %d must be positive", chunkSize)
		}
		return Chunks{Size: chunkSize}, nil
	default:
		return nil, fmt.Errorf("unknown partition %q", name)
	}
}
