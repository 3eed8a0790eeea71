package fractal

import (
	"sync"
	"sync/atomic"
)

// Grid is the row-major iteration-count buffer produced by one request.
//
// A Grid is owned by whoever received it from Compute and must be given back with Release
// exactly once. The backing slice is recycled for later requests, so no reference to Cells
// may be kept past Release.
type Grid struct {
	Width, Height int
	MaxIter       uint32

	// Cells holds Height*Width counts, each in [0, MaxIter]. Nil after Release.
	Cells []uint32

	pool     *bufferPool
	once     sync.Once
	released atomic.Bool
}

func (g *Grid) At(row, col int) uint32 {
	if g.Cells == nil {
		panic("fractal: read of released grid")
	}
	return g.Cells[row*g.Width+col]
}

// Row returns the counts of one row. The slice aliases the grid.
func (g *Grid) Row(row int) []uint32 {
	if g.Cells == nil {
		panic("fractal: read of released grid")
	}
	return g.Cells[row*g.Width : (row+1)*g.Width]
}

// Release hands the buffer back to the allocator that created it. Later calls do nothing.
func (g *Grid) Release() {
	g.once.Do(func() {
		g.released.Store(true)
		cells := g.Cells
		g.Cells = nil
		if g.pool != nil {
			g.pool.put(cells)
		}
	})
}

// Released reports whether Release has been called. It may be called from any goroutine.
func (g *Grid) Released() bool {
	return g.released.Load()
}

type bufferPool struct {
	p sync.Pool
}

func newBufferPool() *bufferPool {
	return &bufferPool{}
}

func (bp *bufferPool) get(n int) []uint32 {
	if v, ok := bp.p.Get().(*[]uint32); ok && cap(*v) >= n {
		cells := (*v)[:n]
		clear(cells)
		return cells
	}
	return make([]uint32, n)
}

func (bp *bufferPool) put(cells []uint32) {
	if cells == nil {
		return
	}
	bp.p.Put(&cells)
}

func (bp *bufferPool) newGrid(r *request) *Grid {
	return &Grid{
		Width:   r.Width,
		Height:  r.Height,
		MaxIter: uint32(r.MaxIter),
		Cells:   bp.get(r.Width * r.Height),
		pool:    bp,
	}
}
