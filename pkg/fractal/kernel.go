package fractal

import "github.com/willbeason/quantum-fractal/pkg/transforms"

// BailoutSquared is |z|^2 at which an iterate counts as escaped (radius 2).
const BailoutSquared = 4.0

// Escape iterates t from z while |z|^2 stays below BailoutSquared and fewer than maxIter
// steps have run, returning the number of steps taken. A NaN iterate counts as escaped.
func Escape(t transforms.Transform, z complex128, maxIter uint32) uint32 {
	var iter uint32
	for iter < maxIter && abs2(z) < BailoutSquared {
		z = t.Next(z)
		iter++
	}
	return iter
}

func abs2(z complex128) float64 {
	x, y := real(z), imag(z)
	return x*x + y*y
}

// Seed returns the point pixel (row, col) samples. The first and last row and column map
// exactly onto the viewport bounds.
func (p Params) Seed(row, col int) (complex128, error) {
	r, err := p.resolve()
	if err != nil {
		return 0, err
	}
	return r.seed(row, col), nil
}

func (r *request) seed(row, col int) complex128 {
	x := r.XMin + float64(col)*r.dx
	if col == r.Width-1 && r.Width > 1 {
		x = r.XMax
	}

	y := r.YMin + float64(row)*r.dy
	if row == r.Height-1 && r.Height > 1 {
		y = r.YMax
	}

	return complex(x, y)
}

// fill runs the kernel over flat cell indices [start, end).
func (r *request) fill(cells []uint32, start, end int) {
	maxIter := uint32(r.MaxIter)
	for i := start; i < end; i++ {
		row, col := i/r.Width, i%r.Width
		cells[i] = Escape(r.transform, r.seed(row, col), maxIter)
	}
}
