package fractal

import (
	"github.com/willbeason/quantum-fractal/pkg/transforms"
	"math"
)

// Params describes one fractal request as supplied by the host.
//
// C is accepted for every effect but only the c-driven effects (phase_kickback,
// quantum_tunneling, julia) read it. The gate effects iterate without it.
type Params struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`

	CReal float64 `json:"c_real"`
	CImag float64 `json:"c_imag"`

	MaxIter int     `json:"max_iter"`
	Hbar    float64 `json:"hbar"`

	// Effect names one transform, e.g. "phase_shift" or "Pauli X Gate".
	Effect string `json:"effect"`
}

// DefaultParams matches the initial state of the desktop front-ends.
func DefaultParams() Params {
	return Params{
		Width:   800,
		Height:  800,
		XMin:    -1.5,
		XMax:    1.5,
		YMin:    -1.5,
		YMax:    1.5,
		CReal:   -0.4,
		CImag:   0.6,
		MaxIter: 256,
		Hbar:    1.0,
		Effect:  transforms.PhaseShift.String(),
	}
}

func (p Params) C() complex128 {
	return complex(p.CReal, p.CImag)
}

type request struct {
	Params
	effect    transforms.Effect
	transform transforms.Transform

	// dx and dy are the seed spacing; zero on a single-pixel axis.
	dx, dy float64
}

// Validate checks every field of p before any work is scheduled.
func (p Params) Validate() error {
	_, err := p.resolve()
	return err
}

func (p Params) resolve() (*request, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, newError(InvalidDimensions, "width %d and height %d must be positive", p.Width, p.Height)
	}
	if p.Width > math.MaxInt/p.Height {
		return nil, newError(InvalidDimensions, "%d x %d cells overflow", p.Width, p.Height)
	}

	for _, v := range []float64{p.XMin, p.XMax, p.YMin, p.YMax} {
		if !finite(v) {
			return nil, newError(InvalidBounds, "bound %v is not finite", v)
		}
	}
	if p.XMin >= p.XMax {
		return nil, newError(InvalidBounds, "x_min %g must be less than x_max %g", p.XMin, p.XMax)
	}
	if p.YMin >= p.YMax {
		return nil, newError(InvalidBounds, "y_min %g must be less than y_max %g", p.YMin, p.YMax)
	}

	if p.MaxIter <= 0 || uint64(p.MaxIter) > math.MaxUint32 {
		return nil, newError(InvalidIterationBound, "max_iter %d must be in [1, %d]", p.MaxIter, uint64(math.MaxUint32))
	}

	if !finite(p.Hbar) {
		return nil, newError(InvalidParameter, "hbar %v is not finite", p.Hbar)
	}
	if !finite(p.CReal) || !finite(p.CImag) {
		return nil, newError(InvalidParameter, "c (%v, %v) is not finite", p.CReal, p.CImag)
	}

	effect, ok := transforms.ParseEffect(p.Effect)
	if !ok {
		return nil, newError(UnknownEffect, "%q", p.Effect)
	}
	t, err := transforms.New(effect, p.Hbar, p.C())
	if err != nil {
		return nil, &Error{Kind: UnknownEffect, Detail: p.Effect, Err: err}
	}

	r := &request{Params: p, effect: effect, transform: t}
	if p.Width > 1 {
		r.dx = (p.XMax - p.XMin) / float64(p.Width-1)
	}
	if p.Height > 1 {
		r.dy = (p.YMax - p.YMin) / float64(p.Height-1)
	}

	return r, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
