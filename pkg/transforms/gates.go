package transforms

import "math"

// PauliXGate swaps the real and imaginary parts and scales by Hbar.
type PauliXGate struct {
	Hbar float64
}

func (g PauliXGate) Next(z complex128) complex128 {
	return complex(g.Hbar*imag(z), g.Hbar*real(z))
}

// PauliYGate maps x+iy to Hbar*(-y + ix).
type PauliYGate struct {
	Hbar float64
}

func (g PauliYGate) Next(z complex128) complex128 {
	return complex(-g.Hbar*imag(z), g.Hbar*real(z))
}

// HadamardGate maps x+iy to (x+y) + i*Hbar*(x-y). Only the imaginary part is scaled.
type HadamardGate struct {
	Hbar float64
}

func (g HadamardGate) Next(z complex128) complex128 {
	x, y := real(z), imag(z)
	return complex(x+y, g.Hbar*(x-y))
}

// PhaseShiftGate rotates z by a fixed angle.
type PhaseShiftGate struct {
	// Rotation is e^(i*hbar), kept so the loop does not call Exp per iteration.
	Rotation complex128
}

func NewPhaseShift(hbar float64) PhaseShiftGate {
	sin, cos := math.Sincos(hbar)
	return PhaseShiftGate{Rotation: complex(cos, sin)}
}

func (g PhaseShiftGate) Next(z complex128) complex128 {
	return z * g.Rotation
}

var (
	_ Transform = PauliXGate{}
	_ Transform = PauliYGate{}
	_ Transform = HadamardGate{}
	_ Transform = PhaseShiftGate{}
)
