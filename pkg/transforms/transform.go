// Package transforms holds the complex-plane maps a fractal request can iterate.
//
// The "gate" transforms are named after single-qubit quantum gates but are plain deterministic
// algebraic maps on the plane. They are not unitary and make no claim to model quantum mechanics.
package transforms

import (
	"fmt"
	"strings"
)

// A Transform advances one iterate to the next.
//
// Implementations are pure: for the same z they always return the same value and have no side effects.
type Transform interface {
	Next(z complex128) complex128
}

// Effect selects one entry of the transform library.
type Effect int

const (
	// Unknown is the zero Effect and never resolves to a Transform.
	Unknown Effect = iota
	PauliX
	PauliY
	Hadamard
	PhaseShift
	// PhaseKickback multiplies by the request constant c.
	PhaseKickback
	// QuantumTunneling multiplies by c and adds the iterate back.
	QuantumTunneling
	// Julia is the classical z*z + c recurrence. It is only used when asked for by name.
	Julia
)

var effectNames = [...]string{
	Unknown:          "unknown",
	PauliX:           "pauli_x",
	PauliY:           "pauli_y",
	Hadamard:         "hadamard",
	PhaseShift:       "phase_shift",
	PhaseKickback:    "phase_kickback",
	QuantumTunneling: "quantum_tunneling",
	Julia:            "julia",
}

func Effects() []Effect {
	return []Effect{PauliX, PauliY, Hadamard, PhaseShift, PhaseKickback, QuantumTunneling, Julia}
}

func (e Effect) String() string {
	if e < 0 || int(e) >= len(effectNames) {
		return fmt.Sprintf("Effect(%d)", int(e))
	}
	return effectNames[e]
}

// ParseEffect resolves a host-supplied effect name.
//
// Matching ignores case, spaces, underscores, hyphens and a trailing "gate", so "PhaseShift",
// "phase_shift" and "Phase Shift Gate" are the same effect. Names with no defined formula,
// such as "superposition", return Unknown and false.
func ParseEffect(name string) (Effect, bool) {
	key := normalize(name)
	if key == "" {
		return Unknown, false
	}

	for _, e := range Effects() {
		if normalize(e.String()) == key {
			return e, true
		}
	}

	return Unknown, false
}

func normalize(name string) string {
	s := strings.ToLower(name)
	s = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
	return strings.TrimSuffix(s, "gate")
}

// New builds the Transform for e.
//
// hbar parameterizes the gate effects; c is only read by PhaseKickback, QuantumTunneling and Julia.
func New(e Effect, hbar float64, c complex128) (Transform, error) {
	switch e {
	case PauliX:
		return PauliXGate{Hbar: hbar}, nil
	case PauliY:
		return PauliYGate{Hbar: hbar}, nil
	case Hadamard:
		return HadamardGate{Hbar: hbar}, nil
	case PhaseShift:
		return NewPhaseShift(hbar), nil
	case PhaseKickback:
		return Linear{Multiply: c}, nil
	case QuantumTunneling:
		return Linear{Multiply: c + 1}, nil
	case Julia:
		return Quadratic{C: c}, nil
	default:
		return nil, fmt.Errorf("no transform for effect %v", e)
	}
}
