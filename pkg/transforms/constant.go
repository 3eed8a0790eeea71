package transforms

// The c-driven effects. They read the request constant c and ignore hbar.

// Linear maps z to z*Multiply + Add.
//
// PhaseKickback is Linear{Multiply: c}; QuantumTunneling, z*c + z, is Linear{Multiply: c + 1}.
type Linear struct {
	Multiply complex128
	Add      complex128
}

func (l Linear) Next(z complex128) complex128 {
	return z*l.Multiply + l.Add
}

// Quadratic is the classical Julia recurrence z*z + C.
type Quadratic struct {
	C complex128
}

func (q Quadratic) Next(z complex128) complex128 {
	return z*z + q.C
}

var (
	_ Transform = Linear{}
	_ Transform = Quadratic{}
)
