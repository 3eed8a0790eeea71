package fractal

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func exampleParams() Params {
	return Params{
		Width:   4,
		Height:  4,
		XMin:    -2,
		XMax:    2,
		YMin:    -2,
		YMax:    2,
		MaxIter: 10,
		Hbar:    0.5,
		Effect:  "PhaseShift",
	}
}

func TestValidate(t *testing.T) {
	tcs := []struct {
		name   string
		modify func(p *Params)
		want   Kind
	}{
		{name: "valid", modify: func(*Params) {}},
		{name: "zero width", modify: func(p *Params) { p.Width = 0 }, want: InvalidDimensions},
		{name: "negative height", modify: func(p *Params) { p.Height = -3 }, want: InvalidDimensions},
		{name: "equal x bounds", modify: func(p *Params) { p.XMax = p.XMin }, want: InvalidBounds},
		{name: "inverted y bounds", modify: func(p *Params) { p.YMin, p.YMax = 1, -1 }, want: InvalidBounds},
		{name: "nan bound", modify: func(p *Params) { p.XMin = math.NaN() }, want: InvalidBounds},
		{name: "infinite bound", modify: func(p *Params) { p.YMax = math.Inf(1) }, want: InvalidBounds},
		{name: "zero max iter", modify: func(p *Params) { p.MaxIter = 0 }, want: InvalidIterationBound},
		{name: "negative max iter", modify: func(p *Params) { p.MaxIter = -1 }, want: InvalidIterationBound},
		{name: "nan hbar", modify: func(p *Params) { p.Hbar = math.NaN() }, want: InvalidParameter},
		{name: "infinite c", modify: func(p *Params) { p.CImag = math.Inf(-1) }, want: InvalidParameter},
		{name: "unknown effect", modify: func(p *Params) { p.Effect = "pauli_z" }, want: UnknownEffect},
		{name: "undefined effect", modify: func(p *Params) { p.Effect = "superposition" }, want: UnknownEffect},
		{name: "empty effect", modify: func(p *Params) { p.Effect = "" }, want: UnknownEffect},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			p := exampleParams()
			tc.modify(&p)

			err := p.Validate()
			if tc.want == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.want, KindOf(err))
		})
	}
}

func TestValidateHugeIterationBound(t *testing.T) {
	if math.MaxInt == math.MaxInt32 {
		t.Skip("int cannot exceed the uint32 range")
	}
	p := exampleParams()
	p.MaxIter = math.MaxInt
	assert.ErrorIs(t, p.Validate(), ErrInvalidIterationBound)
}

func TestSeedCorners(t *testing.T) {
	p := Params{
		Width: 7, Height: 5,
		XMin: -1.3, XMax: 0.7,
		YMin: -0.1, YMax: 0.9,
		MaxIter: 1, Effect: "hadamard",
	}

	z, err := p.Seed(0, 0)
	require.NoError(t, err)
	assert.Equal(t, complex(-1.3, -0.1), z)

	z, err = p.Seed(p.Height-1, p.Width-1)
	require.NoError(t, err)
	assert.Equal(t, complex(0.7, 0.9), z)
}

func TestSeedSinglePixel(t *testing.T) {
	p := exampleParams()
	p.Width, p.Height = 1, 1

	z, err := p.Seed(0, 0)
	require.NoError(t, err)
	assert.Equal(t, complex(p.XMin, p.YMin), z)
}

func TestSeedInterior(t *testing.T) {
	p := exampleParams()
	p.Width, p.Height = 5, 3

	z, err := p.Seed(1, 2)
	require.NoError(t, err)
	assert.Equal(t, complex(0, 0), z)
}

func TestErrorMessage(t *testing.T) {
	p := exampleParams()
	p.Effect = "superposition"

	err := p.Validate()
	assert.EqualError(t, err, `unknown_effect: "superposition"`)
	assert.ErrorIs(t, err, ErrUnknownEffect)
	assert.NotErrorIs(t, err, ErrInvalidBounds)
	assert.False(t, IsCancelled(err))
}
