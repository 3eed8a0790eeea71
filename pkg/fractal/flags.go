package fractal

import (
	"github.com/spf13/pflag"
	"github.com/willbeason/quantum-fractal/pkg/transforms"
	"strings"
)

// AddFlags registers a flag for every field of p, using the current values as defaults.
func (p *Params) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&p.Width, "width", p.Width, "grid width in pixels")
	fs.IntVar(&p.Height, "height", p.Height, "grid height in pixels")
	fs.Float64Var(&p.XMin, "x-min", p.XMin, "real axis lower bound")
	fs.Float64Var(&p.XMax, "x-max", p.XMax, "real axis upper bound")
	fs.Float64Var(&p.YMin, "y-min", p.YMin, "imaginary axis lower bound")
	fs.Float64Var(&p.YMax, "y-max", p.YMax, "imaginary axis upper bound")
	fs.Float64Var(&p.CReal, "c-real", p.CReal, "real part of c (read by phase_kickback, quantum_tunneling, julia)")
	fs.Float64Var(&p.CImag, "c-imag", p.CImag, "imaginary part of c")
	fs.IntVar(&p.MaxIter, "max-iter", p.MaxIter, "iteration budget per pixel")
	fs.Float64Var(&p.Hbar, "hbar", p.Hbar, "nonlinearity of the gate effects")
	fs.StringVar(&p.Effect, "effect", p.Effect, "one of: "+effectList())
}

func effectList() string {
	effects := transforms.Effects()
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = e.String()
	}
	return strings.Join(names, ", ")
}

// AddDispatchFlags registers worker and partition flags for d.
//
// The partition is chosen by name after parsing; call the returned func once flags are parsed.
func (d *Dispatcher) AddDispatchFlags(fs *pflag.FlagSet) func() error {
	fs.IntVar(&d.Workers, "workers", d.Workers, "worker goroutines, 0 for GOMAXPROCS")
	partition := fs.String("partition", "rows", "partition strategy: rows, blocks or chunks")
	chunk := fs.Int("chunk-size", 4096, "cells per unit for the chunks partition")

	return func() error {
		p, err := ParsePartition(*partition, *chunk)
		if err != nil {
			return err
		}
		d.Partition = p
		return nil
	}
}
