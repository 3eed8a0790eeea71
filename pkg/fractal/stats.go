package fractal

// Stats summarizes a grid for hosts that show counts rather than images.
type Stats struct {
	Min, Max uint32
	Mean     float64
	// Escaped counts cells that left the bailout radius before MaxIter.
	Escaped int
	Cells   int
}

func (g *Grid) Stats() Stats {
	if len(g.Cells) == 0 {
		return Stats{}
	}

	s := Stats{Min: g.Cells[0], Max: g.Cells[0], Cells: len(g.Cells)}
	var sum uint64
	for _, c := range g.Cells {
		s.Min = min(s.Min, c)
		s.Max = max(s.Max, c)
		sum += uint64(c)
		if c < g.MaxIter {
			s.Escaped++
		}
	}
	s.Mean = float64(sum) / float64(len(g.Cells))

	return s
}

func (s Stats) EscapedFraction() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.Escaped) / float64(s.Cells)
}
