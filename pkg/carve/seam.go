package carve

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Point is a pixel coordinate within the current logical width.
type Point struct {
	Row int
	Col int
}

// Seam holds one point per row, ordered from the top row down.
type Seam []Point

// TraceSeam returns the minimum-cost seam of a completed energy field. The
// bottom row minimum is the first occurrence, so ties go to the lowest column.
func TraceSeam(g *Grid) Seam {
	bottom := make([]float64, g.Width)
	base := (g.Height - 1) * g.Width
	for x := range bottom {
		bottom[x] = g.Cells[base+x].Energy
	}

	seam := make(Seam, g.Height)
	idx := base + floats.MinIdx(bottom)
	for y := g.Height - 1; y >= 0; y-- {
		c := g.Cells[idx]
		seam[y] = Point{Row: c.Row, Col: c.Col}
		idx = c.Pred
	}
	return seam
}

// Validate checks that s is a connected top-to-bottom path through an image of
// the given height and logical width.
func (s Seam) Validate(height, width int) error {
	if len(s) != height {
		return fmt.Errorf("seam has %d points, want %d", len(s), height)
	}
	for i, p := range s {
		if p.Row != i {
			return fmt.Errorf("point %d is on row %d", i, p.Row)
		}
		if p.Col < 0 || p.Col >= width {
			return fmt.Errorf("point %d column %d outside [0, %d)", i, p.Col, width)
		}
		if i > 0 {
			if d := p.Col - s[i-1].Col; d < -1 || d > 1 {
				return fmt.Errorf("rows %d and %d are %d columns apart", i-1, i, d)
			}
		}
	}
	return nil
}

// Cost sums the local energies along s. The field must be the one s was
// traced from.
func (s Seam) Cost(g *Grid) float64 {
	if len(s) == 0 {
		return 0
	}
	last := s[len(s)-1]
	return g.At(last.Row, last.Col).Energy
}
