package carve

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Cell is one pixel of the cumulative energy field.
type Cell struct {
	Energy float64 // local energy plus the energy of Pred
	Row    int
	Col    int
	Pred   int // flat index of the weakest neighbor in the row above, -1 in row 0
}

// Grid is a height x width field of cells stored row-major. Width is the
// logical width at the time the grid was built.
type Grid struct {
	Cells  []Cell
	Height int
	Width  int
}

// At returns the cell at (row, col).
func (g *Grid) At(row, col int) *Cell {
	return &g.Cells[row*g.Width+col]
}

// Allocator obtains backing storage for an energy grid of n cells.
type Allocator func(n int) ([]Cell, error)

// MakeCells is the default Allocator. A length the runtime refuses is
// reported as ErrAllocation instead of a panic.
func MakeCells(n int) ([]Cell, error) {
	return allocate[Cell](n)
}

func allocate[T any](n int) (buf []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %d elements: %v", ErrAllocation, n, r)
		}
	}()
	return make([]T, n), nil
}

// Sobel operators
var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// minParallelWidth is the narrowest row worth splitting across workers.
const minParallelWidth = 256

// LocalEnergy returns the Sobel gradient magnitude of pixel (y, x) in an
// intensity buffer with the given row stride. Neighbors outside
// [0, height-1] x [0, width-1] are clamped to the nearest edge pixel.
func LocalEnergy(gray []int, height, stride, width, y, x int) float64 {
	var sx, sy float64
	for i := -1; i <= 1; i++ {
		row := clamp(y+i, 0, height-1) * stride
		for j := -1; j <= 1; j++ {
			v := float64(gray[row+clamp(x+j, 0, width-1)])
			sx += v * sobelX[i+1][j+1]
			sy += v * sobelY[i+1][j+1]
		}
	}
	return math.Sqrt(sx*sx + sy*sy)
}

// BuildEnergyField computes the cumulative energy field over the leftmost
// width columns of gray, sequentially and with the default allocator.
func BuildEnergyField(gray []int, height, stride, width int) (*Grid, error) {
	return fieldBuilder{workers: 1, alloc: MakeCells}.build(gray, height, stride, width)
}

type fieldBuilder struct {
	workers  int
	maxCells int
	alloc    Allocator
	bias     []float64
}

func (b fieldBuilder) build(gray []int, height, stride, width int) (*Grid, error) {
	n := height * width
	if b.maxCells > 0 && n > b.maxCells {
		return nil, fmt.Errorf("%w: grid of %d cells exceeds budget of %d", ErrAllocation, n, b.maxCells)
	}
	cells, err := b.alloc(n)
	if err != nil {
		return nil, err
	}
	if len(cells) < n {
		return nil, fmt.Errorf("%w: allocator returned %d of %d cells", ErrAllocation, len(cells), n)
	}

	g := &Grid{Cells: cells[:n], Height: height, Width: width}
	for y := 0; y < height; y++ {
		if b.workers <= 1 || width < minParallelWidth {
			b.fillRow(g, gray, stride, y, 0, width)
			continue
		}
		// Cells of one row only depend on the finished row above.
		var eg errgroup.Group
		eg.SetLimit(b.workers)
		chunk := (width + b.workers - 1) / b.workers
		for from := 0; from < width; from += chunk {
			to := min(from+chunk, width)
			eg.Go(func() error {
				b.fillRow(g, gray, stride, y, from, to)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (b fieldBuilder) fillRow(g *Grid, gray []int, stride, y, from, to int) {
	base := y * g.Width
	for x := from; x < to; x++ {
		c := &g.Cells[base+x]
		c.Row, c.Col, c.Pred = y, x, -1
		c.Energy = LocalEnergy(gray, g.Height, stride, g.Width, y, x)
		if b.bias != nil {
			c.Energy += b.bias[y*stride+x]
		}
		if y > 0 {
			c.Pred = weakestAbove(g, y, x)
			c.Energy += g.Cells[c.Pred].Energy
		}
	}
}

// weakestAbove picks the lowest-energy cell among columns x-1, x, x+1 of the
// previous row. Ties go to the leftmost candidate.
func weakestAbove(g *Grid, y, x int) int {
	prev := (y - 1) * g.Width
	lo := prev + max(x-1, 0)
	hi := prev + min(x+1, g.Width-1)
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if g.Cells[i].Energy < g.Cells[best].Energy {
			best = i
		}
	}
	return best
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
