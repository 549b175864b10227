// Package carve implements content-aware width reduction by seam carving.
//
// The engine works in place on a packed RGB buffer. Each iteration builds a
// cumulative Sobel energy field over the current logical width, traces the
// cheapest top-to-bottom seam and shifts it out of every row. Only the
// leftmost target-width columns are meaningful when Carve returns; cropping
// the buffer is left to the caller.
package carve

import (
	"context"
	"fmt"
)

// State is the orchestrator state of a Carver.
type State int

const (
	Idle State = iota
	Iterating
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Iterating:
		return "iterating"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options tunes a Carver. The zero value carves sequentially with no memory
// budget.
type Options struct {
	// Workers splits each energy row across this many goroutines when > 1.
	Workers int
	// MaxGridCells caps the size of one energy grid; 0 means unlimited.
	MaxGridCells int
	// Allocator provides energy grid storage. Defaults to MakeCells.
	Allocator Allocator
	// Bias, when set, is added to every pixel's local energy. It has the
	// same height x width layout as the image. Carve works on a copy, so the
	// slice can be reused across calls.
	Bias []float64
	// OnSeam is called after every removal with the removed seam and the
	// new logical width.
	OnSeam func(seam Seam, width int)
}

// Carver drives the build, trace and remove loop. A Carver is not safe for
// concurrent use.
type Carver struct {
	opts  Options
	state State
	seams int
}

// New creates a Carver with default options
func New() *Carver {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Carver with custom options
func NewWithOptions(opts Options) *Carver {
	if opts.Allocator == nil {
		opts.Allocator = MakeCells
	}
	return &Carver{opts: opts}
}

// State returns the state reached by the last Carve call.
func (c *Carver) State() State {
	return c.state
}

// Seams returns the number of seams removed by the last Carve call.
func (c *Carver) Seams() int {
	return c.seams
}

// Carve removes width-targetWidth seams from rgb, a packed RGB buffer of
// height rows by width columns.
func Carve(height, width int, rgb []uint8, targetWidth int) error {
	return New().Carve(height, width, rgb, targetWidth)
}

// Carve removes width-targetWidth seams from rgb in place.
func (c *Carver) Carve(height, width int, rgb []uint8, targetWidth int) error {
	return c.CarveContext(context.Background(), height, width, rgb, targetWidth)
}

// CarveContext is Carve with a cancellation check between iterations. A
// failed call leaves rgb partially carved.
func (c *Carver) CarveContext(ctx context.Context, height, width int, rgb []uint8, targetWidth int) error {
	c.state, c.seams = Idle, 0

	if err := c.validate(height, width, rgb, targetWidth); err != nil {
		c.state = Failed
		return err
	}
	if targetWidth == width {
		c.state = Done
		return nil
	}

	gray, err := allocate[int](height * width)
	if err != nil {
		c.state = Failed
		return fmt.Errorf("intensity buffer: %w", err)
	}
	for i := range gray {
		gray[i] = luma(rgb[i*3], rgb[i*3+1], rgb[i*3+2])
	}

	b := fieldBuilder{
		workers:  c.opts.Workers,
		maxCells: c.opts.MaxGridCells,
		alloc:    c.opts.Allocator,
	}
	if c.opts.Bias != nil {
		// seams are shifted out of a private copy; the caller's bias stays intact
		if b.bias, err = allocate[float64](height * width); err != nil {
			c.state = Failed
			return fmt.Errorf("bias buffer: %w", err)
		}
		copy(b.bias, c.opts.Bias)
	}

	c.state = Iterating
	for cur := width; cur > targetWidth; cur-- {
		if err := ctx.Err(); err != nil {
			c.state = Failed
			return err
		}

		grid, err := b.build(gray, height, width, cur)
		if err != nil {
			c.state = Failed
			return fmt.Errorf("energy field at width %d: %w", cur, err)
		}
		seam := TraceSeam(grid)

		RemoveSeam(gray, rgb, width, cur, seam)
		if b.bias != nil {
			removeFromBuffer(b.bias, width, cur, seam)
		}
		c.seams++

		if c.opts.OnSeam != nil {
			c.opts.OnSeam(seam, cur-1)
		}
	}

	c.state = Done
	return nil
}

func (c *Carver) validate(height, width int, rgb []uint8, targetWidth int) error {
	if height < 1 || width < 1 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, width, height)
	}
	if len(rgb) < height*width*3 {
		return fmt.Errorf("%w: %d bytes for %dx%d RGB", ErrInvalidBuffer, len(rgb), width, height)
	}
	if c.opts.Bias != nil && len(c.opts.Bias) < height*width {
		return fmt.Errorf("%w: bias has %d values for %dx%d", ErrInvalidBuffer, len(c.opts.Bias), width, height)
	}
	if targetWidth < 1 || targetWidth > width {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidTarget, targetWidth, width)
	}
	return nil
}
