package carve

// Tracker maps seams reported in shrinking logical coordinates back to
// columns of the original image.
type Tracker struct {
	cols   []int
	stride int
	width  int
	seams  []Seam
}

// NewTracker starts tracking an image of height rows by width columns.
func NewTracker(height, width int) *Tracker {
	cols := make([]int, height*width)
	for i := range cols {
		cols[i] = i % width
	}
	return &Tracker{cols: cols, stride: width, width: width}
}

// Record translates seam to original columns, stores it and removes it from
// the tracked layout. Seams must be recorded in removal order.
func (t *Tracker) Record(seam Seam) Seam {
	orig := make(Seam, len(seam))
	for i, p := range seam {
		orig[i] = Point{Row: p.Row, Col: t.cols[p.Row*t.stride+p.Col]}
	}
	removeFromBuffer(t.cols, t.stride, t.width, seam)
	t.width--
	t.seams = append(t.seams, orig)
	return orig
}

// Seams returns every recorded seam in original coordinates.
func (t *Tracker) Seams() []Seam {
	return t.seams
}

// Width returns the current logical width.
func (t *Tracker) Width() int {
	return t.width
}
