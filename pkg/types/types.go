package types

import "math"

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the box covers no area
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Pixels converts the box to a pixel rectangle [x0,x1) x [y0,y1) inside an
// image of w x h pixels
func (b Box) Pixels(w, h int) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(clamp(b.X, 0, 1) * float64(w)))
	y0 = int(math.Floor(clamp(b.Y, 0, 1) * float64(h)))
	x1 = int(math.Ceil(clamp(b.X+b.W, 0, 1) * float64(w)))
	y1 = int(math.Ceil(clamp(b.Y+b.H, 0, 1) * float64(h)))
	return x0, y0, x1, y1
}

// Subject is an image region that should survive carving intact
type Subject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Detection contains the subjects a vision model located in an image
type Detection struct {
	Subjects    []Subject `json:"subjects"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
}

// Boxes returns the boxes of every subject
func (d *Detection) Boxes() []Box {
	boxes := make([]Box, 0, len(d.Subjects))
	for _, s := range d.Subjects {
		boxes = append(boxes, s.Box)
	}
	return boxes
}

// CarveOptions defines how an image is narrowed
type CarveOptions struct {
	Workers       int
	MaxGridCells  int
	ProtectWeight float64
}

// OutputOptions contains options for writing results
type OutputOptions struct {
	OutputDir string
	Format    string
	Quality   int
	Lossless  bool
	Debug     bool
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
