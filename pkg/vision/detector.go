// Package vision finds salient regions without a model server. Regions are
// reported as protected subjects so seams can route around them.
package vision

import (
	"context"
	"image"
	"math"
	"sort"

	"github.com/menta2k/seamcarver/pkg/processing"
	"github.com/menta2k/seamcarver/pkg/types"
)

// SubjectDetector scores pixels by local color contrast and brightness and
// groups the strongest windows into regions
type SubjectDetector struct {
	config DetectionConfig
}

// DetectionConfig holds configuration for saliency detection
type DetectionConfig struct {
	ContrastWeight   float64
	BrightnessWeight float64
	// RelativeThreshold keeps windows scoring at least this fraction of
	// the best window
	RelativeThreshold float64
	MinSubjectRatio   float64
	MaxRegions        int
}

// New creates a new SubjectDetector with default configuration
func New() *SubjectDetector {
	return &SubjectDetector{
		config: DetectionConfig{
			ContrastWeight:    0.3,
			BrightnessWeight:  0.2,
			RelativeThreshold: 0.6,
			MinSubjectRatio:   0.01,
			MaxRegions:        10,
		},
	}
}

// NewWithConfig creates a new SubjectDetector with custom configuration
func NewWithConfig(config DetectionConfig) *SubjectDetector {
	return &SubjectDetector{config: config}
}

// Region represents a rectangular region of interest in pixels
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
	Score  float64
}

// Area returns the area of the region
func (r Region) Area() int {
	return r.Width * r.Height
}

// Box converts the region to a normalized box inside a w x h image
func (r Region) Box(w, h int) types.Box {
	return types.Box{
		X: float64(r.X) / float64(w),
		Y: float64(r.Y) / float64(h),
		W: float64(r.Width) / float64(w),
		H: float64(r.Height) / float64(h),
	}
}

// DetectSubjects returns salient regions, highest score first
func (d *SubjectDetector) DetectSubjects(img image.Image) ([]Region, error) {
	rgb, width, height := processing.ToRGB(img)
	if width == 0 || height == 0 {
		return nil, nil
	}

	saliency := d.saliencyMap(rgb, width, height)
	mask := d.markSalientWindows(saliency, width, height)
	regions := d.groupRegions(mask, width, height)

	minArea := int(float64(width*height) * d.config.MinSubjectRatio)
	kept := regions[:0]
	for _, r := range regions {
		if r.Area() >= minArea {
			kept = append(kept, r)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if d.config.MaxRegions > 0 && len(kept) > d.config.MaxRegions {
		kept = kept[:d.config.MaxRegions]
	}
	return kept, nil
}

// LocateSubjects reports salient regions as subjects. Confidence is the
// region score relative to the best region.
func (d *SubjectDetector) LocateSubjects(ctx context.Context, img image.Image) (*types.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	regions, err := d.DetectSubjects(img)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	det := &types.Detection{Description: "salient regions"}
	for _, r := range regions {
		det.Subjects = append(det.Subjects, types.Subject{
			Label:      "salient",
			Confidence: r.Score / regions[0].Score,
			Box:        r.Box(b.Dx(), b.Dy()),
		})
	}
	return det, nil
}

// saliencyMap mixes the mean color distance to the 8 neighbors with
// brightness. Neighbors past the border are clamped to the edge.
func (d *SubjectDetector) saliencyMap(rgb []uint8, width, height int) []float64 {
	maxDist := 255 * math.Sqrt(3)
	out := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			r1, g1, b1 := float64(rgb[i]), float64(rgb[i+1]), float64(rgb[i+2])

			var contrast float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := min(max(x+dx, 0), width-1)
					ny := min(max(y+dy, 0), height-1)
					j := (ny*width + nx) * 3
					dr := r1 - float64(rgb[j])
					dg := g1 - float64(rgb[j+1])
					db := b1 - float64(rgb[j+2])
					contrast += math.Sqrt(dr*dr + dg*dg + db*db)
				}
			}
			contrast /= 8 * maxDist

			brightness := (r1 + g1 + b1) / (3 * 255)
			out[y*width+x] = d.config.ContrastWeight*contrast + d.config.BrightnessWeight*brightness
		}
	}
	return out
}

// markSalientWindows slides square windows over the map and records, per
// pixel, the best score of any passing window covering it. Zero means the
// pixel is not salient.
func (d *SubjectDetector) markSalientWindows(saliency []float64, width, height int) []float64 {
	// summed-area table for O(1) window means
	sat := make([]float64, (width+1)*(height+1))
	for y := 0; y < height; y++ {
		var row float64
		for x := 0; x < width; x++ {
			row += saliency[y*width+x]
			sat[(y+1)*(width+1)+x+1] = sat[y*(width+1)+x+1] + row
		}
	}
	mean := func(x, y, size int) float64 {
		x1, y1 := x+size, y+size
		sum := sat[y1*(width+1)+x1] - sat[y*(width+1)+x1] - sat[y1*(width+1)+x] + sat[y*(width+1)+x]
		return sum / float64(size*size)
	}

	short := min(width, height)
	var sizes []int
	for _, div := range []int{8, 6, 4, 3} {
		if s := short / div; s >= 3 {
			sizes = append(sizes, s)
		}
	}
	if len(sizes) == 0 {
		sizes = []int{short}
	}

	type window struct {
		x, y, size int
		score      float64
	}
	var windows []window
	var best float64
	for _, size := range sizes {
		step := max(size/4, 1)
		for y := 0; y+size <= height; y += step {
			for x := 0; x+size <= width; x += step {
				s := mean(x, y, size)
				windows = append(windows, window{x, y, size, s})
				best = math.Max(best, s)
			}
		}
	}

	mask := make([]float64, width*height)
	if best == 0 {
		return mask
	}
	threshold := d.config.RelativeThreshold * best
	for _, w := range windows {
		if w.score < threshold {
			continue
		}
		for y := w.y; y < w.y+w.size; y++ {
			for x := w.x; x < w.x+w.size; x++ {
				mask[y*width+x] = math.Max(mask[y*width+x], w.score)
			}
		}
	}
	return mask
}

// groupRegions returns the bounding box of every 4-connected group of marked
// pixels, scored with the best window inside it
func (d *SubjectDetector) groupRegions(mask []float64, width, height int) []Region {
	seen := make([]bool, len(mask))
	var regions []Region
	var stack []int

	for start := range mask {
		if mask[start] == 0 || seen[start] {
			continue
		}
		x0, y0 := start%width, start/width
		x1, y1 := x0, y0
		score := 0.0

		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%width, i/width
			x0, x1 = min(x0, x), max(x1, x)
			y0, y1 = min(y0, y), max(y1, y)
			score = math.Max(score, mask[i])

			for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
				if n[0] < 0 || n[1] < 0 || n[0] >= width || n[1] >= height {
					continue
				}
				j := n[1]*width + n[0]
				if mask[j] != 0 && !seen[j] {
					seen[j] = true
					stack = append(stack, j)
				}
			}
		}

		regions = append(regions, Region{X: x0, Y: y0, Width: x1 - x0 + 1, Height: y1 - y0 + 1, Score: score})
	}
	return regions
}
