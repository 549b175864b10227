package detection

import (
	"context"
	"strings"

	"github.com/menta2k/seamcarver/pkg/client"
	"github.com/menta2k/seamcarver/pkg/types"
)

// SimpleTestPrompt checks whether the model can see images at all
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks for the regions that must not be distorted when the
// image is narrowed
const DefaultPrompt = `You are helping a content-aware resizer that removes columns of pixels.
List the regions that must stay intact: people, faces, animals, vehicles, text, and the main subject.

Return JSON only:
{
  "subjects": [
    {"label": "string", "confidence": 0.0, "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}}
  ],
  "description": "short neutral sentence (≤ 20 words)",
  "tags": ["tag1", "tag2", "tag3"]
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels); x,y is the top-left corner.
- Boxes should tightly include each subject. At most 5 subjects.
- If nothing needs protecting, return an empty "subjects" list.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// DefaultMinConfidence drops subjects the model is unsure about
const DefaultMinConfidence = 0.3

// Detector locates subjects to protect using a vision model
type Detector struct {
	client        client.VisionClient
	minConfidence float64
}

// NewDetector creates a new detector with a vision client
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{client: client, minConfidence: DefaultMinConfidence}
}

// SetMinConfidence changes the confidence below which subjects are ignored
func (d *Detector) SetMinConfidence(v float64) {
	d.minConfidence = clamp(v, 0, 1)
}

// DetectSubjects returns the subjects to protect in a base64-encoded image
func (d *Detector) DetectSubjects(ctx context.Context, model, imageB64 string) (*types.Detection, error) {
	return d.DetectSubjectsWithPrompt(ctx, model, imageB64, DefaultPrompt)
}

// DetectSubjectsWithPrompt is DetectSubjects with a custom prompt
func (d *Detector) DetectSubjectsWithPrompt(ctx context.Context, model, imageB64, prompt string) (*types.Detection, error) {
	result, err := d.client.LocateSubjects(ctx, model, prompt, imageB64)
	if err != nil {
		return nil, err
	}

	kept := result.Subjects[:0]
	for _, s := range result.Subjects {
		s.Box = normalizeBox(s.Box)
		if s.Box.Empty() || s.Confidence < d.minConfidence {
			continue
		}
		s.Label = strings.TrimSpace(s.Label)
		kept = append(kept, s)
	}
	result.Subjects = kept
	result.Tags = normalizeTags(result.Tags)

	return result, nil
}

// TestVision tests if the model can actually see the image with a simple prompt
func (d *Detector) TestVision(ctx context.Context, model, imageB64 string) (string, error) {
	return d.client.SimpleQuery(ctx, model, SimpleTestPrompt, imageB64)
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

// normalizeBox clips a box to the unit square
func normalizeBox(b types.Box) types.Box {
	x0, y0 := clamp(b.X, 0, 1), clamp(b.Y, 0, 1)
	x1, y1 := clamp(b.X+b.W, 0, 1), clamp(b.Y+b.H, 0, 1)
	return types.Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// normalizeTags lowercases, dedupes and limits tags to 5 entries
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 5)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == 5 {
			break
		}
	}
	return out
}
