package types

import "testing"

func TestBoxPixels(t *testing.T) {
	b := Box{X: 0.25, Y: 0.1, W: 0.5, H: 0.5}
	x0, y0, x1, y1 := b.Pixels(100, 50)
	if x0 != 25 || y0 != 5 || x1 != 75 || y1 != 30 {
		t.Errorf("Pixels = %d,%d,%d,%d, want 25,5,75,30", x0, y0, x1, y1)
	}

	// boxes spilling over the edge are clamped
	b = Box{X: 0.9, Y: -0.2, W: 0.5, H: 0.5}
	x0, y0, x1, y1 = b.Pixels(10, 10)
	if x0 != 9 || y0 != 0 || x1 != 10 || y1 != 3 {
		t.Errorf("clamped Pixels = %d,%d,%d,%d, want 9,0,10,3", x0, y0, x1, y1)
	}
}

func TestBoxEmpty(t *testing.T) {
	if !(Box{W: 0, H: 1}).Empty() {
		t.Error("zero-width box should be empty")
	}
	if (Box{W: 0.1, H: 0.1}).Empty() {
		t.Error("non-zero box should not be empty")
	}
}

func TestParseDetection(t *testing.T) {
	raw := "```json\n" + `{
  "subjects": [
    {"label": "dog", "confidence": 0.9, "box": {"x": 0.1, "y": 0.2, "w": 0.3, "h": 0.4}}, // main subject
  ],
  /* free text */
  "description": "a dog on grass",
  "tags": ["dog", "grass",],
}` + "\n```"

	d := ParseDetection(raw)
	if len(d.Subjects) != 1 {
		t.Fatalf("expected 1 subject, got %d", len(d.Subjects))
	}
	s := d.Subjects[0]
	if s.Label != "dog" || s.Confidence != 0.9 || s.Box.W != 0.3 {
		t.Errorf("unexpected subject %+v", s)
	}
	if d.Description != "a dog on grass" || len(d.Tags) != 2 {
		t.Errorf("unexpected detection %+v", d)
	}
	if boxes := d.Boxes(); len(boxes) != 1 || boxes[0] != s.Box {
		t.Errorf("Boxes() = %v", boxes)
	}
}

func TestParseDetectionFallback(t *testing.T) {
	for _, raw := range []string{"I cannot see an image.", "{not json}", ""} {
		d := ParseDetection(raw)
		if d == nil {
			t.Fatalf("ParseDetection(%q) returned nil", raw)
		}
		if len(d.Subjects) != 0 {
			t.Errorf("ParseDetection(%q) returned subjects %v", raw, d.Subjects)
		}
	}
}
