package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

// createBlockImage creates a gray image with a white block at
// [x0,x1) x [y0,y1)
func createBlockImage(width, height, x0, y0, x1, y1 int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= x0 && x < x1 && y >= y0 && y < y1 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}
	return img
}

func TestDetectSubjectsFindsBlock(t *testing.T) {
	d := New()
	regions, err := d.DetectSubjects(createBlockImage(60, 40, 20, 10, 40, 30))
	if err != nil {
		t.Fatalf("DetectSubjects failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d: %+v", len(regions), regions)
	}

	r := regions[0]
	if r.X > 20 || r.Y > 10 || r.X+r.Width < 40 || r.Y+r.Height < 30 {
		t.Errorf("region %+v does not cover the block", r)
	}
	if r.X < 10 || r.X+r.Width > 50 {
		t.Errorf("region %+v spills far past the block", r)
	}
	if r.Score <= 0 {
		t.Errorf("region score = %f", r.Score)
	}
}

func TestDetectSubjectsBlackImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	regions, err := New().DetectSubjects(img)
	if err != nil {
		t.Fatalf("DetectSubjects failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("expected no regions, got %+v", regions)
	}
}

func TestDetectSubjectsMinArea(t *testing.T) {
	d := NewWithConfig(DetectionConfig{
		ContrastWeight:    0.3,
		BrightnessWeight:  0.2,
		RelativeThreshold: 0.6,
		MinSubjectRatio:   0.9,
	})
	regions, err := d.DetectSubjects(createBlockImage(60, 40, 20, 10, 40, 30))
	if err != nil {
		t.Fatalf("DetectSubjects failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("expected small regions to be dropped, got %+v", regions)
	}
}

func TestLocateSubjects(t *testing.T) {
	det, err := New().LocateSubjects(context.Background(), createBlockImage(60, 40, 0, 0, 20, 40))
	if err != nil {
		t.Fatalf("LocateSubjects failed: %v", err)
	}
	if len(det.Subjects) != 1 {
		t.Fatalf("expected 1 subject, got %+v", det.Subjects)
	}

	s := det.Subjects[0]
	if s.Confidence != 1 || s.Label != "salient" {
		t.Errorf("subject = %+v", s)
	}
	x0, y0, x1, y1 := s.Box.Pixels(60, 40)
	if x0 != 0 || y0 != 0 || y1 != 40 || x1 < 20 || x1 > 30 {
		t.Errorf("box pixels (%d,%d)-(%d,%d), want the left block", x0, y0, x1, y1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().LocateSubjects(ctx, createBlockImage(10, 10, 0, 0, 5, 5)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRegionBox(t *testing.T) {
	b := Region{X: 15, Y: 10, Width: 30, Height: 20}.Box(60, 40)
	if b.X != 0.25 || b.Y != 0.25 || b.W != 0.5 || b.H != 0.5 {
		t.Errorf("Box() = %+v", b)
	}
}

func BenchmarkDetectSubjects(b *testing.B) {
	img := createBlockImage(320, 240, 100, 60, 220, 180)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		New().DetectSubjects(img)
	}
}
