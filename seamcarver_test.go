package seamcarver

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/menta2k/seamcarver/internal/utils"
	"github.com/menta2k/seamcarver/pkg/analyzer"
	"github.com/menta2k/seamcarver/pkg/carve"
	"github.com/menta2k/seamcarver/pkg/detection"
	"github.com/menta2k/seamcarver/pkg/types"
	"github.com/menta2k/seamcarver/pkg/vision"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Create a pattern with a bright subject in the center
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

func createUniformImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

type fakeVision struct {
	detection *types.Detection
}

func (f *fakeVision) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	return "ok", nil
}

func (f *fakeVision) LocateSubjects(ctx context.Context, model, prompt, imgB64 string) (*types.Detection, error) {
	return f.detection, nil
}

func TestNew(t *testing.T) {
	sc := New()
	if sc == nil {
		t.Fatal("New() returned nil")
	}
	if sc.analyzer == nil || sc.processor == nil {
		t.Error("components not initialized")
	}
	if sc.locator != nil {
		t.Error("locator should be unset by default")
	}
	if sc.config.Carve.ProtectWeight != DefaultProtectWeight {
		t.Errorf("protect weight = %v", sc.config.Carve.ProtectWeight)
	}
}

func TestNewWithConfigDefaults(t *testing.T) {
	sc := NewWithConfig(Config{Analyzer: analyzer.Config{MinImageSize: 50}})
	if sc.config.Output.Quality != 90 {
		t.Errorf("quality = %d, want 90", sc.config.Output.Quality)
	}
	if err := sc.ValidateImage(createTestImage(40, 40)); err == nil {
		t.Error("expected 40x40 to fail a 50px minimum")
	}
}

func TestCarveImage(t *testing.T) {
	sc := New()
	img := createTestImage(60, 30)

	result, err := sc.CarveImage(img, 45)
	if err != nil {
		t.Fatalf("CarveImage failed: %v", err)
	}

	b := result.Image.Bounds()
	if b.Dx() != 45 || b.Dy() != 30 {
		t.Errorf("carved size %dx%d, want 45x30", b.Dx(), b.Dy())
	}
	if result.Info.Width != 60 {
		t.Errorf("info width = %d, want 60", result.Info.Width)
	}
	if len(result.Seams) != 15 {
		t.Fatalf("expected 15 seams, got %d", len(result.Seams))
	}

	// Seams are reported in original coordinates and never overlap.
	removed := make([]map[int]bool, 30)
	for i := range removed {
		removed[i] = map[int]bool{}
	}
	for _, seam := range result.Seams {
		if err := seam.Validate(30, 60); err != nil {
			t.Fatalf("invalid seam: %v", err)
		}
		for _, p := range seam {
			if removed[p.Row][p.Col] {
				t.Fatalf("column %d of row %d removed twice", p.Col, p.Row)
			}
			removed[p.Row][p.Col] = true
		}
	}
}

func TestCarveImageSameWidth(t *testing.T) {
	sc := New()
	img := createTestImage(20, 10)

	result, err := sc.CarveImage(img, 20)
	if err != nil {
		t.Fatalf("CarveImage failed: %v", err)
	}
	if len(result.Seams) != 0 {
		t.Errorf("expected no seams, got %d", len(result.Seams))
	}
	if result.Image.Bounds().Dx() != 20 {
		t.Errorf("width changed to %d", result.Image.Bounds().Dx())
	}
}

func TestCarveImageInvalidTarget(t *testing.T) {
	sc := New()
	for _, target := range []int{0, 21} {
		if _, err := sc.CarveImage(createTestImage(20, 10), target); !errors.Is(err, carve.ErrInvalidTarget) {
			t.Errorf("target %d: expected ErrInvalidTarget, got %v", target, err)
		}
	}
}

func TestCarveImageBoxesAvoidsProtectedRegion(t *testing.T) {
	sc := New()
	img := createUniformImage(20, 10)
	boxes := []types.Box{{X: 0, Y: 0, W: 0.5, H: 1}}

	result, err := sc.CarveImageBoxes(context.Background(), img, 15, boxes)
	if err != nil {
		t.Fatalf("CarveImageBoxes failed: %v", err)
	}
	for _, seam := range result.Seams {
		for _, p := range seam {
			if p.Col < 10 {
				t.Fatalf("seam entered protected column %d at row %d", p.Col, p.Row)
			}
		}
	}

	// Without protection a flat image loses its leftmost columns.
	plain, err := sc.CarveImage(img, 15)
	if err != nil {
		t.Fatalf("CarveImage failed: %v", err)
	}
	if plain.Seams[0][0].Col != 0 {
		t.Errorf("first unprotected seam at column %d, want 0", plain.Seams[0][0].Col)
	}
}

func TestCarveImageProgress(t *testing.T) {
	sc := New()
	var calls, lastRemoved, lastTotal int
	sc.SetProgress(func(removed, total int) {
		calls++
		lastRemoved, lastTotal = removed, total
	})

	if _, err := sc.CarveImage(createTestImage(30, 12), 24); err != nil {
		t.Fatalf("CarveImage failed: %v", err)
	}
	if calls != 6 || lastRemoved != 6 || lastTotal != 6 {
		t.Errorf("progress calls=%d last=%d/%d, want 6 and 6/6", calls, lastRemoved, lastTotal)
	}
}

func TestCarveImageCanceled(t *testing.T) {
	sc := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sc.CarveImageBoxes(ctx, createTestImage(20, 10), 10, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCarveImageProtected(t *testing.T) {
	sc := New()
	if _, err := sc.CarveImageProtected(context.Background(), createUniformImage(20, 10), 15); err == nil {
		t.Error("expected error without a detector")
	}

	fv := &fakeVision{detection: &types.Detection{
		Subjects: []types.Subject{
			{Label: "dog", Confidence: 0.9, Box: types.Box{X: 0, Y: 0, W: 0.5, H: 1}},
		},
	}}
	sc.SetDetector(detection.NewDetector(fv))

	result, err := sc.CarveImageProtected(context.Background(), createUniformImage(20, 10), 15)
	if err != nil {
		t.Fatalf("CarveImageProtected failed: %v", err)
	}
	if len(result.Subjects) != 1 || result.Subjects[0].Label != "dog" {
		t.Errorf("unexpected subjects: %+v", result.Subjects)
	}
	for _, seam := range result.Seams {
		if seam[0].Col < 10 {
			t.Fatalf("seam entered the protected subject at column %d", seam[0].Col)
		}
	}
}

func createLeftBlockImage(width, height, blockWidth int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < blockWidth {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}
	return img
}

func TestCarveImageSaliencyProtected(t *testing.T) {
	img := createLeftBlockImage(60, 40, 20)
	sc := New()

	// The flat white block costs nothing to carve on its own.
	plain, err := sc.CarveImage(img, 45)
	if err != nil {
		t.Fatalf("CarveImage failed: %v", err)
	}
	if plain.Seams[0][0].Col >= 20 {
		t.Fatalf("expected the unprotected carve to enter the block, first seam at column %d", plain.Seams[0][0].Col)
	}

	sc.SetLocator(vision.New())
	result, err := sc.CarveImageProtected(context.Background(), img, 45)
	if err != nil {
		t.Fatalf("CarveImageProtected failed: %v", err)
	}
	if len(result.Subjects) == 0 {
		t.Fatal("no salient subjects found")
	}
	if len(result.Seams) != 15 {
		t.Fatalf("expected 15 seams, got %d", len(result.Seams))
	}
	for _, seam := range result.Seams {
		for _, p := range seam {
			if p.Col < 20 {
				t.Fatalf("seam entered the salient block at column %d row %d", p.Col, p.Row)
			}
		}
	}
}

func TestProcessImageFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.png")
	output := filepath.Join(dir, "out.png")

	cfg := DefaultConfig()
	cfg.Output.Debug = true
	sc := NewWithConfig(cfg)

	if err := sc.SaveImage(createTestImage(30, 20), input); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}

	result, err := sc.ProcessImageFile(context.Background(), input, output, analyzer.Plan{Width: 20})
	if err != nil {
		t.Fatalf("ProcessImageFile failed: %v", err)
	}
	if len(result.Seams) != 10 {
		t.Errorf("expected 10 seams, got %d", len(result.Seams))
	}

	carved, err := sc.LoadImage(output)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if b := carved.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Errorf("output size %dx%d, want 20x20", b.Dx(), b.Dy())
	}
	if !utils.FileExists(DebugPath(output)) {
		t.Error("debug overlay not written")
	}

	_, err = sc.ProcessImageFile(context.Background(), input, output, analyzer.Plan{Width: 30})
	if !errors.Is(err, analyzer.ErrSameWidth) {
		t.Errorf("expected ErrSameWidth, got %v", err)
	}
}

func TestDebugPath(t *testing.T) {
	if got := DebugPath(filepath.Join("out", "a.jpg")); got != filepath.Join("out", "a_seams.png") {
		t.Errorf("DebugPath = %q", got)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() = %q, want %q", GetVersion(), Version)
	}
}

func BenchmarkCarveImage(b *testing.B) {
	sc := New()
	img := createTestImage(200, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sc.CarveImage(img, 180); err != nil {
			b.Fatal(err)
		}
	}
}
