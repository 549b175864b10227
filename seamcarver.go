// Package seamcarver narrows images by content-aware seam carving.
//
// The library removes the cheapest vertical seams of pixels one at a time
// until an image reaches a target width. Subjects located by an optional
// vision model are protected by raising the energy of their pixels so seams
// route around them.
//
// Basic usage:
//
//	sc := seamcarver.New()
//
//	img, err := sc.LoadImage("photo.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := sc.CarveImage(img, 640)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := sc.SaveImage(result.Image, "photo_carved.jpg"); err != nil {
//		log.Fatal(err)
//	}
//
// The package is built from these components:
//
//  1. Carve (pkg/carve): energy field, seam search and in-place removal
//  2. Processing (pkg/processing): decoding, encoding and buffer conversion
//  3. Analyzer (pkg/analyzer): image validation and target width planning
//  4. Detection (pkg/detection): subject location through a vision model
//  5. Vision (pkg/vision): offline subject location from image saliency
package seamcarver

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/menta2k/seamcarver/internal/utils"
	"github.com/menta2k/seamcarver/pkg/analyzer"
	"github.com/menta2k/seamcarver/pkg/carve"
	"github.com/menta2k/seamcarver/pkg/detection"
	"github.com/menta2k/seamcarver/pkg/processing"
	"github.com/menta2k/seamcarver/pkg/types"
)

// Version of the seamcarver library
const Version = "1.0.0"

// DefaultProtectWeight is the energy added to every pixel of a protected box.
// It dwarfs the largest possible Sobel magnitude of an 8-bit image.
const DefaultProtectWeight = 1e6

// ProtectConfig controls how images are sent to the vision model
type ProtectConfig struct {
	Model       string
	SendFormat  string
	SendSize    int
	SendQuality int
}

// Config bundles the settings of every component
type Config struct {
	Analyzer analyzer.Config
	Carve    types.CarveOptions
	Output   types.OutputOptions
	Protect  ProtectConfig
}

// DefaultConfig returns the configuration used by New
func DefaultConfig() Config {
	return Config{
		Analyzer: analyzer.Config{
			SupportedFormats: []string{"jpg", "jpeg", "png", "webp", "bmp", "tif", "tiff", "gif"},
			MinImageSize:     3,
		},
		Carve: types.CarveOptions{
			Workers:       1,
			ProtectWeight: DefaultProtectWeight,
		},
		Output: types.OutputOptions{
			Quality: 90,
		},
		Protect: ProtectConfig{
			SendFormat:  "jpg",
			SendSize:    1024,
			SendQuality: 85,
		},
	}
}

// Locator finds the subjects to keep intact in an image
type Locator interface {
	LocateSubjects(ctx context.Context, img image.Image) (*types.Detection, error)
}

// SeamCarver provides a high-level interface for carving image files
type SeamCarver struct {
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	locator   Locator
	config    Config
	progress  func(removed, total int)
}

// Result is the outcome of one carve
type Result struct {
	Image    *image.NRGBA
	Info     analyzer.ImageInfo
	Seams    []carve.Seam
	Subjects []types.Subject
}

// New creates a new SeamCarver with default configuration
func New() *SeamCarver {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new SeamCarver with custom configuration
func NewWithConfig(config Config) *SeamCarver {
	if config.Carve.ProtectWeight == 0 {
		config.Carve.ProtectWeight = DefaultProtectWeight
	}
	if config.Output.Quality == 0 {
		config.Output.Quality = 90
	}
	return &SeamCarver{
		analyzer:  analyzer.NewWithConfig(config.Analyzer),
		processor: processing.NewProcessor(),
		config:    config,
	}
}

// SetDetector enables subject protection through a vision model detector
func (sc *SeamCarver) SetDetector(detector *detection.Detector) {
	sc.locator = modelLocator{sc: sc, detector: detector}
}

// SetLocator enables subject protection through any Locator, such as the
// offline saliency detector in pkg/vision
func (sc *SeamCarver) SetLocator(locator Locator) {
	sc.locator = locator
}

// modelLocator sends the image to a vision model through a detector
type modelLocator struct {
	sc       *SeamCarver
	detector *detection.Detector
}

func (m modelLocator) LocateSubjects(ctx context.Context, img image.Image) (*types.Detection, error) {
	imgB64, err := m.sc.PrepareImageForModel(img)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image for model: %w", err)
	}
	return m.detector.DetectSubjects(ctx, m.sc.config.Protect.Model, imgB64)
}

// SetProgress registers a callback invoked after every removed seam
func (sc *SeamCarver) SetProgress(fn func(removed, total int)) {
	sc.progress = fn
}

// LoadImage loads an image from a file path or URL
func (sc *SeamCarver) LoadImage(source string) (image.Image, error) {
	return sc.processor.LoadImageSmart(source)
}

// SaveImage saves an image, picking the encoder from the file extension
// unless an output format is configured
func (sc *SeamCarver) SaveImage(img image.Image, path string) error {
	format := sc.config.Output.Format
	if format == "" {
		format = utils.GetFileExtension(path)
	}
	return sc.processor.SaveImage(img, path, format, sc.config.Output.Quality, sc.config.Output.Lossless)
}

// GetImageInfo returns basic information about an image
func (sc *SeamCarver) GetImageInfo(img image.Image) analyzer.ImageInfo {
	return sc.analyzer.GetImageInfo(img)
}

// ValidateImage checks if an image meets requirements
func (sc *SeamCarver) ValidateImage(img image.Image) error {
	return sc.analyzer.ValidateImage(img)
}

// TargetWidth resolves a plan against an image
func (sc *SeamCarver) TargetWidth(img image.Image, plan analyzer.Plan) (int, error) {
	return sc.analyzer.TargetWidth(sc.analyzer.GetImageInfo(img), plan)
}

// CarveImage narrows img to targetWidth columns
func (sc *SeamCarver) CarveImage(img image.Image, targetWidth int) (Result, error) {
	return sc.CarveImageBoxes(context.Background(), img, targetWidth, nil)
}

// CarveImageBoxes narrows img to targetWidth columns while keeping seams out
// of the given normalized boxes where possible
func (sc *SeamCarver) CarveImageBoxes(ctx context.Context, img image.Image, targetWidth int, boxes []types.Box) (Result, error) {
	rgb, width, height := processing.ToRGB(img)
	tracker := carve.NewTracker(height, width)

	opts := carve.Options{
		Workers:      sc.config.Carve.Workers,
		MaxGridCells: sc.config.Carve.MaxGridCells,
		OnSeam: func(seam carve.Seam, w int) {
			tracker.Record(seam)
			if sc.progress != nil {
				sc.progress(width-w, width-targetWidth)
			}
		},
	}
	if len(boxes) > 0 {
		opts.Bias = processing.BoxesToBias(boxes, width, height, sc.config.Carve.ProtectWeight)
	}

	carver := carve.NewWithOptions(opts)
	if err := carver.CarveContext(ctx, height, width, rgb, targetWidth); err != nil {
		return Result{}, fmt.Errorf("carving stopped after %d seams: %w", carver.Seams(), err)
	}

	return Result{
		Image: processing.FromRGB(rgb, height, width, targetWidth),
		Info:  sc.analyzer.GetImageInfo(img),
		Seams: tracker.Seams(),
	}, nil
}

// PrepareImageForModel encodes img the way the vision model receives it
func (sc *SeamCarver) PrepareImageForModel(img image.Image) (string, error) {
	p := sc.config.Protect
	return sc.processor.PrepareImageForModel(img, p.SendFormat, p.SendSize, p.SendQuality)
}

// CarveImageProtected asks the configured locator for subjects and carves
// around them
func (sc *SeamCarver) CarveImageProtected(ctx context.Context, img image.Image, targetWidth int) (Result, error) {
	if sc.locator == nil {
		return Result{}, fmt.Errorf("subject protection requires a detector")
	}

	det, err := sc.locator.LocateSubjects(ctx, img)
	if err != nil {
		return Result{}, fmt.Errorf("subject detection failed: %w", err)
	}

	result, err := sc.CarveImageBoxes(ctx, img, targetWidth, det.Boxes())
	if err != nil {
		return Result{}, err
	}
	result.Subjects = det.Subjects
	return result, nil
}

// ProcessImageFile loads, validates, carves and saves one image. A debug
// overlay of the removed seams is written next to the output when enabled.
func (sc *SeamCarver) ProcessImageFile(ctx context.Context, inputPath, outputPath string, plan analyzer.Plan) (Result, error) {
	img, err := sc.LoadImage(inputPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load image: %w", err)
	}

	if err := sc.ValidateImage(img); err != nil {
		return Result{}, fmt.Errorf("image validation failed: %w", err)
	}

	target, err := sc.TargetWidth(img, plan)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", inputPath, err)
	}

	var result Result
	if sc.locator != nil {
		result, err = sc.CarveImageProtected(ctx, img, target)
	} else {
		result, err = sc.CarveImageBoxes(ctx, img, target, nil)
	}
	if err != nil {
		return Result{}, err
	}

	if err := sc.SaveImage(result.Image, outputPath); err != nil {
		return Result{}, fmt.Errorf("failed to save %s: %w", outputPath, err)
	}

	if sc.config.Output.Debug {
		boxes := make([]types.Box, 0, len(result.Subjects))
		for _, s := range result.Subjects {
			boxes = append(boxes, s.Box)
		}
		overlay := processing.CreateDebugOverlay(img, result.Seams, boxes)
		if err := sc.processor.SaveImage(overlay, DebugPath(outputPath), "png", 0, false); err != nil {
			return Result{}, fmt.Errorf("failed to save debug overlay: %w", err)
		}
	}

	return result, nil
}

// DebugPath returns where the seam overlay for outputPath is written
func DebugPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_seams.png"
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
