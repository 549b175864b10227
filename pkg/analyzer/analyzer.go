package analyzer

import (
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"
)

// ErrSameWidth reports a plan that would leave the width unchanged
var ErrSameWidth = errors.New("target width must not equal current width")

// ImageAnalyzer inspects images and plans carving targets
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []string
	MinImageSize     int
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []string{"jpg", "jpeg", "png", "webp", "bmp", "tif", "tiff", "gif"},
			MinImageSize:     3,
		},
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

// ValidateImage checks if an image meets minimum requirements
func (a *ImageAnalyzer) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() < a.config.MinImageSize || bounds.Dy() < a.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), a.config.MinImageSize)
	}
	return nil
}

// SupportsFile reports whether a path has a supported image extension
func (a *ImageAnalyzer) SupportsFile(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return a.isFormatSupported(ext)
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// Plan describes the requested width. Exactly one field must be set.
type Plan struct {
	Width   int     // absolute width in pixels
	Percent float64 // width as a percentage of the original, (0, 100]
	Ratio   float64 // width / height aspect ratio
}

// TargetWidth resolves a plan against an image. Carving only narrows, so
// targets wider than the image are rejected, and an unchanged width yields
// ErrSameWidth.
func (a *ImageAnalyzer) TargetWidth(info ImageInfo, plan Plan) (int, error) {
	set := 0
	var target int
	if plan.Width != 0 {
		set++
		target = plan.Width
	}
	if plan.Percent != 0 {
		set++
		if plan.Percent < 0 || plan.Percent > 100 {
			return 0, fmt.Errorf("percent %.2f outside (0, 100]", plan.Percent)
		}
		target = int(math.Round(float64(info.Width) * plan.Percent / 100))
	}
	if plan.Ratio != 0 {
		set++
		if plan.Ratio < 0 {
			return 0, fmt.Errorf("ratio %.3f must be positive", plan.Ratio)
		}
		target = int(math.Round(float64(info.Height) * plan.Ratio))
	}
	if set != 1 {
		return 0, fmt.Errorf("exactly one of width, percent or ratio must be set")
	}

	switch {
	case target < 1:
		return 0, fmt.Errorf("target width %d must be at least 1", target)
	case target > info.Width:
		return 0, fmt.Errorf("target width %d exceeds image width %d: enlarging is not supported", target, info.Width)
	case target == info.Width:
		return target, ErrSameWidth
	}
	return target, nil
}
