package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir makes sure an output directory is there before images are written into it
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// GetFileExtension returns the lowercase extension of filename without the
// dot, which is also the name SaveImage expects for the format
func GetFileExtension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// GenerateOutputFilename names the carved copy of inputFile inside outputDir.
// An empty format keeps the input's extension, falling back to png.
func GenerateOutputFilename(inputFile, outputDir, prefix, suffix, format string) string {
	base := filepath.Base(inputFile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if format == "" {
		if format = GetFileExtension(inputFile); format == "" {
			format = "png"
		}
	}

	return filepath.Join(outputDir, prefix+stem+suffix+"."+format)
}

// ListImageFiles walks dir and returns the regular files keep accepts, in
// lexical order
func ListImageFiles(dir string, keep func(path string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && keep(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// FileExists reports whether filename names a regular file
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether dirname names a directory, which switches the
// CLI into batch mode
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	return err == nil && info.IsDir()
}

// FormatFileSize renders a byte count with a binary unit for log lines
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	exp := 0
	value := float64(size)
	for value >= unit && exp < len("KMGTPE") {
		value /= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", value, "KMGTPE"[exp-1])
}
