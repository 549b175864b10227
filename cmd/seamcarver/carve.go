package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/menta2k/seamcarver"
	"github.com/menta2k/seamcarver/internal/config"
	"github.com/menta2k/seamcarver/internal/utils"
	"github.com/menta2k/seamcarver/pkg/analyzer"
	"github.com/menta2k/seamcarver/pkg/client"
	"github.com/menta2k/seamcarver/pkg/detection"
	"github.com/menta2k/seamcarver/pkg/llamacpp"
	"github.com/menta2k/seamcarver/pkg/ollama"
	"github.com/menta2k/seamcarver/pkg/vision"
)

var carveCmd = &cobra.Command{
	Use:   "carve",
	Short: "Narrow an image, or every image in a directory, by removing seams",
	RunE:  runCarve,
}

func init() {
	f := carveCmd.Flags()
	f.StringP("input", "i", "", "input image path, URL or directory")
	f.StringP("output", "o", "", "output file (or directory in batch mode)")
	f.IntP("width", "w", 0, "target width in pixels")
	f.Float64("percent", 0, "target width as a percentage of the current width")
	f.Float64("ratio", 0, "target aspect ratio (width / height)")
	f.Bool("protect", false, "protect subjects located by a vision model")
	f.String("backend", "", "subject backend: ollama, llamacpp or saliency (offline)")
	f.String("url", "", "vision server URL")
	f.String("model", "", "vision model name")
	f.Int("workers", 0, "goroutines per energy row")
	f.String("format", "", "output format: jpg|png|webp|bmp|tiff|gif")
	f.Int("quality", 0, "JPEG/WebP output quality (1-100)")
	f.Bool("lossless", false, "WebP lossless mode")
	f.Bool("debug", false, "write an overlay of the removed seams")
	f.Bool("quiet", false, "hide the progress bar")
	carveCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(carveCmd)
}

func runCarve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCarveFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	quiet, _ := cmd.Flags().GetBool("quiet")

	var plan analyzer.Plan
	plan.Width, _ = cmd.Flags().GetInt("width")
	plan.Percent, _ = cmd.Flags().GetFloat64("percent")
	plan.Ratio, _ = cmd.Flags().GetFloat64("ratio")

	sc := seamcarver.NewWithConfig(facadeConfig(cfg))

	if cfg.Protect.Enabled {
		if cfg.Protect.Backend == "saliency" {
			sc.SetLocator(vision.New())
		} else {
			detector, err := newDetector(cfg)
			if err != nil {
				return err
			}
			sc.SetDetector(detector)
		}
	}

	ctx := context.Background()

	if utils.DirExists(input) {
		return carveDir(ctx, sc, cfg, input, output, plan, quiet)
	}

	if output == "" {
		output = utils.GenerateOutputFilename(input, cfg.Output.OutputDir, cfg.Output.Prefix, cfg.Output.Suffix, cfg.Output.DefaultFormat)
	}
	if err := utils.EnsureDir(filepath.Dir(output)); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if cfg.Protect.Enabled && cfg.Output.Debug && cfg.Protect.Backend != "saliency" {
		probeVision(ctx, sc, cfg, input)
	}

	return carveFile(ctx, sc, input, output, plan, quiet)
}

func carveDir(ctx context.Context, sc *seamcarver.SeamCarver, cfg *config.Config, dir, outDir string, plan analyzer.Plan, quiet bool) error {
	if outDir == "" {
		outDir = cfg.Output.OutputDir
	}
	if err := utils.EnsureDir(outDir); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	supported := analyzer.New()
	files, err := utils.ListImageFiles(dir, supported.SupportsFile)
	if err != nil {
		return fmt.Errorf("listing %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	failed := 0
	for _, file := range files {
		out := utils.GenerateOutputFilename(file, outDir, cfg.Output.Prefix, cfg.Output.Suffix, cfg.Output.DefaultFormat)
		if err := carveFile(ctx, sc, file, out, plan, quiet); err != nil {
			if errors.Is(err, analyzer.ErrSameWidth) {
				log.Printf("skipping %s: already at target width", file)
				continue
			}
			log.Printf("failed %s: %v", file, err)
			failed++
		}
	}

	log.Printf("processed %d images, %d failed", len(files), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(files))
	}
	return nil
}

func carveFile(ctx context.Context, sc *seamcarver.SeamCarver, input, output string, plan analyzer.Plan, quiet bool) error {
	var bar *progressbar.ProgressBar
	if !quiet {
		sc.SetProgress(func(removed, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription(filepath.Base(input)),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Set(removed)
		})
	}

	result, err := sc.ProcessImageFile(ctx, input, output, plan)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	size := "?"
	if fi, err := os.Stat(output); err == nil {
		size = utils.FormatFileSize(fi.Size())
	}
	b := result.Image.Bounds()
	log.Printf("carved %s: %dx%d -> %dx%d, %d seams, %d subjects protected -> %s (%s)",
		input, result.Info.Width, result.Info.Height, b.Dx(), b.Dy(), len(result.Seams), len(result.Subjects), output, size)
	return nil
}

// probeVision asks the model to describe the image so a blind model shows up
// in the log before carving relies on it
func probeVision(ctx context.Context, sc *seamcarver.SeamCarver, cfg *config.Config, input string) {
	vc, err := newVisionClient(cfg.Protect.Backend, cfg.Protect.URL)
	if err != nil {
		log.Printf("vision probe skipped: %v", err)
		return
	}
	img, err := sc.LoadImage(input)
	if err != nil {
		log.Printf("vision probe skipped: %v", err)
		return
	}
	b64, err := sc.PrepareImageForModel(img)
	if err != nil {
		log.Printf("vision probe skipped: %v", err)
		return
	}
	answer, err := detection.NewDetector(vc).TestVision(ctx, cfg.Protect.Model, b64)
	if err != nil {
		log.Printf("vision probe failed: %v", err)
		return
	}
	log.Printf("model sees: %s", answer)
}

func applyCarveFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("protect") {
		cfg.Protect.Enabled, _ = f.GetBool("protect")
	}
	if f.Changed("backend") {
		cfg.Protect.Backend, _ = f.GetString("backend")
		cfg.Protect.URL = config.DefaultBackendURL(cfg.Protect.Backend)
	}
	if f.Changed("url") {
		cfg.Protect.URL, _ = f.GetString("url")
	}
	if f.Changed("model") {
		cfg.Protect.Model, _ = f.GetString("model")
	}
	if f.Changed("workers") {
		cfg.Carver.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("format") {
		cfg.Output.DefaultFormat, _ = f.GetString("format")
	}
	if f.Changed("quality") {
		cfg.Output.Quality, _ = f.GetInt("quality")
	}
	if f.Changed("lossless") {
		cfg.Output.Lossless, _ = f.GetBool("lossless")
	}
	if f.Changed("debug") {
		cfg.Output.Debug, _ = f.GetBool("debug")
	}
}

func facadeConfig(cfg *config.Config) seamcarver.Config {
	fc := seamcarver.DefaultConfig()
	fc.Carve.Workers = cfg.Carver.Workers
	fc.Carve.MaxGridCells = cfg.Carver.MaxGridCells
	fc.Carve.ProtectWeight = cfg.Protect.Weight
	fc.Output.OutputDir = cfg.Output.OutputDir
	fc.Output.Format = cfg.Output.DefaultFormat
	fc.Output.Quality = cfg.Output.Quality
	fc.Output.Lossless = cfg.Output.Lossless
	fc.Output.Debug = cfg.Output.Debug
	fc.Protect = seamcarver.ProtectConfig{
		Model:       cfg.Protect.Model,
		SendFormat:  cfg.Protect.SendFormat,
		SendSize:    cfg.Protect.SendSize,
		SendQuality: cfg.Protect.SendQuality,
	}
	return fc
}

func newDetector(cfg *config.Config) (*detection.Detector, error) {
	vc, err := newVisionClient(cfg.Protect.Backend, cfg.Protect.URL)
	if err != nil {
		return nil, err
	}
	d := detection.NewDetector(vc)
	d.SetMinConfidence(cfg.Protect.MinConfidence)
	return d, nil
}

func newVisionClient(backend, url string) (client.VisionClient, error) {
	switch backend {
	case "ollama":
		c, err := ollama.NewClient(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return c, nil
	case "llamacpp":
		c, err := llamacpp.NewClient(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (use 'ollama' or 'llamacpp')", backend)
	}
}
