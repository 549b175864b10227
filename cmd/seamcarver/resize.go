package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/menta2k/seamcarver/internal/utils"
	"github.com/menta2k/seamcarver/pkg/processing"
)

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Scale an image with bilinear filtering for comparison with carving",
	RunE:  runResize,
}

func init() {
	resizeCmd.Flags().StringP("input", "i", "", "input image path or URL")
	resizeCmd.Flags().StringP("output", "o", "", "output image")
	resizeCmd.Flags().IntP("width", "w", 0, "target width")
	resizeCmd.Flags().IntP("height", "H", 0, "target height (default: keep)")
	resizeCmd.MarkFlagRequired("input")
	resizeCmd.MarkFlagRequired("output")
	resizeCmd.MarkFlagRequired("width")
	rootCmd.AddCommand(resizeCmd)
}

func runResize(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	processor := processing.NewProcessor()
	img, err := processor.LoadImageSmart(input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", input, err)
	}
	if height == 0 {
		height = img.Bounds().Dy()
	}

	resized, err := processor.Resize(img, width, height)
	if err != nil {
		return err
	}
	if err := processor.SaveImage(resized, output, utils.GetFileExtension(output), cfg.Output.Quality, cfg.Output.Lossless); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	log.Printf("resized %s to %dx%d -> %s", input, width, height, output)
	return nil
}
