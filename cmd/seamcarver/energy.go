package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/menta2k/seamcarver/internal/utils"
	"github.com/menta2k/seamcarver/pkg/processing"
)

var energyCmd = &cobra.Command{
	Use:   "energy",
	Short: "Write the Sobel energy map seams are carved from",
	RunE:  runEnergy,
}

func init() {
	energyCmd.Flags().StringP("input", "i", "", "input image path or URL")
	energyCmd.Flags().StringP("output", "o", "", "output image")
	energyCmd.MarkFlagRequired("input")
	energyCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(energyCmd)
}

func runEnergy(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	processor := processing.NewProcessor()
	img, err := processor.LoadImageSmart(input)
	if err != nil {
		return fmt.Errorf("loading %s: %w", input, err)
	}

	energy := processing.EnergyImage(img)
	if err := processor.SaveImage(energy, output, utils.GetFileExtension(output), cfg.Output.Quality, cfg.Output.Lossless); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	log.Printf("wrote energy map %s", output)
	return nil
}
