package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cadenceqa/pkg/config"
	"cadenceqa/pkg/processing"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "cadenceqa.yaml", "Configuration file (defaults are used if it does not exist)")
	targetsPath := flag.String("targets", "", "YAML file with the targets to process")
	numCores := flag.Int("cores", 0, "Number of targets to process in parallel (default: from config)")
	maskDir := flag.String("mask-dir", "", "Write aperture mask and quality strip images to this directory")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *targetsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if *maskDir != "" {
		cfg.Output.SaveMasks = true
		cfg.Output.MaskDir = *maskDir
	}

	params, err := cfg.Params()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	targets, err := config.LoadTargets(*targetsPath)
	if err != nil {
		log.Fatalf("Failed to load targets: %v", err)
	}

	fmt.Println("================================")
	fmt.Println("CADENCE QUALITY FLAGS AND CALIBRATED SERIES LAYOUT")
	fmt.Println("================================")
	fmt.Printf("Processing %d targets on %d cores...\n", len(targets), params.NumCores)

	processor := processing.NewProcessor(params)
	startTime := time.Now()
	results, err := processor.ProcessAll(targets)
	if err != nil {
		log.Fatalf("Processing failed: %v", err)
	}
	processingTime := time.Since(startTime)

	fmt.Printf("\nProcessing completed successfully in %.2f seconds!\n\n", processingTime.Seconds())
	fmt.Printf("%-12s %-14s %-10s %-9s %-9s %-10s\n", "KEPLER ID", "CADENCES", "REFERENCE", "FLAGGED", "GAPPED", "CROWDING")
	for _, res := range results {
		crowding := "-"
		if res.HasCrowding {
			crowding = fmt.Sprintf("%.4f", res.Crowding)
		}
		fmt.Printf("%-12d %-14s %-10d %-9d %-9d %-10s\n",
			res.KeplerID, res.Range, res.ReferenceCadence,
			res.Summary.FlaggedCadences, res.Summary.GappedCadences, crowding)
	}

	if params.SaveMasks {
		fmt.Printf("\nAperture masks and quality strips saved to: %s\n", params.MaskDir)
	}
}
