// Package config provides configuration loading and management for cadenceqa.
// It handles loading configuration and target files from YAML and provides
// default values.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"cadenceqa/internal/models"
	"cadenceqa/pkg/aperture"
	"cadenceqa/pkg/processing"
)

// Names accepted by Output.PixelMask.
const (
	PixelMaskAll         = "all"
	PixelMaskTargetPixel = "targetPixel"
	PixelMaskLightCurve  = "lightCurve"
	PixelMaskK2          = "k2"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many targets are processed in parallel
		NumCores int `yaml:"numCores"`

		// IgnoreZeroCrossings keeps reaction wheel zero crossings from
		// disqualifying a reference cadence
		IgnoreZeroCrossings bool `yaml:"ignoreZeroCrossings"`

		// IsK2 selects the K2 reference cadence mask and aperture pixel mask
		IsK2 bool `yaml:"isK2"`

		// FillFluxGaps interpolates gapped flux cadences
		FillFluxGaps bool `yaml:"fillFluxGaps"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// PixelMask picks which aperture mask bits are exported
		PixelMask string `yaml:"pixelMask"`

		// Fill values written on gapped cadences
		FloatFill  float64 `yaml:"floatFill"`
		DoubleFill float64 `yaml:"doubleFill"`
		TimeFill   float64 `yaml:"timeFill"`

		// SaveMasks writes mask and quality strip images to MaskDir
		SaveMasks bool   `yaml:"saveMasks"`
		MaskDir   string `yaml:"maskDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.IgnoreZeroCrossings = false
	cfg.Processing.IsK2 = false
	cfg.Processing.FillFluxGaps = false

	// Set default output parameters
	cfg.Output.PixelMask = PixelMaskLightCurve
	cfg.Output.FloatFill = math.NaN()
	cfg.Output.DoubleFill = math.NaN()
	cfg.Output.TimeFill = math.NaN()
	cfg.Output.SaveMasks = false
	cfg.Output.MaskDir = "masks"
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if _, err := cfg.pixelMask(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

func (c *Config) pixelMask() (int32, error) {
	switch c.Output.PixelMask {
	case "", PixelMaskAll, PixelMaskLightCurve:
		return aperture.LightCurveMask, nil
	case PixelMaskTargetPixel:
		return aperture.TargetPixelMask, nil
	case PixelMaskK2:
		return aperture.K2Mask, nil
	}
	return 0, fmt.Errorf("unknown pixel mask %q", c.Output.PixelMask)
}

// Params converts the configuration into processing parameters.
func (c *Config) Params() (*processing.Params, error) {
	mask, err := c.pixelMask()
	if err != nil {
		return nil, err
	}
	return &processing.Params{
		NumCores:            c.Processing.NumCores,
		IgnoreZeroCrossings: c.Processing.IgnoreZeroCrossings,
		K2:                  c.Processing.IsK2,
		PixelMask:           mask,
		FillFluxGaps:        c.Processing.FillFluxGaps,
		FloatFill:           float32(c.Output.FloatFill),
		DoubleFill:          c.Output.DoubleFill,
		TimeFill:            c.Output.TimeFill,
		SaveMasks:           c.Output.SaveMasks,
		MaskDir:             c.Output.MaskDir,
		Verbose:             c.Output.Verbose,
	}, nil
}

// targetFile is the layout of a targets YAML document.
type targetFile struct {
	Targets []models.Target `yaml:"targets"`
}

// LoadTargets reads every target from a YAML file. Series written without a
// gaps list are taken as fully valid, and a timeline without fine point,
// momentum dump or electronics lists as all good.
func LoadTargets(path string) ([]models.Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading targets file: %w", err)
	}

	var file targetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing targets file: %w", err)
	}

	for i := range file.Targets {
		normalizeTarget(&file.Targets[i])
	}
	return file.Targets, nil
}

// SaveTargets writes targets in the format LoadTargets reads.
func SaveTargets(targets []models.Target, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating targets directory: %w", err)
	}
	data, err := yaml.Marshal(targetFile{Targets: targets})
	if err != nil {
		return fmt.Errorf("error marshaling targets: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing targets file: %w", err)
	}
	return nil
}

func normalizeTarget(t *models.Target) {
	if t.Timeline != nil {
		normalizeTimeline(t.Timeline)
	}
	if t.LongCadence != nil && t.LongCadence.Timeline != nil {
		normalizeTimeline(t.LongCadence.Timeline)
	}
	for _, s := range []*models.IntSeries{
		t.Discontinuities, t.PaArgabrightening, t.ZeroCrossings,
		t.ThrusterFire, t.PossibleThrusterFire, t.Filled,
	} {
		normalizeSeries(s)
	}
	for _, s := range []*models.FloatSeries{t.Flux, t.BarycentricCorrection, t.Crowding} {
		normalizeSeries(s)
	}
	normalizeSeries(t.RowCentroid)
	normalizeSeries(t.ColumnCentroid)
	if t.Dva != nil {
		normalizeSeries(&t.Dva.Row)
		normalizeSeries(&t.Dva.Column)
	}
}

func normalizeSeries[T models.Sample](s *models.Series[T]) {
	if s != nil && s.Gaps == nil {
		s.Gaps = make([]bool, len(s.Values))
	}
}

func normalizeTimeline(tl *models.CadenceTimeline) {
	n := tl.Len()
	if tl.Gaps == nil {
		tl.Gaps = make([]bool, n)
	}
	if tl.FinePoint == nil {
		tl.FinePoint = make([]bool, n)
		for i := range tl.FinePoint {
			tl.FinePoint[i] = true
		}
	}
	for _, flags := range []*[]bool{
		&tl.MomentumDump, &tl.LdeOos, &tl.LdeParEr, &tl.ScrcErr, &tl.SefiAcc, &tl.SefiCad,
	} {
		if *flags == nil {
			*flags = make([]bool, n)
		}
	}
}
