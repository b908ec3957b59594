// Package config provides configuration loading and management for the
// diffraction analysis pipeline. It handles loading configuration from YAML
// files and provides the historical preset values as defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the pipeline configuration loaded from YAML
type Config struct {
	// Center search parameters
	Center struct {
		// ScaleFactor separates the optimizer's working units from
		// pixel units to condition the simplex step size
		ScaleFactor float64 `yaml:"scaleFactor"`

		// ResidualTolerance bounds the circle residual for a pixel to
		// count as lying on the candidate ring
		ResidualTolerance float64 `yaml:"residualTolerance"`

		// RowCutoff excludes detector rows at or above the beam block
		RowCutoff float64 `yaml:"rowCutoff"`

		// MaxIterations bounds the simplex search (0 = optimizer default)
		MaxIterations int `yaml:"maxIterations"`
	} `yaml:"center"`

	// Radial averaging parameters
	Radial struct {
		// MinRow excludes rows below it from the average; -1 selects the
		// historical preset of cutting at the first center coordinate
		MinRow int `yaml:"minRow"`

		// CutoffRadius truncates the low end of the averaged curve
		// (0 disables the cutoff)
		CutoffRadius float64 `yaml:"cutoffRadius"`

		// PixelToQ converts pixel radius to scattering-vector magnitude
		// (0 leaves the abscissa in pixels)
		PixelToQ float64 `yaml:"pixelToQ"`
	} `yaml:"radial"`

	// Background estimation parameters
	Background struct {
		// ChunkSize is the feature-window half-width in samples
		ChunkSize int `yaml:"chunkSize"`

		// Smoothing enables moving-average smoothing of the stitched
		// background
		Smoothing struct {
			Enabled bool `yaml:"enabled"`
			Window  int  `yaml:"window"`
		} `yaml:"smoothing"`

		// Biexp holds the fixed constants of the biexponential initial guess
		Biexp struct {
			Rate1 float64 `yaml:"rate1"`
			Rate2 float64 `yaml:"rate2"`
		} `yaml:"biexp"`

		// Bilor holds the fixed constants of the bi-Lorentzian initial guess
		Bilor struct {
			Width1 float64 `yaml:"width1"`
			Width2 float64 `yaml:"width2"`
		} `yaml:"bilor"`
	} `yaml:"background"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with the historical preset values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default center search parameters
	cfg.Center.ScaleFactor = 20.0
	cfg.Center.ResidualTolerance = 10.0
	cfg.Center.RowCutoff = 550.0
	cfg.Center.MaxIterations = 0

	// Set default radial averaging parameters
	cfg.Radial.MinRow = -1
	cfg.Radial.CutoffRadius = 0
	cfg.Radial.PixelToQ = 0

	// Set default background estimation parameters
	cfg.Background.ChunkSize = 5
	cfg.Background.Smoothing.Enabled = false
	cfg.Background.Smoothing.Window = 5
	cfg.Background.Biexp.Rate1 = 1.0 / 50.0
	cfg.Background.Biexp.Rate2 = 1.0 / 150.0
	cfg.Background.Bilor.Width1 = 50.0
	cfg.Background.Bilor.Width2 = 150.0

	// Set default output parameters
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
