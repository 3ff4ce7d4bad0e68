//nolint:lll
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/rf4catch/internal/batch"
	"github.com/MeKo-Tech/rf4catch/internal/field"
	"github.com/MeKo-Tech/rf4catch/internal/geometry"
	"github.com/MeKo-Tech/rf4catch/internal/pipeline"
	"github.com/MeKo-Tech/rf4catch/internal/utils"
)

// Config represents the complete configuration for rf4catch. It is loaded
// from configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Extract ExtractConfig `mapstructure:"extract" yaml:"extract" json:"extract"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
	Batch   BatchConfig   `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ExtractConfig contains the extraction pipeline settings.
type ExtractConfig struct {
	MarginX      float64   `mapstructure:"margin_x" yaml:"margin_x" json:"margin_x"`
	MinTextRunes int       `mapstructure:"min_text_runes" yaml:"min_text_runes" json:"min_text_runes"`
	ROI          ROIConfig `mapstructure:"roi" yaml:"roi" json:"roi"`
	FishNames    []string  `mapstructure:"fish_names" yaml:"fish_names" json:"fish_names"`
	FishCatalog  string    `mapstructure:"fish_catalog" yaml:"fish_catalog" json:"fish_catalog"`
	FoldWidth    bool      `mapstructure:"fold_width" yaml:"fold_width" json:"fold_width"`
}

// ROIConfig is the OCR acceptance rectangle in screen pixels.
type ROIConfig struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Left    float64 `mapstructure:"left" yaml:"left" json:"left"`
	Top     float64 `mapstructure:"top" yaml:"top" json:"top"`
	Width   float64 `mapstructure:"width" yaml:"width" json:"width"`
	Height  float64 `mapstructure:"height" yaml:"height" json:"height"`
}

// Rect returns the ROI as a rectangle.
func (r ROIConfig) Rect() geometry.Rect {
	return geometry.FromCorner(r.Left, r.Top, r.Width, r.Height)
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	File        string `mapstructure:"file" yaml:"file" json:"file"`
	Verbose     bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	OverlayDir  string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
	RegionColor string `mapstructure:"region_color" yaml:"region_color" json:"region_color"`
	LineColor   string `mapstructure:"line_color" yaml:"line_color" json:"line_color"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	Recursive       bool   `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	MetricsFile     string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	pd := pipeline.DefaultConfig()
	roi := pd.ROI
	return Config{
		LogLevel: "info",
		Extract: ExtractConfig{
			MarginX:      pd.MarginX,
			MinTextRunes: pd.MinTextRunes,
			ROI: ROIConfig{
				Enabled: true,
				Left:    roi.Left,
				Top:     roi.Top,
				Width:   roi.Width,
				Height:  roi.Height,
			},
			FishNames: pd.FishNames,
		},
		Output: OutputConfig{
			Format:      pipeline.FormatJSON,
			RegionColor: "#FF0000",
			LineColor:   "#FFFFFF",
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Output.Format != "" && !pipeline.IsSupportedFormat(c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(pipeline.Formats, ", "))
	}

	if c.Extract.MarginX < 0 {
		return fmt.Errorf("invalid extract.margin_x: %g (must be >= 0)", c.Extract.MarginX)
	}
	if c.Extract.MinTextRunes < 0 {
		return fmt.Errorf("invalid extract.min_text_runes: %d (must be >= 0)", c.Extract.MinTextRunes)
	}
	if c.Extract.ROI.Width < 0 || c.Extract.ROI.Height < 0 {
		return fmt.Errorf("invalid extract.roi: negative size %gx%g", c.Extract.ROI.Width, c.Extract.ROI.Height)
	}
	if c.Extract.ROI.Enabled && !c.Extract.ROI.Rect().Valid() {
		return fmt.Errorf("invalid extract.roi: %v", c.Extract.ROI.Rect())
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	if _, err := utils.ParseHexColor(c.Output.RegionColor); err != nil {
		return fmt.Errorf("invalid output.region_color: %w", err)
	}
	if _, err := utils.ParseHexColor(c.Output.LineColor); err != nil {
		return fmt.Errorf("invalid output.line_color: %w", err)
	}

	return nil
}

// FishNames returns the configured whitelist extended with the names from
// the fish catalog, if one is configured.
func (c *Config) FishNames() ([]string, error) {
	var catalog []string
	if c.Extract.FishCatalog != "" {
		cat, err := field.LoadCatalog(c.Extract.FishCatalog)
		if err != nil {
			return nil, err
		}
		catalog = cat.Names()
	}
	return field.MergeNames(c.Extract.FishNames, catalog), nil
}

// ToPipelineConfig converts the config to the pipeline configuration,
// loading the fish catalog if one is set.
func (c *Config) ToPipelineConfig() (pipeline.Config, error) {
	names, err := c.FishNames()
	if err != nil {
		return pipeline.Config{}, err
	}
	if len(names) == 0 {
		names = append([]string(nil), field.DefaultFishNames...)
	}
	return pipeline.Config{
		MarginX:      c.Extract.MarginX,
		ROI:          c.Extract.ROI.Rect(),
		UseROI:       c.Extract.ROI.Enabled,
		MinTextRunes: c.Extract.MinTextRunes,
		FishNames:    names,
		FoldWidth:    c.Extract.FoldWidth,
	}, nil
}

// ToBatchConfig converts the config to the batch configuration.
func (c *Config) ToBatchConfig() (*batch.Config, error) {
	pcfg, err := c.ToPipelineConfig()
	if err != nil {
		return nil, err
	}
	regionColor, err := utils.ParseHexColor(c.Output.RegionColor)
	if err != nil {
		return nil, err
	}
	lineColor, err := utils.ParseHexColor(c.Output.LineColor)
	if err != nil {
		return nil, err
	}

	cfg := batch.DefaultConfig()
	cfg.Pipeline = pcfg
	cfg.Format = c.Output.Format
	cfg.OutputFile = c.Output.File
	cfg.VerboseOutput = c.Output.Verbose
	cfg.OverlayDir = c.Output.OverlayDir
	cfg.RegionColor = regionColor
	cfg.LineColor = lineColor
	cfg.MetricsFile = c.Batch.MetricsFile
	cfg.Workers = c.Batch.Workers
	cfg.ContinueOnError = c.Batch.ContinueOnError
	cfg.Recursive = c.Batch.Recursive
	return cfg, nil
}
