package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/ratio"
	"github.com/menta2k/image-cropper/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Ratios RatiosConfig `json:"ratios" yaml:"ratios"`
	Dial   DialConfig   `json:"dial" yaml:"dial"`
	Layout LayoutConfig `json:"layout" yaml:"layout"`
	Output OutputConfig `json:"output" yaml:"output"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

// EngineConfig holds the crop engine policies
type EngineConfig struct {
	CropShape string `json:"crop_shape" yaml:"crop_shape"`
	// PresetFixedRatio is "multiple" or "always_one"
	PresetFixedRatio   string  `json:"preset_fixed_ratio" yaml:"preset_fixed_ratio"`
	PresetRatio        float64 `json:"preset_ratio" yaml:"preset_ratio"`
	MinimumCropBoxSize float64 `json:"minimum_crop_box_size" yaml:"minimum_crop_box_size"`
}

// RatiosConfig holds the offered fixed ratios
type RatiosConfig struct {
	Options []string            `json:"options" yaml:"options"`
	Custom  []ratio.CustomRatio `json:"custom" yaml:"custom"`
	// ShowType is "adaptive", "horizontal" or "vertical"
	ShowType string `json:"show_type" yaml:"show_type"`
}

// DialConfig holds the straightening limits in degrees. Nil means unlimited.
type DialConfig struct {
	RotationLimit  *float64 `json:"rotation_limit,omitempty" yaml:"rotation_limit,omitempty"`
	AngleShowLimit *float64 `json:"angle_show_limit,omitempty" yaml:"angle_show_limit,omitempty"`
}

// LayoutConfig describes the virtual viewport the crop box is laid out in
type LayoutConfig struct {
	ViewportWidth   float64 `json:"viewport_width" yaml:"viewport_width"`
	ViewportHeight  float64 `json:"viewport_height" yaml:"viewport_height"`
	Padding         float64 `json:"padding" yaml:"padding"`
	DashboardHeight float64 `json:"dashboard_height" yaml:"dashboard_height"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format" yaml:"default_format"`
	Quality       int    `json:"quality" yaml:"quality"`
	Lossless      bool   `json:"lossless" yaml:"lossless"`
	OutputDir     string `json:"output_dir" yaml:"output_dir"`
	Prefix        string `json:"prefix" yaml:"prefix"`
	Suffix        string `json:"suffix" yaml:"suffix"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	// File enables a rotating log file in addition to stderr
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Default returns a configuration with default values
func Default() *Config {
	rotationLimit, showLimit := 45.0, 40.0
	return &Config{
		Engine: EngineConfig{
			CropShape:          "rect",
			PresetFixedRatio:   "multiple",
			MinimumCropBoxSize: 42,
		},
		Ratios: RatiosConfig{
			Options:  []string{"all"},
			ShowType: "adaptive",
		},
		Dial: DialConfig{
			RotationLimit:  &rotationLimit,
			AngleShowLimit: &showLimit,
		},
		Layout: LayoutConfig{
			ViewportWidth:   1024,
			ViewportHeight:  1024,
			Padding:         14,
			DashboardHeight: 80,
		},
		Output: OutputConfig{
			DefaultFormat: "jpg",
			Quality:       90,
			OutputDir:     "./output",
			Prefix:        "",
			Suffix:        "_cropped",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func isYAML(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFromFile loads configuration from a JSON or YAML file, chosen by extension.
// Missing fields keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if isYAML(filename) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON or YAML file, chosen by extension
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(filename) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.ToResolverConfig(); err != nil {
		return err
	}

	if _, err := c.ContentBounds(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.default_format must be jpg, png or webp")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}

	return nil
}

// ToResolverConfig converts the engine, ratio and dial sections into resolver policies
func (c *Config) ToResolverConfig() (cropper.Config, error) {
	rc := cropper.DefaultConfig()

	options, err := ratio.ParseOptions(c.Ratios.Options)
	if err != nil {
		return rc, fmt.Errorf("ratios.options: %w", err)
	}
	rc.RatioOptions = options
	rc.CustomRatios = c.Ratios.Custom

	switch strings.ToLower(c.Ratios.ShowType) {
	case "", "adaptive":
		rc.FixRatiosShowType = ratio.ShowAdaptive
	case "horizontal":
		rc.FixRatiosShowType = ratio.ShowHorizontal
	case "vertical":
		rc.FixRatiosShowType = ratio.ShowVertical
	default:
		return rc, fmt.Errorf("ratios.show_type must be adaptive, horizontal or vertical")
	}

	shape, err := cropper.ParseCropShape(c.Engine.CropShape)
	if err != nil {
		return rc, fmt.Errorf("engine.crop_shape: %w", err)
	}
	rc.CropShape = shape

	switch strings.ToLower(c.Engine.PresetFixedRatio) {
	case "", "multiple":
		rc.PresetFixedRatio.Kind = cropper.CanUseMultiplePresetFixedRatio
	case "always_one":
		rc.PresetFixedRatio.Kind = cropper.AlwaysUsingOnePresetFixedRatio
	default:
		return rc, fmt.Errorf("engine.preset_fixed_ratio must be multiple or always_one")
	}
	rc.PresetFixedRatio.Ratio = c.Engine.PresetRatio
	rc.MinimumCropBoxSize = c.Engine.MinimumCropBoxSize

	rc.RotationLimit = degrees(c.Dial.RotationLimit)
	rc.AngleShowLimit = degrees(c.Dial.AngleShowLimit)

	if err := rc.Validate(); err != nil {
		return rc, err
	}
	return rc, nil
}

func degrees(d *float64) *types.Angle {
	if d == nil {
		return nil
	}
	a := types.Degrees(*d)
	return &a
}

// ContentBounds returns the crop area of the configured viewport
func (c *Config) ContentBounds() (types.Rect, error) {
	return cropper.ContentBounds(
		types.Size{Width: c.Layout.ViewportWidth, Height: c.Layout.ViewportHeight},
		c.Layout.Padding, c.Layout.DashboardHeight)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "image-cropper", "config.yaml")
}
