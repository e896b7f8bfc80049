package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/image-cropper/pkg/cropper"
	"github.com/menta2k/image-cropper/pkg/ratio"
	"github.com/menta2k/image-cropper/pkg/types"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	rc, err := cfg.ToResolverConfig()
	require.NoError(t, err)
	assert.Equal(t, ratio.All, rc.RatioOptions)
	assert.Equal(t, cropper.ShapeRect, rc.CropShape)
	require.NotNil(t, rc.RotationLimit)
	assert.InDelta(t, 45.0, rc.RotationLimit.Degrees(), 1e-9)
	require.NotNil(t, rc.AngleShowLimit)
	assert.InDelta(t, 40.0, rc.AngleShowLimit.Degrees(), 1e-9)

	b, err := cfg.ContentBounds()
	require.NoError(t, err)
	assert.Equal(t, types.Rect{X: 14, Y: 14, Width: 996, Height: 916}, b)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Engine.CropShape = "circle"
	cfg.Ratios.Options = []string{"original", "16:9"}
	cfg.Ratios.Custom = []ratio.CustomRatio{ratio.Horizontal(21, 9)}
	showLimit := 30.0
	cfg.Dial.AngleShowLimit = &showLimit

	for _, name := range []string{"config.json", "nested/config.yaml", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, cfg.SaveToFile(path))

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("engine:\n  preset_fixed_ratio: always_one\n  preset_ratio: 1.5\nratios:\n  show_type: vertical\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Output.Quality)
	assert.Equal(t, []string{"all"}, cfg.Ratios.Options)

	rc, err := cfg.ToResolverConfig()
	require.NoError(t, err)
	assert.Equal(t, cropper.PresetFixedRatio{Kind: cropper.AlwaysUsingOnePresetFixedRatio, Ratio: 1.5}, rc.PresetFixedRatio)
	assert.Equal(t, ratio.ShowVertical, rc.FixRatiosShowType)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad ratio option", func(c *Config) { c.Ratios.Options = []string{"2:1"} }},
		{"bad show type", func(c *Config) { c.Ratios.ShowType = "diagonal" }},
		{"bad shape", func(c *Config) { c.Engine.CropShape = "star" }},
		{"bad preset kind", func(c *Config) { c.Engine.PresetFixedRatio = "some" }},
		{"negative preset ratio", func(c *Config) { c.Engine.PresetRatio = -2 }},
		{"bad custom ratio", func(c *Config) { c.Ratios.Custom = []ratio.CustomRatio{{Width: 0, Height: 3}} }},
		{"viewport too small", func(c *Config) { c.Layout.ViewportHeight = 100 }},
		{"quality", func(c *Config) { c.Output.Quality = 0 }},
		{"format", func(c *Config) { c.Output.DefaultFormat = "gif" }},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(GetConfigPath()))
}
