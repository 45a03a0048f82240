// Package config handles uvwizard configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/uvwizard/pkg/atlas"
)

// Config holds all tool settings.
type Config struct {
	Atlas   AtlasConfig   `yaml:"atlas"`
	Import  ImportConfig  `yaml:"import"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// AtlasConfig holds packing settings.
type AtlasConfig struct {
	Size        int    `yaml:"size"`          // Atlas side in pixels
	Padding     int    `yaml:"padding"`       // Gap between packed textures
	Downscale   bool   `yaml:"downscale"`     // Halve textures until they fit
	ShrinkToFit bool   `yaml:"shrink_to_fit"` // Trim to the smallest power of two
	Origin      string `yaml:"origin"`        // UV origin: bottom-left or top-left
}

// ImportConfig holds texture import settings.
type ImportConfig struct {
	AllowImport bool `yaml:"allow_import"` // Read unreadable textures from disk
	ColorKey    bool `yaml:"color_key"`    // Treat magenta as transparent
}

// OutputConfig holds export settings.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Manifest bool   `yaml:"manifest"` // Write the rect manifest next to the atlas
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Atlas: AtlasConfig{
			Size:        atlas.DefaultSize,
			Padding:     0,
			Downscale:   true,
			ShrinkToFit: false,
			Origin:      atlas.OriginBottomLeft.String(),
		},
		Import: ImportConfig{
			AllowImport: true,
			ColorKey:    false,
		},
		Output: OutputConfig{
			Dir:      ".",
			Manifest: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Atlas.Size <= 0 {
		return fmt.Errorf("atlas size must be positive, got %d", c.Atlas.Size)
	}
	if c.Atlas.Padding < 0 {
		return fmt.Errorf("atlas padding must not be negative, got %d", c.Atlas.Padding)
	}
	if _, err := atlas.ParseOrigin(c.Atlas.Origin); err != nil {
		return err
	}
	return nil
}

// PackOptions converts the atlas section to packer options.
func (c *Config) PackOptions() (atlas.Options, error) {
	origin, err := atlas.ParseOrigin(c.Atlas.Origin)
	if err != nil {
		return atlas.Options{}, err
	}
	return atlas.Options{
		Padding:     c.Atlas.Padding,
		NoDownscale: !c.Atlas.Downscale,
		ShrinkToFit: c.Atlas.ShrinkToFit,
		Origin:      origin,
	}, nil
}
