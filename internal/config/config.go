// Package config loads the analyzer's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up relative to the project root when --config is
// not given.
const DefaultPath = ".stimlint.yml"

// Config holds the directories and knobs for one validation run.
type Config struct {
	ViewsDir       string   `yaml:"views_dir"`
	ControllersDir string   `yaml:"controllers_dir"`
	ChannelsDirs   []string `yaml:"channels_dirs"`

	// ExtractorCmd is the external controller-metadata extractor; the
	// controllers dir is appended as its last argument. When DescriptorFile
	// is set it takes precedence and no subprocess runs.
	ExtractorCmd   []string `yaml:"extractor_cmd"`
	DescriptorFile string   `yaml:"descriptor_file"`

	// ReportCap bounds the per-category verbose listing.
	ReportCap int `yaml:"report_cap"`

	// ForbiddenColorClasses are raw palette utility classes that views must
	// not use directly (semantic classes only).
	ForbiddenColorClasses []string `yaml:"forbidden_color_classes"`
}

// Default returns the Rails-conventional configuration.
func Default() *Config {
	return &Config{
		ViewsDir:       "app/views",
		ControllersDir: "app/javascript/controllers",
		ChannelsDirs:   []string{"app/channels", "app/jobs"},
		ReportCap:      20,
	}
}

// Load reads a YAML config file over the defaults. A missing file at the
// default path is not an error; a missing explicit path is.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.ReportCap <= 0 {
		cfg.ReportCap = Default().ReportCap
	}
	return cfg, nil
}
