// Package config loads the G-code command layer's tunables from a YAML
// file, in the style sqldef uses gopkg.in/yaml.v2 struct tags for its own
// configuration (the teacher repo has no config loader of its own to
// imitate).
package config

import (
	"fmt"
	"io/ioutil"
	"regexp"

	yaml "gopkg.in/yaml.v2"
)

// Config holds every tunable named in the external interfaces table: the
// base directory, file-info scan limits, and the ordered regex filter
// lists the file-info extractors apply.
type Config struct {
	BaseDirectory string `yaml:"base_directory"`

	// HostUpdateInterval is the cadence of host-telemetry refresh, in
	// seconds; that subsystem is an external collaborator out of scope
	// here, but the knob is still part of the configuration surface this
	// layer reads from the same file.
	HostUpdateInterval float64 `yaml:"host_update_interval"`

	FileInfoReadBufferSize  int     `yaml:"file_info_read_buffer_size"`
	FileInfoReadLimitHeader int64   `yaml:"file_info_read_limit_header"`
	FileInfoReadLimitFooter int64   `yaml:"file_info_read_limit_footer"`
	MaxLayerHeight          float64 `yaml:"max_layer_height"`

	LayerHeightFilters   []string `yaml:"layer_height_filters"`
	FilamentFilters      []string `yaml:"filament_filters"`
	GeneratedByFilters   []string `yaml:"generated_by_filters"`
	PrintTimeFilters     []string `yaml:"print_time_filters"`
	SimulatedTimeFilters []string `yaml:"simulated_time_filters"`
}

// Compiled holds a Config together with its filter patterns pre-compiled,
// as returned by Load; extractors.go consumes this, never raw strings, so
// a bad pattern fails at load time instead of at first use mid-scan.
type Compiled struct {
	Config

	LayerHeightFilters   []*regexp.Regexp
	FilamentFilters      []*regexp.Regexp
	GeneratedByFilters   []*regexp.Regexp
	PrintTimeFilters     []*regexp.Regexp
	SimulatedTimeFilters []*regexp.Regexp
}

// defaults mirrors the zero-valued fields a freshly yaml.Unmarshal'd Config
// gets; applied after Load for anything left unset.
var defaults = Config{
	FileInfoReadBufferSize:  4096,
	FileInfoReadLimitHeader: 256 * 1024,
	FileInfoReadLimitFooter: 256 * 1024,
	MaxLayerHeight:          0.5,
}

// Load reads a YAML file at path, applies defaults to any zero-valued
// field, validates the positive-value fields, and compiles every regex
// filter list.
func Load(path string) (*Compiled, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	applyDefaults(&cfg)

	if err := validatePositive(cfg); err != nil {
		return nil, err
	}

	c := &Compiled{Config: cfg}
	for _, group := range []struct {
		name string
		src  []string
		dst  *[]*regexp.Regexp
	}{
		{"layer_height_filters", cfg.LayerHeightFilters, &c.LayerHeightFilters},
		{"filament_filters", cfg.FilamentFilters, &c.FilamentFilters},
		{"generated_by_filters", cfg.GeneratedByFilters, &c.GeneratedByFilters},
		{"print_time_filters", cfg.PrintTimeFilters, &c.PrintTimeFilters},
		{"simulated_time_filters", cfg.SimulatedTimeFilters, &c.SimulatedTimeFilters},
	} {
		compiled, err := compileAll(group.name, group.src)
		if err != nil {
			return nil, err
		}
		*group.dst = compiled
	}

	return c, nil
}

func applyDefaults(cfg *Config) {
	if cfg.FileInfoReadBufferSize == 0 {
		cfg.FileInfoReadBufferSize = defaults.FileInfoReadBufferSize
	}
	if cfg.FileInfoReadLimitHeader == 0 {
		cfg.FileInfoReadLimitHeader = defaults.FileInfoReadLimitHeader
	}
	if cfg.FileInfoReadLimitFooter == 0 {
		cfg.FileInfoReadLimitFooter = defaults.FileInfoReadLimitFooter
	}
	if cfg.MaxLayerHeight == 0 {
		cfg.MaxLayerHeight = defaults.MaxLayerHeight
	}
}

func validatePositive(cfg Config) error {
	for _, field := range []struct {
		name string
		val  float64
	}{
		{"file_info_read_buffer_size", float64(cfg.FileInfoReadBufferSize)},
		{"file_info_read_limit_header", float64(cfg.FileInfoReadLimitHeader)},
		{"file_info_read_limit_footer", float64(cfg.FileInfoReadLimitFooter)},
		{"max_layer_height", cfg.MaxLayerHeight},
	} {
		if field.val <= 0 {
			return fmt.Errorf("config: %s must be positive, got %v", field.name, field.val)
		}
	}
	return nil
}

func compileAll(name string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("config: %s[%d] %q: %w", name, i, p, err)
		}
		out[i] = re
	}
	return out, nil
}
