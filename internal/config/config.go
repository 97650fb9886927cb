// Package config holds the settings of one extension run and resolves them
// from defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/ephemeris-extender/internal/rinex"
)

const (
	DefaultSuffix      = "_eem"
	DefaultOffsetHours = 2.0
)

var (
	ErrNoInput          = errors.New("no input file given")
	ErrOutputAndWorkdir = errors.New("output and workdir are mutually exclusive")
	ErrInvalidOffset    = errors.New("offset must be a finite number of hours")
)

// Config describes one extension run.
type Config struct {
	Input       string  `yaml:"input"`
	Output      string  `yaml:"output"`
	Workdir     string  `yaml:"workdir"`
	Suffix      string  `yaml:"suffix"`
	OffsetHours float64 `yaml:"offset_hours"`

	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the run logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// MetricsConfig configures the metrics textfile written after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Suffix:      DefaultSuffix,
		OffsetHours: DefaultOffsetHours,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path, if any, and
// then with environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from EPHEXT_* and LOG_* environment variables.
func (c *Config) ApplyEnv() error {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(&c.Input, "EPHEXT_INPUT")
	setString(&c.Output, "EPHEXT_OUTPUT")
	setString(&c.Workdir, "EPHEXT_WORKDIR")
	setString(&c.Suffix, "EPHEXT_SUFFIX")
	setString(&c.Metrics.Textfile, "EPHEXT_METRICS_TEXTFILE")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")

	if raw := strings.TrimSpace(os.Getenv("EPHEXT_OFFSET_HOURS")); raw != "" {
		h, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("EPHEXT_OFFSET_HOURS %q: %w", raw, ErrInvalidOffset)
		}
		c.OffsetHours = h
	}
	return nil
}

// Validate reports whether the config describes a runnable extension.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return ErrNoInput
	}
	if math.IsNaN(c.OffsetHours) || math.IsInf(c.OffsetHours, 0) {
		return ErrInvalidOffset
	}
	if c.Output != "" && c.Workdir != "" {
		return ErrOutputAndWorkdir
	}
	return nil
}

// Offset returns the configured offset.
func (c *Config) Offset() rinex.Offset {
	return rinex.OffsetFromHours(c.OffsetHours)
}

// OutputPath returns where the extended file is written: the explicit output
// if set, otherwise <dir>/<stem><suffix><ext> where dir is the workdir or the
// input's directory.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	dir := c.Workdir
	if dir == "" {
		dir = filepath.Dir(c.Input)
	}
	base := filepath.Base(c.Input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		// dotfile such as ".24n" has no extension
		stem, ext = base, ""
	}
	return filepath.Join(dir, stem+c.Suffix+ext)
}

// EnsureOutputDir creates the workdir when one is configured.
func (c *Config) EnsureOutputDir() error {
	if c.Workdir == "" {
		return nil
	}
	if err := os.MkdirAll(c.Workdir, 0o755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	return nil
}

// Builder assembles a Config in code.
type Builder struct {
	cfg Config
}

// NewBuilder starts from the defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: *Default()}
}

func (b *Builder) Input(path string) *Builder        { b.cfg.Input = path; return b }
func (b *Builder) Output(path string) *Builder       { b.cfg.Output = path; return b }
func (b *Builder) Workdir(dir string) *Builder       { b.cfg.Workdir = dir; return b }
func (b *Builder) Suffix(s string) *Builder          { b.cfg.Suffix = s; return b }
func (b *Builder) OffsetHours(h float64) *Builder    { b.cfg.OffsetHours = h; return b }
func (b *Builder) MetricsTextfile(p string) *Builder { b.cfg.Metrics.Textfile = p; return b }

// Build validates and returns the assembled Config.
func (b *Builder) Build() (*Config, error) {
	cfg := b.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
