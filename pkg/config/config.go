// Package config loads stripweave settings from YAML or TOML files and the
// environment.
//
// A configuration file holds one section, normally named stripweave:
//
//	stripweave:
//	  image_path: photo.png
//	  step: 8
//	  remainder: keep
//	  cache:
//	    redis_url: redis://localhost:6379/0
//
// Files written for the earlier numpy_basics tool are read unchanged; that
// section name is accepted when no stripweave section is present, and its
// step may be a quoted integer.
//
// Values are layered: defaults, then the file, then STRIPWEAVE_* environment
// variables. Command-line flags are applied last by the CLI.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stripweave/pkg/errors"
	imageio "github.com/matzehuels/stripweave/pkg/io"
	"github.com/matzehuels/stripweave/pkg/recompose"
)

// Section names, in lookup order.
const (
	Section       = "stripweave"
	LegacySection = "numpy_basics"
)

// Environment variables that override file values.
const (
	EnvImagePath = "STRIPWEAVE_IMAGE_PATH"
	EnvStep      = "STRIPWEAVE_STEP"
	EnvRedisURL  = "STRIPWEAVE_REDIS_URL"
)

// Candidates are the files tried, relative to the working directory, when no
// explicit path is given.
var Candidates = []string{
	"stripweave.yaml",
	"stripweave.yml",
	"stripweave.toml",
	"config.yaml",
}

// Config is the full set of user settings.
type Config struct {
	ImagePath    string      `yaml:"image_path" toml:"image_path"`
	Step         Step        `yaml:"step" toml:"step"`
	Output       string      `yaml:"output" toml:"output"`
	Format       string      `yaml:"format" toml:"format"`
	Remainder    string      `yaml:"remainder" toml:"remainder"`
	MaxStepRatio float64     `yaml:"max_step_ratio" toml:"max_step_ratio"`
	Labels       bool        `yaml:"labels" toml:"labels"`
	Workers      int         `yaml:"workers" toml:"workers"`
	Cache        CacheConfig `yaml:"cache" toml:"cache"`
}

// CacheConfig selects and scopes the artifact cache.
type CacheConfig struct {
	Disabled  bool   `yaml:"disabled" toml:"disabled"`
	Dir       string `yaml:"dir" toml:"dir"`
	RedisURL  string `yaml:"redis_url" toml:"redis_url"`
	Namespace string `yaml:"namespace" toml:"namespace"`
}

type document struct {
	Stripweave  *Config `yaml:"stripweave" toml:"stripweave"`
	NumpyBasics *Config `yaml:"numpy_basics" toml:"numpy_basics"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{Remainder: recompose.DefaultRemainder}
}

// Load reads configuration from path, or from the first existing candidate
// when path is empty, and applies environment overrides. It returns the file
// that was read, or "" when none was found.
//
// An explicit path that does not exist is an error; missing candidates are
// not.
func Load(path string) (Config, string, error) {
	cfg := Default()

	if path == "" {
		path = findCandidate()
	} else if _, err := os.Stat(path); err != nil {
		return cfg, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if path != "" {
		parsed, err := ParseFile(path)
		if err != nil {
			return cfg, "", err
		}
		Merge(&cfg, parsed)
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

func findCandidate() string {
	for _, c := range Candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// ParseFile reads the file at path as TOML when it ends in .toml and as YAML
// otherwise.
func ParseFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "read config %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a YAML document and returns its configuration section.
// Keys outside the section are ignored.
func ParseYAML(data []byte) (Config, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse yaml config")
	}
	return doc.section()
}

// ParseTOML decodes a TOML document and returns its configuration section.
// Keys outside the section are ignored.
func ParseTOML(data []byte) (Config, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse toml config")
	}
	return doc.section()
}

func (d document) section() (Config, error) {
	switch {
	case d.Stripweave != nil:
		return *d.Stripweave, nil
	case d.NumpyBasics != nil:
		return *d.NumpyBasics, nil
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidConfiguration,
			"config has no %q or %q section", Section, LegacySection)
	}
}

// Merge copies every field set in src onto dst.
func Merge(dst *Config, src Config) {
	if src.ImagePath != "" {
		dst.ImagePath = src.ImagePath
	}
	if src.Step != 0 {
		dst.Step = src.Step
	}
	if src.Output != "" {
		dst.Output = src.Output
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Remainder != "" {
		dst.Remainder = src.Remainder
	}
	if src.MaxStepRatio != 0 {
		dst.MaxStepRatio = src.MaxStepRatio
	}
	if src.Labels {
		dst.Labels = true
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.Cache.Disabled {
		dst.Cache.Disabled = true
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.RedisURL != "" {
		dst.Cache.RedisURL = src.Cache.RedisURL
	}
	if src.Cache.Namespace != "" {
		dst.Cache.Namespace = src.Cache.Namespace
	}
}

// ApplyEnvOverrides replaces values with any STRIPWEAVE_* variables set in
// the environment.
func ApplyEnvOverrides(cfg *Config) error {
	if path := strings.TrimSpace(os.Getenv(EnvImagePath)); path != "" {
		cfg.ImagePath = path
	}
	if url := strings.TrimSpace(os.Getenv(EnvRedisURL)); url != "" {
		cfg.Cache.RedisURL = url
	}

	raw := strings.TrimSpace(os.Getenv(EnvStep))
	if raw == "" {
		return nil
	}
	step, err := ParseStep(raw)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "%s", EnvStep)
	}
	cfg.Step = step
	return nil
}

// Validate checks every setting needed to run a recomposition.
func (c Config) Validate() error {
	if err := errors.ValidateImagePath(c.ImagePath); err != nil {
		return err
	}
	if c.Format != "" {
		if _, err := imageio.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	return c.Params().Validate()
}

// Params returns the recomposition parameters held by c.
func (c Config) Params() recompose.Params {
	return recompose.Params{
		Step:         int(c.Step),
		Remainder:    c.Remainder,
		MaxStepRatio: c.MaxStepRatio,
		Workers:      c.Workers,
	}
}
