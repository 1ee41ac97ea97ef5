// Package config loads and merges gofind's configuration from built-in
// defaults, an optional TOML or YAML file, environment variables, and
// CLI flags, in that precedence order. It follows the same low-to-high
// precedence chain as the teacher's internal/config/layer and
// internal/config/loader packages, but that machinery is built around
// an editor's dynamically-typed, per-source settings registry (schema
// validation, live file watching, a generic key/value layer stack) with
// no equivalent need here: gofind has one small, fixed Config struct, so
// Load below is a fresh, direct implementation of the same
// defaults-then-file-then-env-then-flags idea rather than a port of
// that machinery.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/gofind/internal/fuzzy"
)

// Config is gofind's full runtime configuration surface (SPEC_FULL.md
// §6, §10).
type Config struct {
	Source      string            `toml:"source" yaml:"source"`
	Query       string            `toml:"query" yaml:"query"`
	Case        string            `toml:"case" yaml:"case"`
	Preview     string            `toml:"preview" yaml:"preview"`
	Bindings    map[string]string `toml:"bind" yaml:"bind"`
	Multi       bool              `toml:"multi" yaml:"multi"`
	Height      string            `toml:"height" yaml:"height"`
	MinHeight   int               `toml:"min_height" yaml:"min_height"`
	Mouse       bool              `toml:"mouse" yaml:"mouse"`
	Select1     bool              `toml:"select_1" yaml:"select_1"`
	Watch       string            `toml:"watch" yaml:"watch"`
	LogLevel    string            `toml:"log_level" yaml:"log_level"`
	ScoreScript string            `toml:"score_script" yaml:"score_script"`

	// Raw holds power-user overrides not modeled above, round-tripped
	// verbatim as a JSON fragment (see raw.go).
	Raw string `toml:"-" yaml:"-"`
}

// Default returns gofind's built-in default configuration.
func Default() Config {
	return Config{
		Case:      "smart",
		Height:    "100%",
		MinHeight: 3,
		LogLevel:  "info",
		Bindings: map[string]string{
			"enter":     "accept",
			"ctrl-c":    "abort",
			"esc":       "abort",
			"up":        "up",
			"down":      "down",
			"ctrl-k":    "up",
			"ctrl-j":    "down",
			"pgup":      "page-up",
			"pgdn":      "page-down",
			"tab":       "toggle-select",
			"backspace": "backspace",
			"ctrl-p":    "invoke-preview",
		},
	}
}

// CaseMode converts the string Case field to a fuzzy.CaseMode,
// defaulting to CaseSmart on an unrecognized value.
func (c Config) CaseMode() fuzzy.CaseMode {
	switch strings.ToLower(c.Case) {
	case "respect":
		return fuzzy.CaseRespect
	case "ignore":
		return fuzzy.CaseIgnore
	default:
		return fuzzy.CaseSmart
	}
}

// Merge overlays non-zero fields of other onto c, returning the result.
// Maps are merged key-by-key so a partial --bind override doesn't
// discard the rest of the bindings (mirrors the teacher's DeepMerge).
func (c Config) Merge(other Config) Config {
	if other.Source != "" {
		c.Source = other.Source
	}
	if other.Query != "" {
		c.Query = other.Query
	}
	if other.Case != "" {
		c.Case = other.Case
	}
	if other.Preview != "" {
		c.Preview = other.Preview
	}
	if other.Height != "" {
		c.Height = other.Height
	}
	if other.MinHeight != 0 {
		c.MinHeight = other.MinHeight
	}
	if other.Watch != "" {
		c.Watch = other.Watch
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ScoreScript != "" {
		c.ScoreScript = other.ScoreScript
	}
	if other.Multi {
		c.Multi = true
	}
	if other.Mouse {
		c.Mouse = true
	}
	if other.Select1 {
		c.Select1 = true
	}
	if other.Raw != "" {
		c.Raw = other.Raw
	}
	if len(other.Bindings) > 0 {
		if c.Bindings == nil {
			c.Bindings = make(map[string]string, len(other.Bindings))
		}
		for k, v := range other.Bindings {
			c.Bindings[k] = v
		}
	}
	return c
}

// Load builds the effective Config: defaults, then an optional config
// file (TOML or YAML, chosen by extension), then environment variables,
// then flags, each layer overriding the last (SPEC_FULL.md §10).
func Load(configPath string, flags Config) (Config, error) {
	cfg := Default()

	if configPath != "" {
		fileCfg, err := loadFile(configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}

	cfg = cfg.Merge(loadEnv())
	cfg = cfg.Merge(flags)
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing TOML config %s: %w", path, err)
		}
	}
	return cfg, nil
}

const envPrefix = "GOFIND_"

// loadEnv scans GOFIND_-prefixed environment variables into a Config.
// Unlike the teacher's internal/config/loader.EnvLoader, which maps an
// open-ended settings registry by reflection, this is a fixed,
// hand-written field list: SOURCE, QUERY, CASE, PREVIEW, HEIGHT,
// LOG_LEVEL, SCORE_SCRIPT, MULTI and MOUSE. Bindings, MinHeight,
// Select1, Watch and Raw are not read from the environment.
func loadEnv() Config {
	var cfg Config
	lookup := func(name string) (string, bool) { return os.LookupEnv(envPrefix + name) }

	if v, ok := lookup("SOURCE"); ok {
		cfg.Source = v
	}
	if v, ok := lookup("QUERY"); ok {
		cfg.Query = v
	}
	if v, ok := lookup("CASE"); ok {
		cfg.Case = v
	}
	if v, ok := lookup("PREVIEW"); ok {
		cfg.Preview = v
	}
	if v, ok := lookup("HEIGHT"); ok {
		cfg.Height = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup("SCORE_SCRIPT"); ok {
		cfg.ScoreScript = v
	}
	if v, ok := lookup("MULTI"); ok {
		cfg.Multi = isTruthy(v)
	}
	if v, ok := lookup("MOUSE"); ok {
		cfg.Mouse = isTruthy(v)
	}
	return cfg
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
