// Package config loads clonetree run configuration from TOML.
//
// A configuration file has four optional sections:
//
//	[model]
//	error_margin   = 0.08
//	root_aaf       = 1.0
//	keep_shortcuts = false
//	all_levels     = false
//
//	[enumeration]
//	max_trees = 0        # 0 = unbounded
//	timeout   = "5m"
//
//	[input]
//	min_aaf         = 0.04
//	min_robust_size = 4
//
//	[cache]
//	backend    = "file"  # file, redis or none
//	redis_addr = "localhost:6379"
//	ttl        = "168h"
//
// Missing keys keep their defaults. Unknown keys are rejected so typos do
// not silently fall back to defaults.
package config

import (
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/clonetree/pkg/errors"
	cio "github.com/matzehuels/clonetree/pkg/io"
	"github.com/matzehuels/clonetree/pkg/phylo"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "clonetree.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is a complete run configuration.
type Config struct {
	Model       Model       `toml:"model"`
	Enumeration Enumeration `toml:"enumeration"`
	Input       Input       `toml:"input"`
	Cache       Cache       `toml:"cache"`
}

// Model configures constraint-network construction.
type Model struct {
	ErrorMargin   float64 `toml:"error_margin"`
	RootAAF       float64 `toml:"root_aaf"`
	KeepShortcuts bool    `toml:"keep_shortcuts"`
	AllLevels     bool    `toml:"all_levels"`
}

// Enumeration bounds the spanning-tree enumeration.
type Enumeration struct {
	MaxTrees int      `toml:"max_trees"`
	Timeout  Duration `toml:"timeout"`
}

// Input configures mutation-table import.
type Input struct {
	MinAAF        float64 `toml:"min_aaf"`
	MinRobustSize int     `toml:"min_robust_size"`
}

// Cache selects the result cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a Go duration string ("90s").
type Duration struct{ time.Duration }

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model: Model{
			ErrorMargin: phylo.DefaultErrorMargin,
			RootAAF:     phylo.DefaultRootAAF,
		},
		Enumeration: Enumeration{Timeout: Duration{5 * time.Minute}},
		Input: Input{
			MinAAF:        cio.DefaultMinAAF,
			MinRobustSize: cio.DefaultMinRobustSize,
		},
		Cache: Cache{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			Prefix:    "clonetree:",
			TTL:       Duration{7 * 24 * time.Hour},
		},
	}
}

// Load reads path on top of the defaults. A missing file yields
// FILE_NOT_FOUND.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open config %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// LoadOptional loads path when it exists and returns the defaults
// otherwise.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Decode reads TOML from r on top of the defaults and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := c.BuildOptions().WithDefaults().Validate(); err != nil {
		return err
	}
	if c.Enumeration.MaxTrees < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "enumeration.max_trees must be >= 0, got %d", c.Enumeration.MaxTrees)
	}
	if c.Enumeration.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "enumeration.timeout must be >= 0")
	}
	if c.Input.MinAAF < 0 || c.Input.MinAAF >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "input.min_aaf must be in [0, 1), got %g", c.Input.MinAAF)
	}
	if c.Input.MinRobustSize < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "input.min_robust_size must be >= 0")
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	return nil
}

// BuildOptions returns the network construction options.
func (c Config) BuildOptions() phylo.BuildOptions {
	return phylo.BuildOptions{
		ErrorMargin:   c.Model.ErrorMargin,
		RootAAF:       c.Model.RootAAF,
		KeepShortcuts: c.Model.KeepShortcuts,
		AllLevels:     c.Model.AllLevels,
	}
}

// TableOptions returns the mutation-table import options.
func (c Config) TableOptions() cio.TableOptions {
	return cio.TableOptions{MinAAF: c.Input.MinAAF, MinRobustSize: c.Input.MinRobustSize}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
