// Package config loads the converter configuration. Values are layered
// defaults < config file < environment; the CLI applies its flags last.
package config

import (
	"path/filepath"
	"runtime"
	"slices"

	"github.com/KirkDiggler/rpg-statblocks/internal/adjustments"
	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "STATBLOCKS_"

// Log settings accepted by Validate.
var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
)

// Config is the resolved configuration for one invocation.
type Config struct {
	ConfigFile string `env:"CONFIG_FILE"`
	InputDir   string `env:"INPUT_DIR"`
	OutputDir  string `env:"OUTPUT_DIR"`
	Workers    int    `env:"WORKERS"`
	DryRun     bool   `env:"DRY_RUN"`
	LogLevel   string `env:"LOG_LEVEL"`
	LogFormat  string `env:"LOG_FORMAT"`
	// RedisAddr enables the Redis ledger. Empty keeps the ledger in memory.
	RedisAddr string `env:"REDIS_ADDR"`
	// ImageDir overrides the monster image directory.
	ImageDir string `env:"IMAGE_DIR"`

	Categories map[string]*Category
}

// Category configures one input file and its output location. Paths are
// relative to InputDir and OutputDir unless absolute.
type Category struct {
	Input    string
	Output   string
	ImageDir string
	// Tags and Layout override the built-in template when set.
	Tags   []string
	Layout string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InputDir:  ".",
		OutputDir: ".",
		Workers:   runtime.NumCPU(),
		LogLevel:  "info",
		LogFormat: "text",
		Categories: map[string]*Category{
			adjustments.CategoryMonster: {
				Input:  "bestiary-sublist-data.json",
				Output: "Bestiary",
			},
			adjustments.CategorySpell: {
				Input:  "spells-sublist-data.json",
				Output: "Spells",
			},
			adjustments.CategoryWeapon: {
				Input:  "weapons-sublist-data.json",
				Output: "Items/Mundane/Weapons",
			},
			adjustments.CategoryMagicItem: {
				Input:  "magical-weapons-sublist-data.json",
				Output: "Items/Magical/Weapons",
			},
		},
	}
}

// Validate validates the Config
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("input_dir", c.InputDir, vb)
	errors.ValidateRequired("output_dir", c.OutputDir, vb)
	errors.ValidateMin("workers", c.Workers, 1, vb)
	errors.ValidateEnum("log_level", c.LogLevel, LogLevels, vb)
	errors.ValidateEnum("log_format", c.LogFormat, LogFormats, vb)

	if len(c.Categories) == 0 {
		vb.RequiredField("categories")
	}
	known := adjustments.Categories()
	for name, cat := range c.Categories {
		field := "categories." + name
		if !slices.Contains(known, name) {
			vb.Fieldf(field, "unknown category, must be one of: %v", known)
			continue
		}
		if cat == nil {
			vb.RequiredField(field)
			continue
		}
		errors.ValidateRequired(field+".input", cat.Input, vb)
		errors.ValidateRequired(field+".output", cat.Output, vb)
	}

	return vb.Build()
}

// Names returns the configured categories in processing order.
func (c *Config) Names() []string {
	var names []string
	for _, name := range adjustments.Categories() {
		if _, ok := c.Categories[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Category returns the named category or NotFound.
func (c *Config) Category(name string) (*Category, error) {
	cat, ok := c.Categories[name]
	if !ok || cat == nil {
		return nil, errors.NotFoundf("category %q is not configured", name).
			WithMeta("category", name)
	}
	return cat, nil
}

// InputPath returns the input file of the named category.
func (c *Config) InputPath(name string) (string, error) {
	cat, err := c.Category(name)
	if err != nil {
		return "", err
	}
	return resolve(c.InputDir, cat.Input), nil
}

// OutputPath returns the output directory of the named category.
func (c *Config) OutputPath(name string) (string, error) {
	cat, err := c.Category(name)
	if err != nil {
		return "", err
	}
	return resolve(c.OutputDir, cat.Output), nil
}

// ImagePath returns the image directory of the named category, or "" when
// none is configured.
func (c *Config) ImagePath(name string) (string, error) {
	cat, err := c.Category(name)
	if err != nil {
		return "", err
	}

	dir := cat.ImageDir
	if name == adjustments.CategoryMonster && c.ImageDir != "" {
		dir = c.ImageDir
	}
	if dir == "" {
		return "", nil
	}
	return resolve(c.OutputDir, dir), nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
