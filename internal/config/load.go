package config

import (
	"bytes"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
)

// fileDocument mirrors the YAML file. Pointers tell an absent key apart
// from a zero value so the file only overrides what it sets.
type fileDocument struct {
	InputDir   *string                      `yaml:"input_dir"`
	OutputDir  *string                      `yaml:"output_dir"`
	Workers    *int                         `yaml:"workers"`
	DryRun     *bool                        `yaml:"dry_run"`
	LogLevel   *string                      `yaml:"log_level"`
	LogFormat  *string                      `yaml:"log_format"`
	RedisAddr  *string                      `yaml:"redis_addr"`
	ImageDir   *string                      `yaml:"image_dir"`
	Categories map[string]*categoryDocument `yaml:"categories"`
}

type categoryDocument struct {
	Input    *string  `yaml:"input"`
	Output   *string  `yaml:"output"`
	ImageDir *string  `yaml:"image_dir"`
	Tags     []string `yaml:"tags"`
	Layout   *string  `yaml:"layout"`
}

// LoadInput selects the sources Load reads.
type LoadInput struct {
	// ConfigFile takes precedence over STATBLOCKS_CONFIG_FILE.
	ConfigFile string
	// Environ replaces the process environment when set.
	Environ map[string]string
}

// Load builds and validates a Config from defaults, the optional config
// file and the environment.
func Load(input *LoadInput) (*Config, error) {
	if input == nil {
		input = &LoadInput{}
	}

	environ := input.Environ
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}

	cfg := Default()

	path := input.ConfigFile
	if path == "" {
		path = environ[EnvPrefix+"CONFIG_FILE"]
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if input.ConfigFile != "" {
		cfg.ConfigFile = input.ConfigFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundf("config file %s does not exist", path).WithMeta("path", path)
		}
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	if err := c.Merge(bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "invalid config file %s", path)
	}
	c.ConfigFile = path
	return nil
}

// Merge applies a YAML config document on top of c. Unknown keys are
// rejected.
func (c *Config) Merge(r io.Reader) error {
	var doc fileDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode config")
	}

	setString(&c.InputDir, doc.InputDir)
	setString(&c.OutputDir, doc.OutputDir)
	setString(&c.LogLevel, doc.LogLevel)
	setString(&c.LogFormat, doc.LogFormat)
	setString(&c.RedisAddr, doc.RedisAddr)
	setString(&c.ImageDir, doc.ImageDir)
	if doc.Workers != nil {
		c.Workers = *doc.Workers
	}
	if doc.DryRun != nil {
		c.DryRun = *doc.DryRun
	}

	if c.Categories == nil {
		c.Categories = make(map[string]*Category)
	}
	for name, override := range doc.Categories {
		cat, ok := c.Categories[name]
		if !ok || cat == nil {
			cat = &Category{}
			c.Categories[name] = cat
		}
		if override == nil {
			continue
		}
		setString(&cat.Input, override.Input)
		setString(&cat.Output, override.Output)
		setString(&cat.ImageDir, override.ImageDir)
		setString(&cat.Layout, override.Layout)
		if override.Tags != nil {
			cat.Tags = override.Tags
		}
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
