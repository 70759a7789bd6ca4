package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Sources are the inputs Load merges. Environ nil means the process
// environment.
type Sources struct {
	Flags   *Config
	Environ map[string]string
}

// Load merges flags, environment, the YAML file and defaults, then
// validates the result.
func Load(src Sources) (*Config, error) {
	return newBuilder().
		withFlags(src.Flags).
		withEnv(src.Environ).
		withFile().
		withDefaults().
		build()
}

type builder struct {
	configs []*Config
	err     error
}

func newBuilder() *builder {
	return &builder{configs: make([]*Config, 0, 4)}
}

// build merges layers in the order they were added; earlier layers win.
func (b *builder) build() (*Config, error) {
	if b.err != nil {
		return nil, fmt.Errorf("load configuration: %w", b.err)
	}

	cfg := new(Config)
	for _, layer := range b.configs {
		if err := mergo.Merge(cfg, layer); err != nil {
			return nil, fmt.Errorf("merge configuration: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (b *builder) withFlags(flags *Config) *builder {
	if flags != nil {
		b.configs = append(b.configs, flags)
	}
	return b
}

func (b *builder) withEnv(environ map[string]string) *builder {
	cfg := &Config{}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		b.err = errors.Join(b.err, fmt.Errorf("environment: %w", err))
		return b
	}
	b.configs = append(b.configs, cfg)
	return b
}

// withFile loads the YAML file named by the first layer that sets File.
func (b *builder) withFile() *builder {
	path := ""
	for _, cfg := range b.configs {
		if cfg.File != "" {
			path = cfg.File
			break
		}
	}
	if path == "" {
		return b
	}

	cfg, err := parseYAML(path)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs = append(b.configs, cfg)
	return b
}

func (b *builder) withDefaults() *builder {
	b.configs = append(b.configs, Defaults())
	return b
}

func parseYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
