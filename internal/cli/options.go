// Package cli implements the commands of the halo binary on top of the library.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/halo/internal/config"
)

// Options are shared by every command.
type Options struct {
	// ConfigPath is an optional YAML file.
	ConfigPath string
	// Overrides are applied on top of the file, keyed like it.
	Overrides map[string]any
	Debug     bool
	Stdout    io.Writer
	Stderr    io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}

// LoadConfig merges the config file with the overrides, then decodes and validates
// the result.
func (o Options) LoadConfig() (config.Config, error) {
	cfg, err := o.decode()
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (o Options) decode() (config.Config, error) {
	raw, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	return config.Decode(config.Merge(raw, o.Overrides))
}

// setup loads the config and the logger. Commands that do not run a simulation
// skip validation.
func (o Options) setup(validate bool) (config.Config, *slog.Logger, error) {
	load := o.decode
	if validate {
		load = o.LoadConfig
	}
	cfg, err := load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := createLogger(o.stderr(), cfg.LogLevel, o.Debug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
