// Package config loads and validates the settings of a run.
//
// Values come from an optional YAML file overlaid with command-line flags; both
// are plain maps merged before a single decode into Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/aretw0/halo/pkg/domain"
	"github.com/aretw0/halo/pkg/exchange"
	"github.com/aretw0/halo/pkg/grid"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Transport names.
const (
	TransportMemory = "memory"
	TransportRedis  = "redis"
)

// RedisConfig locates the server backing the redis transport and snapshot store.
type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Prefix   string        `yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// Config is everything a run needs.
type Config struct {
	BoardSize  int            `yaml:"board_size" mapstructure:"board_size"`
	Iterations int            `yaml:"iterations" mapstructure:"iterations"`
	Pattern    domain.Pattern `yaml:"init_pattern" mapstructure:"init_pattern"`
	// OutputDirectory enables PGM snapshots.
	OutputDirectory string `yaml:"output_directory" mapstructure:"output_directory"`
	// Processes counts every rank, aggregator included.
	Processes int  `yaml:"processes" mapstructure:"processes"`
	Serial    bool `yaml:"serial" mapstructure:"serial"`

	Strategy  string      `yaml:"strategy" mapstructure:"strategy"`
	Kernel    string      `yaml:"kernel" mapstructure:"kernel"`
	Threads   int         `yaml:"threads" mapstructure:"threads"`
	Transport string      `yaml:"transport" mapstructure:"transport"`
	Redis     RedisConfig `yaml:"redis" mapstructure:"redis"`

	// Listen serves snapshots and metrics over HTTP while the run executes.
	Listen      string `yaml:"listen" mapstructure:"listen"`
	// PrintBoards prints every snapshot to stdout.
	PrintBoards bool   `yaml:"print_boards" mapstructure:"print_boards"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
}

// Defaults returns the configuration used for every key left unset.
func Defaults() Config {
	return Config{
		Pattern:   domain.PatternLine,
		Processes: 2,
		Strategy:  exchange.StrategyAsync,
		Kernel:    "sequential",
		Transport: TransportMemory,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "halo:",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML file into a raw map. An empty path yields an empty map.
func Load(path string) (map[string]any, error) {
	raw := map[string]any{}
	if path == "" {
		return raw, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Merge overlays src onto dst, descending into nested maps, and returns dst.
func Merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if cur, ok := dst[k].(map[string]any); ok {
				dst[k] = Merge(cur, sub)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

// Decode turns a raw map into a Config on top of Defaults. Unknown keys are errors.
func Decode(raw map[string]any) (Config, error) {
	cfg := Defaults()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			patternHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return cfg, nil
}

var patternType = reflect.TypeOf(domain.Pattern(0))

func patternHook(from, to reflect.Type, data any) (any, error) {
	if to != patternType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return domain.ParsePattern(v)
	case int:
		return domain.ParsePattern(strconv.Itoa(v))
	case domain.Pattern:
		return v, nil
	}
	return data, nil
}

// Verbose reports whether snapshots are aggregated, which reserves one rank for the
// aggregator.
func (c Config) Verbose() bool {
	return c.OutputDirectory != "" || c.PrintBoards
}

// Workers is the number of ranks computing blocks.
func (c Config) Workers() int {
	switch {
	case c.Serial:
		return 1
	case c.Verbose():
		return c.Processes - 1
	}
	return c.Processes
}

// Validate rejects configurations that cannot run, before any state is created.
func (c Config) Validate() error {
	var errs []error
	if c.BoardSize <= 0 {
		errs = append(errs, fmt.Errorf("board_size must be positive, got %d", c.BoardSize))
	}
	if c.Iterations < 0 {
		errs = append(errs, fmt.Errorf("iterations must not be negative, got %d", c.Iterations))
	}
	if !c.Pattern.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", domain.ErrUnknownPattern, int(c.Pattern)))
	}
	if c.Strategy != exchange.StrategySync && c.Strategy != exchange.StrategyAsync {
		errs = append(errs, fmt.Errorf("unknown strategy %q", c.Strategy))
	}
	if _, ok := grid.StrategyByName(c.Kernel, c.Threads); !ok {
		errs = append(errs, fmt.Errorf("unknown kernel %q", c.Kernel))
	}
	if c.Threads < 0 {
		errs = append(errs, fmt.Errorf("threads must not be negative, got %d", c.Threads))
	}
	if c.Transport != TransportMemory && c.Transport != TransportRedis {
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}

	if !c.Serial {
		if c.Verbose() && c.Processes < 3 {
			return fmt.Errorf("%w: writing snapshots needs at least 3 processes, got %d", domain.ErrInsufficientProcesses, c.Processes)
		}
		if c.Processes < 2 {
			return fmt.Errorf("%w: at least 2 processes are needed, got %d", domain.ErrInsufficientProcesses, c.Processes)
		}
	}
	if c.BoardSize < c.Workers() {
		return fmt.Errorf("%w: board_size %d is smaller than the %d workers", domain.ErrInvalidConfig, c.BoardSize, c.Workers())
	}
	return nil
}
