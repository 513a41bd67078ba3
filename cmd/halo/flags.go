package main

import (
	"fmt"

	"github.com/aretw0/halo/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const runArgs = "<size> <iterations> <type> [output_dir]"

// positional maps the classic argument list onto config keys.
var positional = []string{"board_size", "iterations", "init_pattern", "output_directory"}

// runFlags maps flag names onto config keys.
var runFlags = map[string]string{
	"np":             "processes",
	"strategy":       "strategy",
	"kernel":         "kernel",
	"threads":        "threads",
	"transport":      "transport",
	"serial":         "serial",
	"print-boards":   "print_boards",
	"log-level":      "log_level",
	"listen":         "listen",
	"redis-addr":     "redis.addr",
	"redis-password": "redis.password",
	"redis-db":       "redis.db",
	"redis-prefix":   "redis.prefix",
	"redis-ttl":      "redis.ttl",
}

func addRunFlags(fs *pflag.FlagSet) {
	d := config.Defaults()
	fs.IntP("np", "n", d.Processes, "Number of processes, aggregator included")
	fs.String("strategy", d.Strategy, "Halo exchange strategy: sync or async")
	fs.String("kernel", d.Kernel, "Interior update kernel: sequential or parallel")
	fs.Int("threads", 0, "Goroutines of the parallel kernel (0 = GOMAXPROCS)")
	fs.Bool("serial", false, "Advance a single grid without ranks")
	fs.Bool("print-boards", false, "Print every generation to stdout")
	fs.String("log-level", d.LogLevel, "Log level: debug, info, warn or error")
	addRedisFlags(fs)
}

func addRedisFlags(fs *pflag.FlagSet) {
	d := config.Defaults()
	fs.String("transport", d.Transport, "Rank transport: memory or redis")
	fs.String("redis-addr", d.Redis.Addr, "Redis address")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database")
	fs.String("redis-prefix", d.Redis.Prefix, "Prefix of every Redis key")
	fs.Duration("redis-ttl", 0, "Expiration of Redis keys (0 = never)")
}

// overrides collects the positional arguments and the flags set on the command line.
// Unset flags are left out so the config file and the defaults apply.
func overrides(cmd *cobra.Command, args []string) (map[string]any, error) {
	if len(args) > len(positional) {
		return nil, fmt.Errorf("expected %s, got %d arguments", runArgs, len(args))
	}
	out := map[string]any{}
	for i, arg := range args {
		out[positional[i]] = arg
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := runFlags[f.Name]
		if !ok {
			return
		}
		set(out, key, f.Value.String())
	})
	return out, nil
}

// forwarded rebuilds the arguments a child process needs to see the same run.
func forwarded(cmd *cobra.Command, args []string) []string {
	out := append([]string(nil), args...)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if _, ok := runFlags[f.Name]; ok && f.Name != "np" {
			out = append(out, fmt.Sprintf("--%s=%s", f.Name, f.Value.String()))
		}
	})
	return out
}

// set writes a dotted key into nested maps.
func set(m map[string]any, key, value string) {
	for i := 0; i < len(key); i++ {
		if key[i] != '.' {
			continue
		}
		sub, ok := m[key[:i]].(map[string]any)
		if !ok {
			sub = map[string]any{}
			m[key[:i]] = sub
		}
		set(sub, key[i+1:], value)
		return
	}
	m[key] = value
}
