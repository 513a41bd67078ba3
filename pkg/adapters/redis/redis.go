// Package redis provides the Redis-backed transport, snapshot store and rank claimer.
// It lets ranks living in separate OS processes form one run.
package redis

import (
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "halo:"

type settings struct {
	prefix string
	runID  string
	ttl    time.Duration
	poll   time.Duration
}

func defaults() settings {
	return settings{
		prefix: DefaultPrefix,
		runID:  "default",
		poll:   time.Second,
	}
}

// ns is the key namespace of one run.
func (s settings) ns() string {
	return s.prefix + s.runID + ":"
}

// Option configures the adapters of this package.
type Option func(*settings)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithRunID isolates the keys of one run from every other run sharing the server.
func WithRunID(id string) Option {
	return func(s *settings) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithTTL sets the expiration of written keys. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		s.ttl = ttl
	}
}

// WithPollInterval bounds how long a blocking pop waits before the context is checked again.
// Redis counts blocking timeouts in whole seconds.
func WithPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.poll = d
		}
	}
}

func apply(opts []Option) settings {
	s := defaults()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewClient connects to address. Context deadlines bound blocking commands.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:                  address,
		Password:              password,
		DB:                    db,
		ContextTimeoutEnabled: true,
	})
}
