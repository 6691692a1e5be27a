package curator

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	permMin   int
	permMax   int
	permNames []string

	maxRecords      int
	defaultMaxCount int
	maxCountCap     int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPermissionRange uses the unnamed levels [minLevel, maxLevel].
// Default: [1, 3].
func WithPermissionRange(minLevel, maxLevel int) Option {
	return optionFunc(func(c *clientConfig) {
		c.permMin = minLevel
		c.permMax = maxLevel
		c.permNames = nil
	})
}

// WithPermissionNames uses named levels, lowest first, numbered from 1.
func WithPermissionNames(names ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.permNames = names
	})
}

// WithMaxRecords bounds the input size of a single run.
// Default: 10000.
func WithMaxRecords(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRecords = n
	})
}

// WithMaxCount sets the default result count and its upper bound.
// Defaults: 20 and 100.
func WithMaxCount(defaultCount, maxCap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultMaxCount = defaultCount
		c.maxCountCap = maxCap
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
