package blockarena

import (
	"github.com/hupe1980/blockarena/provider"
	"github.com/hupe1980/blockarena/resource"
)

type options struct {
	provider          provider.Provider
	controller        *resource.Controller
	logger            *Logger
	metricsCollector  MetricsCollector
	parallelThreshold int
}

func defaultOptions() options {
	return options{
		provider:         provider.Anon(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures an Arena.
type Option func(*options)

// WithProvider sets the raw buffer provider.
//
// The default is provider.Anon(), which keeps the arena buffer off the Go
// heap. If nil is passed, the default is used.
func WithProvider(p provider.Provider) Option {
	return func(o *options) {
		if p == nil {
			p = provider.Anon()
		}
		o.provider = p
	}
}

// WithResourceController shares memory, worker and IO limits with other arenas.
//
// The arena's capacity is charged against the controller's memory limit for
// its whole lifetime. Zero-fill and data moves borrow worker slots from it,
// and Block.WriteTo is throttled by its IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithParallelThreshold sets the smallest byte range that zero-fill and
// data moves split across goroutines. Values <= 0 select the default (256 KiB).
func WithParallelThreshold(bytes int) Option {
	return func(o *options) {
		o.parallelThreshold = bytes
	}
}

type allocateOptions struct {
	clear bool
}

// AllocateOption configures a single Allocate call.
type AllocateOption func(*allocateOptions)

// WithoutClear skips zero-filling the new block. Its bytes then hold
// whatever the arena buffer contained at that position.
func WithoutClear() AllocateOption {
	return func(o *allocateOptions) {
		o.clear = false
	}
}
