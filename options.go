package knnspace

import (
	"log/slog"

	"github.com/hupe1980/knnspace/resource"
	"github.com/hupe1980/knnspace/version"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	localVersion     version.Version
	controller       *resource.Controller
	concurrency      int
}

// Option configures a Core.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := knnspace.NewJSONLogger(slog.LevelInfo)
//	core := knnspace.New(provider, knnspace.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
//	metrics := &knnspace.BasicMetricsCollector{}
//	core := knnspace.New(provider, knnspace.WithMetricsCollector(metrics))
//	// ...
//	fmt.Println(metrics.GetStats().VersionFallbacks)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLocalVersion sets the version this process runs. It is the fallback
// when the cluster's minimum version cannot be determined.
// Defaults to version.Current().
func WithLocalVersion(v version.Version) Option {
	return func(o *options) {
		o.localVersion = v
	}
}

// WithResourceController bounds calls into the cluster-state provider.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithConcurrency limits how many fields are resolved in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		localVersion:     version.Current(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
