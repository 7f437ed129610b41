package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry manages all Prometheus metrics for eventc.
type Registry struct {
	config   Config
	registry *prometheus.Registry

	// Compile metrics
	compilesTotal     *prometheus.CounterVec
	compileDuration   prometheus.Histogram
	sourceSize        prometheus.Histogram
	eventsTotal       prometheus.Counter
	instructionsTotal prometheus.Counter
	stubbedTotal      prometheus.Counter
	diagnosticsTotal  *prometheus.CounterVec

	// Cache metrics
	cacheRequestsTotal *prometheus.CounterVec
}

// Global registry instance
var (
	globalRegistry *Registry
	mu             sync.Mutex
)

// NewRegistry creates a new metrics registry with the given configuration.
func NewRegistry(config Config) *Registry {
	if config.HistogramBuckets.CompileDuration == nil {
		config.HistogramBuckets.CompileDuration = DefaultHistogramBuckets().CompileDuration
	}
	if config.HistogramBuckets.SourceSize == nil {
		config.HistogramBuckets.SourceSize = DefaultHistogramBuckets().SourceSize
	}

	reg := prometheus.NewRegistry()
	r := &Registry{
		config:   config,
		registry: reg,
	}

	r.registerCompileMetrics()
	r.registerCacheMetrics()

	if config.EnableProcessMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if config.EnableRuntimeMetrics {
		reg.MustRegister(collectors.NewGoCollector())
	}

	return r
}

// Global returns the global registry instance, initializing it with default config if needed.
func Global() *Registry {
	mu.Lock()
	defer mu.Unlock()
	if globalRegistry == nil {
		globalRegistry = NewRegistry(DefaultConfig())
	}
	return globalRegistry
}

// SetGlobal sets the global registry instance.
func SetGlobal(r *Registry) {
	mu.Lock()
	defer mu.Unlock()
	globalRegistry = r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Config returns the registry configuration.
func (r *Registry) Config() Config {
	return r.config
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (r *Registry) WriteTextfile(path string) error {
	if path == "" {
		return errors.New("metrics textfile path is empty")
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func (r *Registry) registerCompileMetrics() {
	ns := r.config.Namespace
	labels := prometheus.Labels(r.config.DefaultLabels)

	r.compilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "compiles_total",
			Help:        "Total number of scene compilations",
			ConstLabels: labels,
		},
		[]string{"status"},
	)

	r.compileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   "compile",
			Name:        "duration_seconds",
			Help:        "Scene compilation duration in seconds",
			Buckets:     r.config.HistogramBuckets.CompileDuration,
			ConstLabels: labels,
		},
	)

	r.sourceSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   "compile",
			Name:        "source_bytes",
			Help:        "Size of generated source files in bytes",
			Buckets:     r.config.HistogramBuckets.SourceSize,
			ConstLabels: labels,
		},
	)

	r.eventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "compile",
			Name:        "events_total",
			Help:        "Total number of events compiled",
			ConstLabels: labels,
		},
	)

	r.instructionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "compile",
			Name:        "instructions_total",
			Help:        "Total number of conditions and actions compiled",
			ConstLabels: labels,
		},
	)

	r.stubbedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "compile",
			Name:        "stubbed_instructions_total",
			Help:        "Total number of instructions replaced by a stub",
			ConstLabels: labels,
		},
	)

	r.diagnosticsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "compile",
			Name:        "diagnostics_total",
			Help:        "Total number of diagnostics reported",
			ConstLabels: labels,
		},
		[]string{"severity"},
	)

	r.registry.MustRegister(
		r.compilesTotal,
		r.compileDuration,
		r.sourceSize,
		r.eventsTotal,
		r.instructionsTotal,
		r.stubbedTotal,
		r.diagnosticsTotal,
	)
}

func (r *Registry) registerCacheMetrics() {
	r.cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   r.config.Namespace,
			Subsystem:   "cache",
			Name:        "requests_total",
			Help:        "Total number of build cache lookups",
			ConstLabels: prometheus.Labels(r.config.DefaultLabels),
		},
		[]string{"result"},
	)

	r.registry.MustRegister(r.cacheRequestsTotal)
}
