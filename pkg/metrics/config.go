// Package metrics provides Prometheus metrics collection for event compilation.
package metrics

// Config holds configuration for the metrics module.
type Config struct {
	// Namespace is the prefix for all metrics (default: "eventc")
	Namespace string `json:"namespace" yaml:"namespace"`

	// DefaultLabels are applied to all metrics
	DefaultLabels map[string]string `json:"defaultLabels,omitempty" yaml:"defaultLabels,omitempty"`

	// EnableProcessMetrics enables Go process metrics (CPU, memory, goroutines)
	EnableProcessMetrics bool `json:"enableProcessMetrics" yaml:"enableProcessMetrics"`

	// EnableRuntimeMetrics enables Go runtime metrics
	EnableRuntimeMetrics bool `json:"enableRuntimeMetrics" yaml:"enableRuntimeMetrics"`

	// Textfile is where the CLI writes metrics after each run, in the
	// node_exporter textfile format. Empty disables writing.
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`

	// HistogramBuckets allows customizing default histogram buckets
	HistogramBuckets HistogramBucketsConfig `json:"-" yaml:"-"`
}

// HistogramBucketsConfig holds custom bucket configurations for different metric types.
type HistogramBucketsConfig struct {
	// CompileDuration buckets for compile duration in seconds
	CompileDuration []float64

	// SourceSize buckets for generated source size in bytes
	SourceSize []float64
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Namespace: "eventc",
		DefaultLabels: map[string]string{
			"version": "unknown",
		},
		HistogramBuckets: DefaultHistogramBuckets(),
	}
}

// DefaultHistogramBuckets returns the default histogram bucket configurations.
func DefaultHistogramBuckets() HistogramBucketsConfig {
	return HistogramBucketsConfig{
		CompileDuration: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		SourceSize:      []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576},
	}
}

// WithVersion sets the version label.
func (c Config) WithVersion(version string) Config {
	labels := make(map[string]string, len(c.DefaultLabels)+1)
	for k, v := range c.DefaultLabels {
		labels[k] = v
	}
	labels["version"] = version
	c.DefaultLabels = labels
	return c
}
