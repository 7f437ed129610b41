package metrics

import (
	"time"
)

// CompileMetrics provides methods to record compilation metrics.
type CompileMetrics struct {
	registry *Registry
}

// Compile returns the compile metrics interface for the registry.
func (r *Registry) Compile() *CompileMetrics {
	return &CompileMetrics{registry: r}
}

// CompileStatus represents the outcome of a compilation.
type CompileStatus string

const (
	CompileStatusSuccess CompileStatus = "success"
	// CompileStatusDiagnostics marks a compilation that produced code with
	// stubbed instructions or defects.
	CompileStatusDiagnostics CompileStatus = "diagnostics"
	CompileStatusFailure     CompileStatus = "failure"
	CompileStatusCached      CompileStatus = "cached"
)

// Counts is what one compilation went through.
type Counts struct {
	Events       int
	Instructions int
	Stubbed      int
	SourceBytes  int
	// Diagnostics maps severity names to counts.
	Diagnostics map[string]int
}

// RecordCompile records a finished compilation.
func (c *CompileMetrics) RecordCompile(status CompileStatus, duration time.Duration, counts Counts) {
	r := c.registry
	r.compilesTotal.WithLabelValues(string(status)).Inc()
	r.compileDuration.Observe(duration.Seconds())
	if status == CompileStatusFailure {
		return
	}
	r.sourceSize.Observe(float64(counts.SourceBytes))
	r.eventsTotal.Add(float64(counts.Events))
	r.instructionsTotal.Add(float64(counts.Instructions))
	r.stubbedTotal.Add(float64(counts.Stubbed))
	for severity, n := range counts.Diagnostics {
		if n > 0 {
			r.diagnosticsTotal.WithLabelValues(severity).Add(float64(n))
		}
	}
}

// RecordCacheLookup records a build cache hit or miss.
func (c *CompileMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.registry.cacheRequestsTotal.WithLabelValues(result).Inc()
}

// CompileTimer provides a convenient way to time compilations.
type CompileTimer struct {
	metrics *CompileMetrics
	start   time.Time
}

// NewTimer starts a compile timer.
func (c *CompileMetrics) NewTimer() *CompileTimer {
	return &CompileTimer{metrics: c, start: time.Now()}
}

// Done records the compilation with its elapsed time.
func (t *CompileTimer) Done(status CompileStatus, counts Counts) time.Duration {
	d := time.Since(t.start)
	t.metrics.RecordCompile(status, d, counts)
	return d
}

// Failure records a compilation that produced no program.
func (t *CompileTimer) Failure() time.Duration {
	return t.Done(CompileStatusFailure, Counts{})
}
