package deadline

import "time"

// MetricsRecorder receives engine-level measurements.  The monitoring
// package provides the production implementation backed by Prometheus plus
// an in-process stats snapshot.
type MetricsRecorder interface {
	RecordCalculation(latency time.Duration)
	RecordStatusUpdate()
	RecordDependencyResolution(dependencyCount int)
	RecordAlert()
	RecordSweep(latency time.Duration)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) RecordCalculation(time.Duration)  {}
func (NopMetrics) RecordStatusUpdate()              {}
func (NopMetrics) RecordDependencyResolution(int)   {}
func (NopMetrics) RecordAlert()                     {}
func (NopMetrics) RecordSweep(time.Duration)        {}
