package prometheus

import (
	"sync"
	"time"
)

// EngineMetrics records deadline-engine measurements twice over: into
// Prometheus for scraping, and into in-process counters served by the
// /stats endpoint, including a running average of calculation latency.
type EngineMetrics struct {
	calculations CounterVec
	updates      CounterVec
	resolutions  CounterVec
	alerts       CounterVec
	sweeps       CounterVec
	calcLatency  HistogramVec
	sweepLatency HistogramVec

	mu                  sync.Mutex
	calculated          int64
	updated             int64
	dependenciesChecked int64
	alertsGenerated     int64
	sweepsRun           int64
	avgCalcSeconds      float64
}

// EngineStats is the read-only counter snapshot surfaced to callers.
type EngineStats struct {
	DeadlinesCalculated  int64   `json:"deadlines_calculated"`
	DeadlinesUpdated     int64   `json:"deadlines_updated"`
	DependenciesResolved int64   `json:"dependencies_resolved"`
	AlertsGenerated      int64   `json:"alerts_generated"`
	SweepsRun            int64   `json:"sweeps_run"`
	AvgCalculationMillis float64 `json:"avg_calculation_time_ms"`
}

// NewEngineMetrics registers the engine metric set on the collector.
func NewEngineMetrics(collector MetricsCollector) *EngineMetrics {
	return &EngineMetrics{
		calculations: collector.RegisterCounter(
			"deadlines_calculated_total", "Deadline calculations completed."),
		updates: collector.RegisterCounter(
			"deadline_status_updates_total", "Deadline status transitions applied."),
		resolutions: collector.RegisterCounter(
			"dependency_resolutions_total", "Dependency prerequisite lookups performed."),
		alerts: collector.RegisterCounter(
			"alerts_generated_total", "Early-warning thresholds fired."),
		sweeps: collector.RegisterCounter(
			"status_sweeps_total", "Status monitor sweeps completed."),
		calcLatency: collector.RegisterHistogram(
			"calculation_duration_seconds", "Deadline calculation latency.", nil),
		sweepLatency: collector.RegisterHistogram(
			"sweep_duration_seconds", "Status sweep latency.", nil),
	}
}

func (m *EngineMetrics) RecordCalculation(latency time.Duration) {
	m.calculations.WithLabelValues().Inc()
	m.calcLatency.WithLabelValues().Observe(latency.Seconds())

	m.mu.Lock()
	m.calculated++
	m.avgCalcSeconds += (latency.Seconds() - m.avgCalcSeconds) / float64(m.calculated)
	m.mu.Unlock()
}

func (m *EngineMetrics) RecordStatusUpdate() {
	m.updates.WithLabelValues().Inc()

	m.mu.Lock()
	m.updated++
	m.mu.Unlock()
}

func (m *EngineMetrics) RecordDependencyResolution(dependencyCount int) {
	m.resolutions.WithLabelValues().Add(float64(dependencyCount))

	m.mu.Lock()
	m.dependenciesChecked += int64(dependencyCount)
	m.mu.Unlock()
}

func (m *EngineMetrics) RecordAlert() {
	m.alerts.WithLabelValues().Inc()

	m.mu.Lock()
	m.alertsGenerated++
	m.mu.Unlock()
}

func (m *EngineMetrics) RecordSweep(latency time.Duration) {
	m.sweeps.WithLabelValues().Inc()
	m.sweepLatency.WithLabelValues().Observe(latency.Seconds())

	m.mu.Lock()
	m.sweepsRun++
	m.mu.Unlock()
}

// Stats returns the current counter snapshot.
func (m *EngineMetrics) Stats() EngineStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return EngineStats{
		DeadlinesCalculated:  m.calculated,
		DeadlinesUpdated:     m.updated,
		DependenciesResolved: m.dependenciesChecked,
		AlertsGenerated:      m.alertsGenerated,
		SweepsRun:            m.sweepsRun,
		AvgCalculationMillis: m.avgCalcSeconds * 1000,
	}
}
