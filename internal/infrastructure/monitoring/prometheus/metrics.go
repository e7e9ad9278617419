package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds the dashboard's metrics.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analysis backend
	BackendRequestsTotal   CounterVec
	BackendRequestDuration HistogramVec

	// Review
	ClausesAnalyzedTotal CounterVec
	DocumentClauses      HistogramVec
	OverlaysDrawnTotal   CounterVec
	ViewerLoadsTotal     CounterVec
	ExportsTotal         CounterVec
	ActiveWorkspaces     GaugeVec

	// Infrastructure
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	ArchiveWrites    CounterVec
	ErrorsTotal      CounterVec
}

var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultBackendDurationBuckets = []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120, 300}
	DefaultClauseCountBuckets     = []float64{1, 5, 10, 25, 50, 100, 250, 500}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	m.BackendRequestsTotal = collector.RegisterCounter("backend_requests_total", "Calls to the analysis backend", "operation", "status")
	m.BackendRequestDuration = collector.RegisterHistogram("backend_request_duration_seconds", "Analysis backend call duration", DefaultBackendDurationBuckets, "operation")

	m.ClausesAnalyzedTotal = collector.RegisterCounter("clauses_analyzed_total", "Clauses analysed by risk label", "mode", "label")
	m.DocumentClauses = collector.RegisterHistogram("document_clauses", "Clauses per analysed document", DefaultClauseCountBuckets)
	m.OverlaysDrawnTotal = collector.RegisterCounter("viewer_overlays_drawn_total", "Highlight overlays drawn", "risk_level")
	m.ViewerLoadsTotal = collector.RegisterCounter("viewer_loads_total", "PDF viewer loads by resulting state", "state")
	m.ExportsTotal = collector.RegisterCounter("exports_total", "Exports produced", "format")
	m.ActiveWorkspaces = collector.RegisterGauge("active_workspaces", "Workspaces held in memory")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.ArchiveWrites = collector.RegisterCounter("archive_writes_total", "Objects written to the archive", "kind", "status")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordBackendCall(m *AppMetrics, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.BackendRequestsTotal.WithLabelValues(operation, status(err)).Inc()
	m.BackendRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordClause(m *AppMetrics, mode, label string) {
	if m == nil {
		return
	}
	m.ClausesAnalyzedTotal.WithLabelValues(mode, label).Inc()
}

func RecordDocument(m *AppMetrics, clauses int) {
	if m == nil {
		return
	}
	m.DocumentClauses.WithLabelValues().Observe(float64(clauses))
}

func RecordOverlay(m *AppMetrics, riskLevel string) {
	if m == nil {
		return
	}
	m.OverlaysDrawnTotal.WithLabelValues(riskLevel).Inc()
}

func RecordViewerLoad(m *AppMetrics, state string) {
	if m == nil {
		return
	}
	m.ViewerLoadsTotal.WithLabelValues(state).Inc()
}

func RecordExport(m *AppMetrics, format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(format).Inc()
}

func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordArchiveWrite(m *AppMetrics, kind string, err error) {
	if m == nil {
		return
	}
	m.ArchiveWrites.WithLabelValues(kind, status(err)).Inc()
}

func RecordError(m *AppMetrics, component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
