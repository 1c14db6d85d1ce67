package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

const namespace = "researchtrack"

// Metrics is nil-safe: every method is a no-op on a nil receiver, so callers never
// check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	extractions   *prometheus.CounterVec
	extractTime   prometheus.Histogram
	rowsPersisted *prometheus.CounterVec
	rowsFailed    *prometheus.CounterVec
	llmRequests   *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	llmTokens     *prometheus.CounterVec
	dbStats       *prometheus.GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics once. It returns nil when disabled.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New(prometheus.NewRegistry())
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// New registers a fresh metric set on reg. Tests pass their own registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/path/status.",
		}, []string{"method", "path", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds by method/path.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"method", "path"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extraction runs by outcome (ok, partial, or the failing error kind).",
		}, []string{"outcome"}),
		extractTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "End-to-end extraction latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		rowsPersisted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_persisted_total",
			Help:      "Rows written by the persister by entity.",
		}, []string{"entity"}),
		rowsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_failed_total",
			Help:      "Rows skipped by the persister by entity/kind.",
		}, []string{"entity", "kind"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Completion requests by model/status.",
		}, []string{"model", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Completion request latency in seconds by model.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"model"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Completion tokens by model/direction.",
		}, []string{"model", "direction"}),
		dbStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_stats",
			Help:      "database/sql pool stats.",
		}, []string{"metric"}),
	}
	reg.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.extractions,
		m.extractTime,
		m.rowsPersisted,
		m.rowsFailed,
		m.llmRequests,
		m.llmLatency,
		m.llmTokens,
		m.dbStats,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, path, status string, dur time.Duration) {
	if m == nil {
		return
	}
	method = orDefault(method, "UNKNOWN")
	path = orDefault(path, "unmatched")
	m.apiRequests.WithLabelValues(method, path, orDefault(status, "0")).Inc()
	m.apiLatency.WithLabelValues(method, path).Observe(dur.Seconds())
}

func (m *Metrics) ObserveExtraction(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(orDefault(outcome, "unknown")).Inc()
	if dur > 0 {
		m.extractTime.Observe(dur.Seconds())
	}
}

func (m *Metrics) AddRowsPersisted(entity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsPersisted.WithLabelValues(orDefault(entity, "unknown")).Add(float64(n))
}

func (m *Metrics) IncRowFailed(entity, kind string) {
	if m == nil {
		return
	}
	m.rowsFailed.WithLabelValues(orDefault(entity, "unknown"), orDefault(kind, "unknown")).Inc()
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orDefault(model, "unknown")
	m.llmRequests.WithLabelValues(model, orDefault(status, "0")).Inc()
	if dur > 0 {
		m.llmLatency.WithLabelValues(model).Observe(dur.Seconds())
	}
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues(model, "output").Add(float64(outputTokens))
	}
}

// StartDBCollector samples the connection pool until ctx is cancelled.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
			}
		}
	}()
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
