package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/stoplight-backend/internal/platform/logger"
)

// Metrics owns a private registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	embedQueueDepth prometheus.Gauge
	embedInflight   prometheus.Gauge
	embedWait       prometheus.Histogram
	embedRun        *prometheus.HistogramVec
	embedRuns       *prometheus.CounterVec

	datasetLoads *prometheus.CounterVec
	datasetRows  prometheus.Histogram

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
	dbStats   *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stoplight_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stoplight_api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"method", "route", "status"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "stoplight_api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		embedQueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "stoplight_embedding_queue_depth",
			Help: "Embedding computations waiting for the execution slot.",
		}),
		embedInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "stoplight_embedding_inflight",
			Help: "Embedding computations currently running (0 or 1).",
		}),
		embedWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stoplight_embedding_wait_seconds",
			Help:    "Time spent waiting for the execution slot.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		embedRun: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stoplight_embedding_run_seconds",
			Help:    "Embedding computation duration by engine/outcome.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"engine", "outcome"}),
		embedRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stoplight_embedding_runs_total",
			Help: "Embedding computations by engine/outcome.",
		}, []string{"engine", "outcome"}),
		datasetLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stoplight_dataset_loads_total",
			Help: "Dataset loads by source driver/outcome.",
		}, []string{"driver", "outcome"}),
		datasetRows: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stoplight_dataset_rows",
			Help:    "Indicator rows per loaded dataset.",
			Buckets: prometheus.ExponentialBuckets(8, 2, 12),
		}),
		redisUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "stoplight_redis_up",
			Help: "Redis connectivity (1=up, 0=down).",
		}),
		redisPing: f.NewGauge(prometheus.GaugeOpts{
			Name: "stoplight_redis_ping_seconds",
			Help: "Redis ping latency in seconds.",
		}),
		dbStats: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stoplight_runlog_db_stats",
			Help: "Run ledger connection pool stats.",
		}, []string{"metric"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) EmbeddingQueued() {
	if m == nil {
		return
	}
	m.embedQueueDepth.Inc()
}

// EmbeddingDequeued is called once per queued job, whether it was accepted or abandoned.
func (m *Metrics) EmbeddingDequeued(wait time.Duration, accepted bool) {
	if m == nil {
		return
	}
	m.embedQueueDepth.Dec()
	if accepted {
		m.embedWait.Observe(wait.Seconds())
	}
}

func (m *Metrics) EmbeddingStarted() {
	if m == nil {
		return
	}
	m.embedInflight.Inc()
}

func (m *Metrics) ObserveEmbeddingRun(engine, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.embedInflight.Dec()
	m.embedRun.WithLabelValues(engine, outcome).Observe(dur.Seconds())
	m.embedRuns.WithLabelValues(engine, outcome).Inc()
}

func (m *Metrics) ObserveDatasetLoad(driver, outcome string, rows int) {
	if m == nil {
		return
	}
	m.datasetLoads.WithLabelValues(driver, outcome).Inc()
	if outcome == "ok" {
		m.datasetRows.Observe(float64(rows))
	}
}

// StartRedisCollector pings rdb on an interval until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
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
				start := time.Now()
				pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				err := rdb.Ping(pingCtx).Err()
				cancel()
				if err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Debug("redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

// StartDBCollector samples the ledger's sql.DB pool stats until ctx ends.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("db collector disabled", "error", err)
		}
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
				st := sqlDB.Stats()
				m.dbStats.WithLabelValues("open").Set(float64(st.OpenConnections))
				m.dbStats.WithLabelValues("in_use").Set(float64(st.InUse))
				m.dbStats.WithLabelValues("idle").Set(float64(st.Idle))
				m.dbStats.WithLabelValues("wait_count").Set(float64(st.WaitCount))
			}
		}
	}()
}
