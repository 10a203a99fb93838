package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qecgraph/pkg/cache"
	"qecgraph/pkg/closure"
)

var (
	_ closure.Recorder = (*Metrics)(nil)
	_ cache.Recorder   = (*Metrics)(nil)
)

// Metrics контейнер метрик движка и bench-прогона
type Metrics struct {
	// Движок
	TraversalsTotal   *prometheus.CounterVec
	TraversalDuration prometheus.Histogram
	VerticesFinalized prometheus.Histogram
	ClockWrapsTotal   prometheus.Counter
	PathQueriesTotal  *prometheus.CounterVec

	// Кэш путей
	CacheLookupsTotal *prometheus.CounterVec

	// Прогон
	PatternsTotal  *prometheus.CounterVec
	RoundDuration  prometheus.Histogram
	SyndromeSize   prometheus.Histogram
	GraphVertices  prometheus.Gauge
	GraphEdges     prometheus.Gauge
	ActiveWorkers  prometheus.Gauge
	RoundErrors    *prometheus.CounterVec
	ServiceInfo    *prometheus.GaugeVec
	registerer     prometheus.Registerer
	runtimeEnabled bool
}

var defaultMetrics *Metrics

// New регистрирует метрики в reg
func New(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		TraversalsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "traversals_total",
				Help:      "Total number of shortest-distance traversals",
			},
			[]string{"early_exit"},
		),

		TraversalDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "traversal_duration_seconds",
				Help:      "Duration of a single traversal",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
		),

		VerticesFinalized: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "traversal_vertices_finalized",
				Help:      "Vertices finalized per traversal",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),

		ClockWrapsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "clock_wraps_total",
				Help:      "Number of invalidation clock wrap-arounds",
			},
		),

		PathQueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "path_queries_total",
				Help:      "Shortest path queries by outcome",
			},
			[]string{"status"},
		),

		CacheLookupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "path_cache_lookups_total",
				Help:      "Path cache lookups by result",
			},
			[]string{"result"},
		),

		PatternsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "syndrome_patterns_total",
				Help:      "Syndrome patterns processed by source",
			},
			[]string{"source"},
		),

		RoundDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "round_duration_seconds",
				Help:      "Closure computation time per syndrome pattern",
				Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
			},
		),

		SyndromeSize: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "syndrome_vertices",
				Help:      "Syndrome vertices per pattern",
				Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
			},
		),

		GraphVertices: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_vertices",
				Help:      "Vertices of the current decoding graph",
			},
		),

		GraphEdges: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges",
				Help:      "Edges of the current decoding graph",
			},
		),

		ActiveWorkers: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active_workers",
				Help:      "Workers currently computing a closure",
			},
		),

		RoundErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "round_errors_total",
				Help:      "Failed rounds by error code",
			},
			[]string{"code"},
		),

		ServiceInfo: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),

		registerer: reg,
	}

	return m
}

// InitMetrics регистрирует метрики в prometheus.DefaultRegisterer и
// делает их глобальными
func InitMetrics(namespace, subsystem string) *Metrics {
	m := New(prometheus.DefaultRegisterer, namespace, subsystem)
	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("qecgraph", "")
	}
	return defaultMetrics
}

// EnableRuntimeCollector регистрирует RuntimeCollector один раз
func (m *Metrics) EnableRuntimeCollector(namespace, subsystem string) error {
	if m.runtimeEnabled {
		return nil
	}
	if err := m.registerer.Register(NewRuntimeCollector(namespace, subsystem)); err != nil {
		return err
	}
	m.runtimeEnabled = true
	return nil
}

// RecordTraversal реализует closure.Recorder
func (m *Metrics) RecordTraversal(finalized int, earlyExit bool, d time.Duration) {
	m.TraversalsTotal.WithLabelValues(strconv.FormatBool(earlyExit)).Inc()
	m.TraversalDuration.Observe(d.Seconds())
	m.VerticesFinalized.Observe(float64(finalized))
}

// RecordPathQuery реализует closure.Recorder
func (m *Metrics) RecordPathQuery(status string) {
	m.PathQueriesTotal.WithLabelValues(status).Inc()
}

// RecordClockWrap реализует closure.Recorder
func (m *Metrics) RecordClockWrap() {
	m.ClockWrapsTotal.Inc()
}

// RecordCacheLookup реализует cache.Recorder
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordPattern учитывает обработанный синдром
func (m *Metrics) RecordPattern(source string, syndromeNum int) {
	m.PatternsTotal.WithLabelValues(source).Inc()
	m.SyndromeSize.Observe(float64(syndromeNum))
}

// RecordRound записывает время вычисления замыкания для одного синдрома
func (m *Metrics) RecordRound(d time.Duration) {
	m.RoundDuration.Observe(d.Seconds())
}

// RecordRoundError учитывает неудачный раунд
func (m *Metrics) RecordRoundError(code string) {
	m.RoundErrors.WithLabelValues(code).Inc()
}

// SetGraphSize записывает размер графа
func (m *Metrics) SetGraphSize(vertices, edges int) {
	m.GraphVertices.Set(float64(vertices))
	m.GraphEdges.Set(float64(edges))
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// NewServer собирает HTTP сервер метрик с /health
func NewServer(port int, path string, gatherer prometheus.Gatherer) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
