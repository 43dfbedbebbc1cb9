package selfmetrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/lblanc/grafana-integration/pkg/types"
)

const namespace = "datacore_poller"

// Metrics holds the poller's own Prometheus collectors on a private
// registry. It satisfies scraper.Observer.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cycles          *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	lines           *prometheus.CounterVec
	failures        *prometheus.CounterVec
	publishBytes    prometheus.Counter
	publishErrors   prometheus.Counter
	lastSuccess     prometheus.Gauge
	certDaysLeft    prometheus.Gauge
}

// New registers all collectors, including the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rest_requests_total",
			Help:      "DataCore REST calls by endpoint and status code (0 = transport error).",
		}, []string{"endpoint", "code"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rest_request_duration_seconds",
			Help:      "DataCore REST call latency by endpoint.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Poll cycles by final state.",
		}, []string{"state"}),

		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a poll cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),

		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_rendered_total",
			Help:      "Line-protocol records rendered by resource kind.",
		}, []string{"kind"}),

		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "object_failures_total",
			Help:      "Objects dropped or flagged suspect while joining samples, by kind.",
		}, []string{"kind", "suspect"}),

		publishBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_bytes_total",
			Help:      "Bytes of line protocol posted to InfluxDB.",
		}),

		publishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "InfluxDB writes that failed or were rejected.",
		}),

		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that published without error.",
		}),

		certDaysLeft: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rest_cert_days_left",
			Help:      "Days until the REST endpoint certificate expires.",
		}),
	}

	m.registry.MustRegister(
		m.requests, m.requestDuration,
		m.cycles, m.cycleDuration,
		m.lines, m.failures,
		m.publishBytes, m.publishErrors,
		m.lastSuccess, m.certDaysLeft,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one REST call. Transport failures carry status 0.
func (m *Metrics) ObserveRequest(endpoint string, statusCode int, _ error, elapsed time.Duration) {
	m.requests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveCycle records a finished cycle. linesByKind holds the rendered
// line count per kind.
func (m *Metrics) ObserveCycle(rep *types.Report, linesByKind map[types.Kind]int) {
	m.cycles.WithLabelValues(rep.State).Inc()
	m.cycleDuration.Observe(rep.Duration.Seconds())

	for kind, n := range linesByKind {
		m.lines.WithLabelValues(string(kind)).Add(float64(n))
	}
	for _, f := range rep.Failures {
		m.failures.WithLabelValues(string(f.Kind), strconv.FormatBool(f.Suspect)).Inc()
	}

	if p := rep.Publish; p != nil {
		m.publishBytes.Add(float64(p.Bytes))
		if !p.Skipped && (p.StatusCode < 200 || p.StatusCode >= 300) {
			m.publishErrors.Inc()
		}
	}
	if rep.State != types.CycleFailed && rep.Publish != nil && rep.Publish.StatusCode >= 200 && rep.Publish.StatusCode < 300 {
		m.lastSuccess.Set(float64(rep.StartedAt.Add(rep.Duration).Unix()))
	}
	if rep.Cert != nil && rep.Cert.NotAfter != "" {
		m.certDaysLeft.Set(float64(rep.Cert.DaysLeft))
	}
}

// Handler serves the registry in the exposition format negotiated with the
// client.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mfs, err := m.registry.Gather()
		if err != nil {
			slog.Error("selfmetrics: gather failed", "err", err)
			if len(mfs) == 0 {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		format := expfmt.Negotiate(r.Header)
		w.Header().Set("Content-Type", string(format))
		enc := expfmt.NewEncoder(w, format)
		for _, mf := range mfs {
			if err := enc.Encode(mf); err != nil {
				slog.Error("selfmetrics: encode failed", "family", mf.GetName(), "err", err)
				return
			}
		}
		if c, ok := enc.(expfmt.Closer); ok {
			c.Close() //nolint:errcheck
		}
	})
}

// Totals returns the sum of every counter and gauge family owned by the
// poller, keyed by family name without the namespace prefix.
func (m *Metrics) Totals() map[string]float64 {
	mfs, err := m.registry.Gather()
	if err != nil {
		slog.Warn("selfmetrics: gather failed", "err", err)
	}
	out := make(map[string]float64)
	prefix := namespace + "_"
	for _, mf := range mfs {
		name := mf.GetName()
		if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		if t := mf.GetType(); t != dto.MetricType_COUNTER && t != dto.MetricType_GAUGE {
			continue
		}
		out[name[len(prefix):]] = sumFamily(mf)
	}
	return out
}

// sumFamily adds up all counter or gauge values in a MetricFamily.
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		}
	}
	return total
}
