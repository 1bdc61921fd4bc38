package daemon

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's Prometheus collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	aggregation   *prometheus.HistogramVec
	subscriptions prometheus.Gauge
	polls         *prometheus.CounterVec
	events        prometheus.Counter
}

// NewMetrics registers the daemon collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subcal_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		aggregation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subcal_aggregation_duration_seconds",
			Help:    "Time spent computing charge totals.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"query"}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "subcal_subscriptions",
			Help: "Subscriptions in the last polled snapshot.",
		}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subcal_polls_total",
			Help: "Store polls by result.",
		}, []string{"result"}),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subcal_events_published_total",
			Help: "Events published to the ring buffer.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.aggregation, m.subscriptions, m.polls, m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeAggregation(query string, start time.Time) {
	m.aggregation.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// middleware counts requests by matched route.
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
