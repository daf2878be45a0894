package metrics

import (
	"net/http"
	"strconv"

	"pingboard/internal/pinger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tick outcomes used as the "result" label
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
	ResultStale   = "stale"
)

// Metrics owns a private registry so tests and multiple servers never share state
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal *prometheus.CounterVec
	TicksTotal        *prometheus.CounterVec
	LastLatency       prometheus.Gauge
	LiveSessions      prometheus.Gauge
}

// New creates and registers all collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pingboard_http_requests_total",
				Help: "Total number of HTTP requests served, by route and status",
			},
			[]string{"route", "status"},
		),
		TicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pingboard_ticks_total",
				Help: "Total number of sampler ticks, by result",
			},
			[]string{"result"},
		),
		LastLatency: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pingboard_last_latency_seconds",
			Help: "Most recently rendered round trip latency",
		}),
		LiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pingboard_live_sessions",
			Help: "Number of open live page sessions",
		}),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts every request by its matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Observer returns a pinger.Observer that records tick outcomes
func (m *Metrics) Observer() pinger.Observer {
	return tickObserver{m: m}
}

type tickObserver struct {
	m *Metrics
}

func (o tickObserver) TickSucceeded(meas pinger.Measurement) {
	o.m.TicksTotal.WithLabelValues(ResultOK).Inc()
	o.m.LastLatency.Set(meas.Elapsed.Seconds())
}

func (o tickObserver) TickFailed(error) {
	o.m.TicksTotal.WithLabelValues(ResultFailed).Inc()
}

func (o tickObserver) TickSkipped() {
	o.m.TicksTotal.WithLabelValues(ResultSkipped).Inc()
}

func (o tickObserver) StaleDiscarded() {
	o.m.TicksTotal.WithLabelValues(ResultStale).Inc()
}
