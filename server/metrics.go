package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's prometheus instruments on a private
// registry, so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	simulations     *prometheus.CounterVec
	simulationTicks prometheus.Counter
	tickRate        prometheus.Histogram

	dockings *prometheus.CounterVec
}

// NewMetrics builds and registers the instrument set.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petri",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "petri",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	m.simulations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petri",
		Name:      "simulations_total",
		Help:      "Culture runs served, by cell line.",
	}, []string{"cell_line"})

	m.simulationTicks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "petri",
		Name:      "simulation_ticks_total",
		Help:      "Ticks advanced across all culture runs.",
	})

	m.tickRate = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "petri",
		Name:      "simulation_ticks_per_second",
		Help:      "Tick throughput of individual culture runs.",
		Buckets:   prometheus.ExponentialBuckets(1000, 10, 6),
	})

	m.dockings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petri",
		Name:      "dockings_total",
		Help:      "Docking runs served, by target and compound.",
	}, []string{"protein", "ligand"})

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.simulations,
		m.simulationTicks,
		m.tickRate,
		m.dockings,
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request. The route is the
// matched template, not the raw path, to keep label cardinality flat.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveSimulation records one finished culture run.
func (m *Metrics) ObserveSimulation(cellLine string, ticks int, elapsed time.Duration) {
	m.simulations.WithLabelValues(cellLine).Inc()
	m.simulationTicks.Add(float64(ticks))
	if secs := elapsed.Seconds(); secs > 0 {
		m.tickRate.Observe(float64(ticks) / secs)
	}
}

// ObserveDocking records one finished docking run.
func (m *Metrics) ObserveDocking(protein, ligand string) {
	m.dockings.WithLabelValues(protein, ligand).Inc()
}

// observe feeds ObserveRequest from the request lifecycle.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.metrics.ObserveRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
