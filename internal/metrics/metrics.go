// Package metrics holds the Prometheus collectors of the store API and the
// bot.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "giftmind"

// Metrics is a set of collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	botCommands  *prometheus.CounterVec
	activeChats  prometheus.Gauge
	refreshes    *prometheus.CounterVec
}

// New creates the collectors. Go runtime and process collectors are
// registered as well.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled by the store API.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of store API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		botCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "commands_total",
			Help:      "Bot commands and callbacks processed.",
		}, []string{"command", "outcome"}),
		activeChats: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "active_chats",
			Help:      "Chats with a running client app.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "session_refreshes_total",
			Help:      "Session refresh attempts by the scheduler.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.botCommands, m.activeChats, m.refreshes,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// CommandProcessed counts one bot command. outcome is "ok" or "error".
func (m *Metrics) CommandProcessed(command string, err error) {
	m.botCommands.WithLabelValues(command, outcome(err)).Inc()
}

// SetActiveChats sets the number of chats with a running app.
func (m *Metrics) SetActiveChats(n int) {
	m.activeChats.Set(float64(n))
}

// SessionRefreshed counts one scheduled session refresh.
func (m *Metrics) SessionRefreshed(err error) {
	m.refreshes.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
