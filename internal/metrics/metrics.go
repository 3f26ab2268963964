// Package metrics exposes the service's Prometheus instruments.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bsgame"

// Detection paths for finished games
const (
	DetectedByMove = "move"
	DetectedBySync = "sync"
)

// Metrics holds the registry and collectors for one application instance
type Metrics struct {
	registry      *prometheus.Registry
	gamesCreated  prometheus.Counter
	moves         *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
	streamClients prometheus.Gauge
}

// New creates a Metrics with its own registry, including Go runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Number of games created.",
		}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Number of shots fired, by result.",
		}, []string{"result"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Number of games finished, by the path that detected the win.",
		}, []string{"detected_by"}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Number of connected realtime viewers.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gamesCreated,
		m.moves,
		m.gamesFinished,
		m.streamClients,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) GameCreated() {
	if m == nil {
		return
	}
	m.gamesCreated.Inc()
}

func (m *Metrics) MoveResolved(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.moves.WithLabelValues(result).Inc()
}

func (m *Metrics) GameFinished(detectedBy string) {
	if m == nil {
		return
	}
	m.gamesFinished.WithLabelValues(detectedBy).Inc()
}

func (m *Metrics) StreamClientConnected() {
	if m == nil {
		return
	}
	m.streamClients.Inc()
}

func (m *Metrics) StreamClientDisconnected() {
	if m == nil {
		return
	}
	m.streamClients.Dec()
}
