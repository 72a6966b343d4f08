// Package observability provides Prometheus metrics for the game.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for one game service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Trading metrics
	TradesTotal *prometheus.CounterVec

	// Simulation metrics
	NewsEmitted          *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
	ScoreSubmissions     *prometheus.CounterVec

	// State gauges
	NetWorth     prometheus.Gauge
	Cash         prometheus.Gauge
	MarketHealth prometheus.Gauge
	Round        prometheus.Gauge
}

// NewMetrics creates a Metrics instance on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "marketrush"
	}

	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TradesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_total",
			Help:      "Total number of trade requests by action and result",
		}, []string{"action", "result"}),

		NewsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "news_emitted_total",
			Help:      "Total number of news items emitted by kind",
		}, []string{"kind"}),
		NotificationsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "notifications_dropped_total",
			Help:      "Total number of notifications dropped because no reader kept up",
		}),
		ScoreSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "score",
			Name:      "submissions_total",
			Help:      "Total number of final score submissions by result",
		}, []string{"result"}),

		NetWorth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "net_worth",
			Help:      "Current net worth",
		}),
		Cash: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "cash",
			Help:      "Current cash balance",
		}),
		MarketHealth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "market_health",
			Help:      "Current market health in [0,100]",
		}),
		Round: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "round",
			Help:      "Current round",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordTrade counts a trade request. result is "ok" or a rejection reason.
func (m *Metrics) RecordTrade(action, result string) {
	if m == nil {
		return
	}
	m.TradesTotal.WithLabelValues(action, result).Inc()
}

// RecordNews counts an emitted news item.
func (m *Metrics) RecordNews(kind string) {
	if m == nil {
		return
	}
	m.NewsEmitted.WithLabelValues(kind).Inc()
}

// RecordDroppedNotification counts a dropped notification.
func (m *Metrics) RecordDroppedNotification() {
	if m == nil {
		return
	}
	m.NotificationsDropped.Inc()
}

// RecordScoreSubmission counts a score submission attempt.
func (m *Metrics) RecordScoreSubmission(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ScoreSubmissions.WithLabelValues(result).Inc()
}

// UpdateState sets the state gauges.
func (m *Metrics) UpdateState(netWorth, cash, health float64, round int) {
	if m == nil {
		return
	}
	m.NetWorth.Set(netWorth)
	m.Cash.Set(cash)
	m.MarketHealth.Set(health)
	m.Round.Set(float64(round))
}
