// Package metrics records conversation telemetry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

// Recorder receives conversation telemetry events.
type Recorder interface {
	// RecordTurn records one handled inbound event.
	RecordTurn(route, tool, status string, duration time.Duration)
	// RecordOracleCall records one oracle consultation.
	RecordOracleCall(provider, status string, duration time.Duration)
	// RecordGatewayError records a backend failure by gateway name.
	RecordGatewayError(gateway string)
}

// PrometheusRecorder implements Recorder on the default Prometheus registry.
type PrometheusRecorder struct {
	turnsTotal    *prometheus.CounterVec
	turnDuration  *prometheus.HistogramVec
	oracleCalls   *prometheus.CounterVec
	oracleLatency *prometheus.HistogramVec
	gatewayErrors *prometheus.CounterVec
}

// NewPrometheusRecorder creates and registers the conversation metrics.
// Call once per process.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		turnsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_turns_total",
				Help: "Total handled conversation turns by route, tool, and status",
			},
			[]string{"route", "tool", "status"},
		),
		turnDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatbot_turn_duration_seconds",
				Help:    "Duration of conversation turns in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		oracleCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_oracle_calls_total",
				Help: "Total intent oracle consultations by provider and status",
			},
			[]string{"provider", "status"},
		),
		oracleLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatbot_oracle_duration_seconds",
				Help:    "Duration of intent oracle calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		gatewayErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatbot_gateway_errors_total",
				Help: "Total backend gateway failures by gateway",
			},
			[]string{"gateway"},
		),
	}
}

func (r *PrometheusRecorder) RecordTurn(route, tool, status string, duration time.Duration) {
	r.turnsTotal.WithLabelValues(route, tool, status).Inc()
	r.turnDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordOracleCall(provider, status string, duration time.Duration) {
	r.oracleCalls.WithLabelValues(provider, status).Inc()
	r.oracleLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordGatewayError(gateway string) {
	r.gatewayErrors.WithLabelValues(gateway).Inc()
}

// NopRecorder discards all events. Used in tests and when metrics are
// disabled.
type NopRecorder struct{}

func (NopRecorder) RecordTurn(string, string, string, time.Duration) {}
func (NopRecorder) RecordOracleCall(string, string, time.Duration)   {}
func (NopRecorder) RecordGatewayError(string)                        {}

// Serve exposes /metrics on addr. Blocks; run in a goroutine.
func Serve(addr string) error {
	logger := logx.NewLogger("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("serving metrics on %s", addr)
	return http.ListenAndServe(addr, mux)
}
