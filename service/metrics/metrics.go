package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Deposit Metrics
	derivationsTotal  *prometheus.CounterVec
	gossipChecksTotal *prometheus.CounterVec
	fundingAttempts   *prometheus.CounterVec
	fundingLamports   *prometheus.CounterVec

	// NATS Metrics
	natsMessagesPublished *prometheus.CounterVec
	natsPublishDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// Solana RPC Metrics
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),

		// Deposit Metrics
		derivationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deposit_pda_derivations_total",
				Help: "Total number of deposit PDA derivations by status",
			},
			[]string{"status"},
		),
		gossipChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gossip_checks_total",
				Help: "Total number of validator gossip liveness checks by result",
			},
			[]string{"result"},
		),
		fundingAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deposit_funding_attempts_total",
				Help: "Total number of deposit funding attempts by outcome",
			},
			[]string{"network", "result"},
		),
		fundingLamports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deposit_funding_lamports_total",
				Help: "Total lamports submitted to validator deposit accounts",
			},
			[]string{"network"},
		),

		// NATS Metrics
		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published",
			},
			[]string{"subject", "status"},
		),
		natsPublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nats_publish_duration_seconds",
				Help:    "Duration of NATS publish operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"subject"},
		),
	}
}

// Solana RPC metric helpers

// RecordRPCCall records a Solana RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// Deposit metric helpers

// RecordDerivation records a PDA derivation.
func (m *Metrics) RecordDerivation(err error) {
	m.derivationsTotal.WithLabelValues(statusFromError(err)).Inc()
}

// RecordGossipCheck records the outcome of a liveness check
// ("proceed", "cancel" or "cancel_on_error").
func (m *Metrics) RecordGossipCheck(result string) {
	m.gossipChecksTotal.WithLabelValues(result).Inc()
}

// RecordFundingAttempt records how a funding attempt ended.
func (m *Metrics) RecordFundingAttempt(network, result string) {
	m.fundingAttempts.WithLabelValues(network, result).Inc()
}

// RecordFundingLamports adds submitted lamports.
func (m *Metrics) RecordFundingLamports(network string, lamports uint64) {
	m.fundingLamports.WithLabelValues(network).Add(float64(lamports))
}

// NATS metric helpers

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string, duration float64) {
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
	m.natsPublishDuration.WithLabelValues(subject).Observe(duration)
}

// Push sends everything in gatherer to a Prometheus Pushgateway. CLI runs
// are too short-lived to be scraped.
func Push(ctx context.Context, url, job string, gatherer prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}

// Helper functions

func statusFromError(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
