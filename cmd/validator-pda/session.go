package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/brojonat/validator-pda/service/config"
	"github.com/brojonat/validator-pda/service/deposit"
	"github.com/brojonat/validator-pda/service/metrics"
	svcsolana "github.com/brojonat/validator-pda/service/solana"
	"github.com/gagliardetto/solana-go"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

const (
	metricsJob         = "validator-pda"
	metricsPushTimeout = 10 * time.Second
)

// session is the per-invocation wiring shared by the operations.
type session struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	solana     *svcsolana.Client
	derivation deposit.DerivationConfig
	out        *output
}

func newSession(c *cli.Context, d deps) (*session, error) {
	out, err := newOutput(c)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	derivation, err := cfg.Derivation()
	if err != nil {
		return nil, err
	}

	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}
	rpcURL, err := svcsolana.SelectRandomEndpoint(endpoints)
	if err != nil {
		return nil, err
	}

	logger := newLogger(c.App.ErrWriter, cfg)
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	client := svcsolana.NewClient(d.newRPC(rpcURL), svcsolana.EndpointLabel(rpcURL), m, logger)
	logger.Debug("using solana rpc endpoint", "endpoint", client.Endpoint(), "network", cfg.Network)

	return &session{
		cfg:        cfg,
		logger:     logger,
		registry:   registry,
		metrics:    m,
		solana:     client,
		derivation: derivation,
		out:        out,
	}, nil
}

// withSession runs fn under the configured deadline and pushes the run's
// metrics afterwards, whatever fn returned.
func withSession(c *cli.Context, d deps, fn func(ctx context.Context, s *session) error) error {
	s, err := newSession(c, d)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, s.cfg.Timeout)
	defer cancel()

	err = fn(ctx, s)
	s.pushMetrics(c.Context)
	return err
}

func (s *session) derive(identity solana.PublicKey) (deposit.Address, error) {
	addr, err := s.derivation.Derive(identity)
	s.metrics.RecordDerivation(err)
	return addr, err
}

func (s *session) pushMetrics(parent context.Context) {
	if s.cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), metricsPushTimeout)
	defer cancel()
	if err := metrics.Push(ctx, s.cfg.PushgatewayURL, metricsJob, s.registry); err != nil {
		s.logger.Warn("failed to push metrics", "error", err)
	}
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelError
	}
	if cfg.LogFormat == "text" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
