package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"dwetl/internal/config"
	"dwetl/internal/logging"
	"dwetl/internal/metrics"
	"dwetl/internal/metrics/datadog"
	"dwetl/internal/metrics/prompush"
	"dwetl/internal/storage"
)

// loadConfig loads the pipeline config, applies the logging flag overrides
// and rejects configs with validation errors. Warnings are logged.
func loadConfig(g *globalOptions, stderr io.Writer) (config.Pipeline, *logrus.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Pipeline{}, nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: stderr})
	if err != nil {
		return config.Pipeline{}, nil, err
	}

	issues := config.ValidatePipeline(cfg)
	for _, iss := range issues {
		logger.WithField("path", iss.Path).Warnf("config: %s: %s", iss.Severity, iss.Message)
	}
	if config.HasErrors(issues) {
		return config.Pipeline{}, nil, fmt.Errorf("configuration is invalid: %d issue(s)", len(issues))
	}
	return cfg, logger, nil
}

// setupMetrics installs the configured metrics backend and returns a function
// that flushes it. A backend that fails to initialise leaves metrics disabled.
func setupMetrics(m config.Metrics, job string, logger logrus.FieldLogger) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "", "none":
		logger.Debug("metrics: disabled")
		return func() {}
	case "pushgateway":
		b, err = prompush.NewBackend(job, m.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  m.DatadogNamespace,
			GlobalTags: m.DatadogTags,
		})
	default:
		err = fmt.Errorf("unknown backend %q", m.Backend)
	}
	if err != nil {
		logger.WithError(err).Warn("metrics: backend unavailable; metrics disabled")
		return func() {}
	}

	metrics.SetBackend(b)
	logger.WithFields(logrus.Fields{"backend": m.Backend, "job": job}).Info("metrics: enabled")
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.WithError(err).Warn("metrics: flush failed")
		}
	}
}

// openRepository opens the configured sink.
func openRepository(ctx context.Context, s config.Storage) (storage.Repository, error) {
	repo, err := storage.New(ctx, storage.Config{
		Kind:     s.Kind,
		DSN:      s.DB.DSN,
		Host:     s.DB.Host,
		Port:     s.DB.Port,
		Database: s.DB.Database,
		User:     s.DB.User,
		Password: s.DB.Password,
		Schema:   s.DB.Schema,
		Params:   s.DB.Params,
	})
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	return repo, nil
}
