// Package main is the entry point for the DeFi TVL analyzer service, which turns protocol
// and chain TVL payloads into descriptive statistics over HTTP.
package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/defi-tvl-analyzer/internal/config"
	tracing "github.com/yourorg/defi-tvl-analyzer/internal/otel"
)

// main is the entry point for the application
func main() {
	cfg := config.Load()
	log := setupLogging(cfg)

	shutdownTracer, err := tracing.InitTracer(cfg)
	if err != nil {
		log.Warnf("Tracing disabled: %v", err)
	}
	defer shutdownTracer()

	server := NewServer(cfg, log, prometheus.NewRegistry())
	if err := server.Start(); err != nil {
		log.Errorf("Server stopped with error: %v", err)
		shutdownTracer()
		os.Exit(1)
	}
}

// setupLogging builds the process logger from the configured format and level
func setupLogging(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	// Set log formatter based on environment
	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// Set log level based on environment
	switch cfg.LogLevel {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	log.Info("Logging configured")
	return log
}
