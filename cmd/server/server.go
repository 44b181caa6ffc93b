package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/defi-tvl-analyzer/internal/aggregate"
	"github.com/yourorg/defi-tvl-analyzer/internal/analyzer"
	"github.com/yourorg/defi-tvl-analyzer/internal/config"
	"github.com/yourorg/defi-tvl-analyzer/internal/model"
	tracing "github.com/yourorg/defi-tvl-analyzer/internal/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const version = "1.0.0"

// Server hosts the analyzer behind a small HTTP API
type Server struct {
	config    config.Config
	log       logrus.FieldLogger
	analyzer  *analyzer.Analyzer
	metrics   *serverMetrics
	gatherer  prometheus.Gatherer
	rateLimit *rate.Limiter
	server    *http.Server
	startTime time.Time
}

// serverMetrics holds Prometheus metrics for the server
type serverMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	noDataCounter   *prometheus.CounterVec
	chainsAnalyzed  prometheus.Histogram
	currentTVL      prometheus.Histogram
}

// registerMetrics sets up Prometheus metrics collection on reg
func registerMetrics(reg prometheus.Registerer) *serverMetrics {
	m := &serverMetrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tvl_requests_total",
				Help: "Total number of analysis requests processed",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tvl_request_duration_seconds",
				Help:    "Analysis request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		noDataCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tvl_no_valid_data_total",
				Help: "Analyses rejected because a series had no valid points",
			},
			[]string{"scope"},
		),
		chainsAnalyzed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tvl_chains_per_protocol",
				Help:    "Number of chains analyzed per protocol",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),
		currentTVL: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tvl_protocol_current_usd",
				Help:    "Current TVL of analyzed protocols in USD",
				Buckets: prometheus.ExponentialBuckets(1e3, 10, 9),
			},
		),
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.noDataCounter,
		m.chainsAnalyzed,
		m.currentTVL,
	)

	return m
}

// NewServer creates a server around a fresh analyzer. Metrics are registered on
// reg when enabled; reg should be a prometheus.Registry so /metrics can serve it.
func NewServer(cfg config.Config, log logrus.FieldLogger, reg *prometheus.Registry) *Server {
	s := &Server{
		config:    cfg,
		log:       log,
		analyzer:  analyzer.New(analyzer.WithLogger(log)),
		startTime: time.Now(),
	}

	// RPS <= 0 disables rate limiting
	if cfg.RateLimitRPS > 0 {
		s.rateLimit = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	if cfg.EnableMetrics && reg != nil {
		s.metrics = registerMetrics(reg)
		s.gatherer = reg
	}

	log.WithFields(logrus.Fields{
		"port":       cfg.Port,
		"timeout":    cfg.RequestTimeout,
		"rate_limit": cfg.RateLimitRPS,
		"burst":      cfg.RateLimitBurst,
		"metrics":    cfg.EnableMetrics,
	}).Info("Server initialized")

	return s
}

// Handler returns the HTTP routes of the service
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/analyze/protocol", s.handleAnalyzeProtocol)
	mux.HandleFunc("/v1/analyze/chain", s.handleAnalyzeChain)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)

	return s.withTimeout(mux)
}

// withTimeout bounds next by RequestTimeout. A timed out request gets the
// usual error envelope with status 503.
func (s *Server) withTimeout(next http.Handler) http.Handler {
	if s.config.RequestTimeout <= 0 {
		return next
	}

	body, _ := json.Marshal(Response{
		StatusCode: http.StatusServiceUnavailable,
		Status:     "error",
		Error:      "request timed out",
	})
	timeout := http.TimeoutHandler(next, s.config.RequestTimeout, string(body))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handlers overwrite this on normal completion
		w.Header().Set("Content-Type", "application/json")
		timeout.ServeHTTP(w, r)
	})
}

// Start begins the HTTP server and blocks until SIGINT/SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Server starting on port %s", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	s.log.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}

	s.log.Info("Server stopped")
	return nil
}

// handleAnalyzeProtocol analyzes a full protocol payload
func (s *Server) handleAnalyzeProtocol(w http.ResponseWriter, r *http.Request) {
	const endpoint = "protocol"
	start := time.Now()

	if !s.admit(w, r, endpoint) {
		return
	}

	var rec model.ProtocolRecord
	if status, err := s.decodeBody(w, r, &rec); err != nil {
		s.errorResponse(w, endpoint, status, err.Error())
		return
	}

	ctx, span := tracing.Tracer().Start(r.Context(), "AnalyzeProtocol")
	span.SetAttributes(
		attribute.String("protocol.name", rec.Name),
		attribute.Int("protocol.chains", len(rec.ChainTVLs)),
	)
	defer span.End()

	analysis, err := s.analyzer.AnalyzeProtocol(rec)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.analysisError(w, endpoint, err)
		return
	}

	if s.metrics != nil {
		s.metrics.chainsAnalyzed.Observe(float64(len(analysis.TVLAnalysis.PerChain)))
		s.metrics.currentTVL.Observe(analysis.TVLAnalysis.Overall.CurrentTVL)
	}

	s.successResponse(w, endpoint, start, analysis)
}

// handleAnalyzeChain analyzes a bare chain series
func (s *Server) handleAnalyzeChain(w http.ResponseWriter, r *http.Request) {
	const endpoint = "chain"
	start := time.Now()

	if !s.admit(w, r, endpoint) {
		return
	}

	var points []model.RawPoint
	if status, err := s.decodeBody(w, r, &points); err != nil {
		s.errorResponse(w, endpoint, status, err.Error())
		return
	}

	ctx, span := tracing.Tracer().Start(r.Context(), "AnalyzeChainTVL")
	span.SetAttributes(attribute.Int("series.points", len(points)))
	defer span.End()

	result, err := s.analyzer.AnalyzeChainTVL(points)
	if err != nil {
		tracing.RecordError(ctx, err)
		s.analysisError(w, endpoint, err)
		return
	}

	s.successResponse(w, endpoint, start, result)
}

// admit enforces method and rate limit for the analysis endpoints
func (s *Server) admit(w http.ResponseWriter, r *http.Request, endpoint string) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.errorResponse(w, endpoint, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if s.rateLimit != nil && !s.rateLimit.Allow() {
		s.errorResponse(w, endpoint, http.StatusTooManyRequests, "rate limit exceeded")
		return false
	}
	return true
}

// analysisError maps analyzer failures to HTTP responses
func (s *Server) analysisError(w http.ResponseWriter, endpoint string, err error) {
	var noData *aggregate.NoValidDataError
	if errors.As(err, &noData) {
		if s.metrics != nil {
			s.metrics.noDataCounter.WithLabelValues(noData.Scope).Inc()
		}
		s.errorResponse(w, endpoint, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.errorResponse(w, endpoint, http.StatusInternalServerError, err.Error())
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"version":   version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus provides service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "operational",
		"uptime":  time.Since(s.startTime).String(),
		"version": version,
		"configuration": map[string]any{
			"request_timeout": s.config.RequestTimeout.String(),
			"max_body_bytes":  s.config.MaxBodyBytes,
			"rate_limit_rps":  s.config.RateLimitRPS,
			"metrics":         s.config.EnableMetrics,
		},
	})
}

// handleMetrics exposes Prometheus metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.gatherer == nil {
		http.Error(w, "Metrics disabled", http.StatusServiceUnavailable)
		return
	}

	promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
