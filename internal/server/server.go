// Package server exposes a loaded burn rate model over HTTP for chart
// renderers and dashboards.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bayneri/burnrate/internal/burnrate"
	"github.com/bayneri/burnrate/internal/planner"
	"github.com/bayneri/burnrate/internal/sweep"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// Bounds on a per-request sweep base.
	MinBase = 0.5
	MaxBase = 0.9999
)

type Config struct {
	Addr  string
	Model *burnrate.Model
	Plan  planner.Plan
	Sweep sweep.Options
	// MaxSamples caps the samples a curve request may ask for. Zero means
	// the configured Sweep.Samples.
	MaxSamples int
	Logger     *zap.Logger
}

type Server struct {
	http       *http.Server
	log        *zap.Logger
	model      *burnrate.Model
	plan       planner.Plan
	sweep      sweep.Options
	maxSamples int
	metrics    *Metrics
}

func New(cfg Config) (*Server, error) {
	if cfg.Model == nil {
		return nil, errors.New("server needs a model")
	}
	if err := cfg.Sweep.Validate(); err != nil {
		return nil, err
	}
	maxSamples := cfg.MaxSamples
	if maxSamples == 0 {
		maxSamples = cfg.Sweep.Samples
	}
	if maxSamples < 0 {
		return nil, errors.New("max samples must not be negative")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		log:        logger,
		model:      cfg.Model,
		plan:       cfg.Plan,
		sweep:      cfg.Sweep,
		maxSamples: maxSamples,
		metrics:    NewMetrics(),
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)
	r.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	r.HandleFunc("/v1/curve", s.Curve).Methods(http.MethodGet)
	r.HandleFunc("/v1/probe", s.Probe).Methods(http.MethodGet)
	r.HandleFunc("/v1/plan", s.PlanHandler).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("http server stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		elapsed := time.Since(start)
		route := routeName(r)
		s.metrics.observe(route, recorder.status, elapsed)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", recorder.status),
			zap.Duration("elapsed", elapsed))
	})
}
