// Package opsapi serves the operator HTTP surface: health, metrics, status and a
// read-only GraphQL endpoint. It exposes no user data.
package opsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"rent-reclaim-bot/internal/domain"
	"rent-reclaim-bot/internal/observability"
	"rent-reclaim-bot/internal/storage"
)

// PriceView exposes the cached price without triggering a refresh.
type PriceView interface {
	Snapshot() (domain.PriceSnapshot, bool)
}

// Deps are the read-only sources behind the API.
type Deps struct {
	Prices  PriceView
	ScanLog storage.ScanLogStore
	Workers func() int // busy dispatcher workers, optional
	Logger  logrus.FieldLogger
	Now     func() time.Time
}

// Server is the ops HTTP server.
type Server struct {
	deps    Deps
	logger  logrus.FieldLogger
	started time.Time
	srv     *http.Server
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	Started        time.Time `json:"started"`
	PriceUSD       float64   `json:"price_usd"`
	PriceFetchedAt *int64    `json:"price_fetched_at_ms,omitempty"`
	BusyWorkers    int       `json:"busy_workers"`
}

// NewServer creates a server listening on addr.
func NewServer(addr string, deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		deps:    deps,
		logger:  logger.WithField("component", "opsapi"),
		started: deps.Now(),
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the HTTP mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	// GraphQL
	mux.Handle("/graphql", newGraphQLHandler(s.deps, s.logger))

	return mux
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.srv.Addr).Info("starting ops HTTP server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := s.deps.Now()
	resp := StatusResponse{
		Status:  "running",
		Uptime:  now.Sub(s.started).Round(time.Second).String(),
		Started: s.started,
	}
	if s.deps.Prices != nil {
		if snap, ok := s.deps.Prices.Snapshot(); ok {
			resp.PriceUSD = snap.PriceUSD
			fetched := snap.FetchedAtMs
			resp.PriceFetchedAt = &fetched
		}
	}
	if s.deps.Workers != nil {
		resp.BusyWorkers = s.deps.Workers()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithError(err).Warn("encode status")
	}
}
