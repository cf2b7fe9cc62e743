package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hakan-sariman/webhook-inbox/internal/metrics"
	"github.com/hakan-sariman/webhook-inbox/internal/model"
	"github.com/hakan-sariman/webhook-inbox/internal/service"
	"github.com/hakan-sariman/webhook-inbox/internal/storage"
	"go.uber.org/zap"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Signature"

// MessageService is the ingest/query surface the server needs.
type MessageService interface {
	Ingest(ctx context.Context, rawBody []byte, providedSig string) (service.Result, error)
	ListMessages(ctx context.Context, q storage.Query) (*model.Page, error)
	Stats(ctx context.Context) (*model.Stats, error)
	Ready(ctx context.Context) error
}

// Server is the API server
type Server struct {
	cfg     ServerCfg
	msgSvc  MessageService
	metrics *metrics.Metrics
	log     *zap.Logger
	http    *http.Server
}

// ServerCfg is the configuration for the API server
type ServerCfg struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
}

// NewServer creates a new API server
// and registers the routes
func NewServer(cfg ServerCfg, msgSvc MessageService, m *metrics.Metrics, log *zap.Logger) *Server {
	r := mux.NewRouter()
	s := &Server{
		cfg:     cfg,
		msgSvc:  msgSvc,
		metrics: m,
		log:     log,
	}

	// instrument first so counters and latency fire on every branch,
	// panics included
	r.Use(s.instrument, s.recoverer)

	r.HandleFunc("/webhook", s.webhook).Methods("POST")
	r.HandleFunc("/messages", s.listMessages).Methods("GET")
	r.HandleFunc("/stats", s.stats).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")
	r.HandleFunc("/health/live", s.live).Methods("GET")
	r.HandleFunc("/health/ready", s.ready).Methods("GET")

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Start starts the API server
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// statusWriter captures the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument records the HTTP counter, the latency histogram and one
// structured request log line for every request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rid := uuid.New().String()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		latencyMs := float64(time.Since(start).Microseconds()) / 1000.0
		s.metrics.IncHTTP(r.URL.Path, ww.status)
		s.metrics.ObserveLatency(r.URL.Path, latencyMs)
		s.log.Info("request",
			zap.String("request_id", rid),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Float64("latency_ms", latencyMs),
		)
	})
}

// recoverer converts a panic into a 500 once, at the orchestration
// boundary, so the instrument middleware above it still fires.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
