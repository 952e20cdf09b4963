// Package http exposes the analysis engine over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"finsync/internal/services"
)

type Server struct {
	http.Server
	analysis    *services.AnalysisService
	sync        *services.SyncService
	rateLimiter *rateLimiter
	logger      *slog.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. sync may be nil when no institutions are configured.
func NewServer(addr string, analysis *services.AnalysisService, syncSvc *services.SyncService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		analysis:    analysis,
		sync:        syncSvc,
		rateLimiter: newRateLimiter(),
		logger:      logger.With("component", "http"),
	}

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/recurring/analysis/{username}", s.withMiddleware(s.handleRecurringAnalysis))
	mux.HandleFunc("GET /api/recurring/prediction/{username}", s.withMiddleware(s.handlePrediction))
	mux.HandleFunc("GET /api/recurring/categories/{username}", s.withMiddleware(s.handleCategories))
	mux.HandleFunc("GET /api/recurring/anomalies/{username}", s.withMiddleware(s.handleAnomalies))
	mux.HandleFunc("GET /api/recurring/summary/{username}", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/recurring/calendar/{username}", s.withMiddleware(s.handleCalendar))

	mux.HandleFunc("GET /api/transactions/{username}/monthly", s.withMiddleware(s.handleMonthlyTransactions))
	mux.HandleFunc("GET /api/transactions/{username}/daily", s.withMiddleware(s.handleDailyTransactions))
	mux.HandleFunc("GET /api/transactions/{username}/summary", s.withMiddleware(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/transactions/{username}/multi-summary", s.withMiddleware(s.handleMultiMonthSummary))
	mux.HandleFunc("GET /api/transactions/{username}/statistics", s.withMiddleware(s.handleMonthlyStatistics))
	mux.HandleFunc("GET /api/transactions/{username}/pattern", s.withMiddleware(s.handleTransactionPattern))

	mux.HandleFunc("POST /api/mydata/sync/{username}", s.withMiddleware(s.handleSync))

	return s
}

// Mount attaches an extra handler tree under the given prefix. Used for
// the mock institution endpoints in local development.
func (s *Server) Mount(prefix string, h http.Handler) {
	mux, ok := s.Server.Handler.(*http.ServeMux)
	if !ok {
		return
	}
	mux.Handle(prefix, http.StripPrefix(prefix[:len(prefix)-1], h))
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds request tracing, rate limiting, and access logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-Id", requestID)

		if !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				"request_id", requestID, "client_ip", clientIP, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
