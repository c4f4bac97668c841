// Package http exposes the transaction REST API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/events"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

const (
	listCacheSize = 200
	listCacheTTL  = 5 * time.Minute
)

// Server serves the transaction API over an embedded http.Server.
type Server struct {
	http.Server

	repo        storage.Repository
	publisher   *events.Client
	logger      *log.Logger
	httpLog     *log.HTTPLogger
	maxPageSize int

	rateLimiter *rateLimiter

	// listCache memoizes list envelopes per normalized filter and is
	// purged on every successful write.
	listCache *cache.LRU[listResponse]
	janitor   *cache.Janitor

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. The publisher may be nil when no broker is configured.
func NewServer(addr string, repo storage.Repository, publisher *events.Client, logger *log.Logger, maxPageSize int) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:        repo,
		publisher:   publisher,
		logger:      logger,
		httpLog:     log.NewHTTPLogger(logger),
		maxPageSize: maxPageSize,
		rateLimiter: newRateLimiter(),
		listCache:   cache.NewLRU[listResponse](listCacheSize, listCacheTTL),
		janitor:     cache.NewJanitor(),
	}

	s.janitor.Register(s.listCache)
	s.janitor.Start(10 * time.Minute)

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleList))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreate))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withMiddleware(s.handleUpdate))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDelete))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	return s
}

// Shutdown stops background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting on mutating
// methods, and request-scoped structured logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		reqLogger := s.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, reqLogger)
		r = r.WithContext(ctx)

		s.httpLog.LogStart(ctx, r, clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(ctx, "rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.LogEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady probes the repository with a cheap query so readiness
// reflects store connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, _, err := s.repo.List(ctx, probeFilter()); err != nil {
		s.logger.ErrorContext(ctx, "readiness probe failed", log.FieldError, err.Error())
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
