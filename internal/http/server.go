// Package http exposes the tracker's REST API.
package http

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"finman/internal/config"
	"finman/internal/core"
	"finman/internal/dashboard"
	"finman/internal/log"
)

// Service interfaces consumed by the handlers. The concrete services
// live in internal/services; tests substitute fakes.
type (
	PersonService interface {
		List(ctx context.Context) ([]core.Person, error)
		Get(ctx context.Context, id int64) (core.Person, error)
		Create(ctx context.Context, p core.Person) (core.Person, error)
		Update(ctx context.Context, p core.Person) error
		Delete(ctx context.Context, id int64) error
	}

	CategoryService interface {
		List(ctx context.Context) ([]core.Category, error)
		Get(ctx context.Context, id int64) (core.Category, error)
		Create(ctx context.Context, c core.Category) (core.Category, error)
		Update(ctx context.Context, c core.Category) error
		Delete(ctx context.Context, id int64) error
	}

	TransactionService interface {
		List(ctx context.Context) ([]core.Transaction, error)
		Get(ctx context.Context, id int64) (core.Transaction, error)
		Create(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		Update(ctx context.Context, tx core.Transaction) error
		Delete(ctx context.Context, id int64) error
	}

	DashboardService interface {
		TotalsByPerson(ctx context.Context) (dashboard.PersonReport, error)
		TotalsByCategory(ctx context.Context) (dashboard.CategoryReport, error)
	}
)

type Server struct {
	http.Server

	persons       PersonService
	categories    CategoryService
	transactions  TransactionService
	dashboard     DashboardService
	db            *sql.DB
	allowedOrigin string

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run
// server. db is only used by the readiness probe.
func NewServer(cfg *config.Config, persons PersonService, categories CategoryService, transactions TransactionService, dash DashboardService, db *sql.DB) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		persons:       persons,
		categories:    categories,
		transactions:  transactions,
		dashboard:     dash,
		db:            db,
		allowedOrigin: cfg.AllowedOrigin,
		rateLimiter:   newRateLimiter(cfg.RateLimit, cfg.RateLimitWindow),
		metrics:       &securityMetrics{},
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/stats", s.withMiddleware(s.handleStats))

	mux.HandleFunc("/api/persons", s.withMiddleware(s.handlePersons))
	mux.HandleFunc("/api/persons/{id}", s.withMiddleware(s.handlePersonByID))
	mux.HandleFunc("/api/categories", s.withMiddleware(s.handleCategories))
	mux.HandleFunc("/api/categories/{id}", s.withMiddleware(s.handleCategoryByID))
	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/api/transactions/{id}", s.withMiddleware(s.handleTransactionByID))
	mux.HandleFunc("/api/dashboard/totals-by-person", s.withMiddleware(s.handleTotalsByPerson))
	mux.HandleFunc("/api/dashboard/totals-by-category", s.withMiddleware(s.handleTotalsByCategory))

	return s
}

// withMiddleware adds security headers, CORS, request logging and rate
// limiting on writes.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		// Handlers further down pick the request-scoped logger out of
		// the context.
		reqLogger := log.FromContext(r.Context()).With(log.FieldRequestID, requestID)
		ctx := log.IntoContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request",
				log.FieldRequestID, requestID,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, clientIP)
		}

		isWrite := r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete
		if isWrite && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(s.rateLimiter.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if s.allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
			w.Header().Set("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Set("Access-Control-Max-Age", "3600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
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

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// handleStats reports security counters accumulated since process start.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter's cleanup goroutine and drains the
// HTTP server.
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
