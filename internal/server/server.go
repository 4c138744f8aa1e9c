// Package server provides the HTTP API for the brief intake backend.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/maharani/glowbrief/internal/analytics"
	"github.com/maharani/glowbrief/internal/cache"
	"github.com/maharani/glowbrief/internal/config"
	"github.com/maharani/glowbrief/internal/db"
	"github.com/maharani/glowbrief/internal/dispatch"
	"github.com/maharani/glowbrief/internal/intake"
	"github.com/maharani/glowbrief/internal/server/ratelimit"
)

// Store is the persistence surface the read and callback handlers need.
// *db.DB satisfies it; nil means the backend runs in mock mode.
type Store interface {
	GetSubmission(ctx context.Context, id uuid.UUID) (*db.Submission, error)
	GetPayload(ctx context.Context, submissionID uuid.UUID) ([]byte, error)
	GetLatestRun(ctx context.Context, submissionID uuid.UUID) (*db.WorkflowRun, error)
	ListSections(ctx context.Context, submissionID uuid.UUID) ([]db.ReportSection, error)
	UpdateSubmissionStatus(ctx context.Context, id uuid.UUID, status string) error
	UpsertSection(ctx context.Context, input *db.NewReportSection) (*db.ReportSection, error)
	CreateAuditLog(ctx context.Context, input *db.NewAuditLog) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	intake      *intake.Service
	analytics   *analytics.Logger
	resultCache *cache.ResultCache
	rateLimiter *ratelimit.Limiter
	database    *db.DB
}

// New creates a server instance from configuration. A missing database URL
// or production webhook puts the whole backend into mock mode: submissions
// are validated and acknowledged but nothing is persisted or dispatched.
func New(cfg *config.Config) (*Server, error) {
	analyticsLogger := analytics.New(cfg.AnalyticsEndpoint)
	dispatcher := dispatch.New(cfg)

	var store Store
	var intakeStore intake.Store
	var database *db.DB
	if cfg.MockMode() {
		log.Printf("[server] mock mode: DATABASE_URL or N8N_PRODUCTION_WEBHOOK not configured")
	} else {
		var err error
		database, err = db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		store = database
		intakeStore = database
	}

	var resultCache *cache.ResultCache
	if cfg.RedisURL != "" {
		var err error
		resultCache, err = cache.New(cfg.RedisURL)
		if err != nil {
			// Caching is an optimization; a broken cache must not keep the
			// backend down.
			log.Printf("[server] result cache disabled: %v", err)
		}
	}

	s := newServer(intake.New(intakeStore, dispatcher, analyticsLogger), store, analyticsLogger, resultCache)
	s.database = database
	s.httpServer.Addr = fmt.Sprintf(":%d", cfg.Port)
	return s, nil
}

// newServer wires the handler graph. Split from New so tests can inject
// fakes.
func newServer(intakeSvc *intake.Service, store Store, analyticsLogger *analytics.Logger, resultCache *cache.ResultCache) *Server {
	s := &Server{
		store:       store,
		intake:      intakeSvc,
		analytics:   analyticsLogger,
		resultCache: resultCache,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("GET /result/{id}", s.handleResult)
	mux.HandleFunc("GET /result/{id}/stream", s.handleResultStream)
	mux.HandleFunc("PATCH /sync", s.handleSync)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.resultCache.Close()
	if s.database != nil {
		s.database.Close()
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Webhook-Secret")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientIP(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	mode := "backend"
	if s.intake.MockMode() {
		mode = "mock"
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "mode": mode})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientIP extracts the requester address, preferring forwarding
// headers set by the edge proxy.
func (s *Server) extractClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
