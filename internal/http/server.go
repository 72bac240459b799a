// Package http exposes the JSON API: dashboard reports, transaction and goal
// CRUD, couple pairing, chat, and report export.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bilancio/internal/cache"
	"bilancio/internal/chat"
	"bilancio/internal/export"
	"bilancio/internal/services"
	"bilancio/internal/store"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

type Server struct {
	http.Server
	backend      store.Backend
	transactions *services.TransactionService
	reports      *services.ReportService
	pairing      *services.PairingService
	chat         *chat.Service
	exporter     export.ReportExporter

	rateLimiter  *rateLimiter
	reportCache  *cache.LRUCache[*services.Report]
	cacheManager *cache.Manager
	upgrader     websocket.Upgrader

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run server. The chat
// service and exporter may be nil; their endpoints then answer 503.
func NewServer(
	addr string,
	backend store.Backend,
	transactions *services.TransactionService,
	reports *services.ReportService,
	pairing *services.PairingService,
	chatSvc *chat.Service,
	exporter export.ReportExporter,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		backend:      backend,
		transactions: transactions,
		reports:      reports,
		pairing:      pairing,
		chat:         chatSvc,
		exporter:     exporter,
		rateLimiter:  newRateLimiter(),
		reportCache:  cache.NewLRUCache[*services.Report](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("GET /api/insights", s.withMiddleware(s.handleInsights))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))

	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withMiddleware(s.handleCreateGoal))
	mux.HandleFunc("PATCH /api/goals/{id}", s.withMiddleware(s.handleUpdateGoalAmount))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withMiddleware(s.handleDeleteGoal))
	mux.HandleFunc("GET /api/goals/progress", s.withMiddleware(s.handleGoalProgress))

	mux.HandleFunc("POST /api/invitations", s.withMiddleware(s.handleCreateInvitation))
	mux.HandleFunc("POST /api/invitations/accept", s.withMiddleware(s.handleAcceptInvitation))

	mux.HandleFunc("POST /api/chat", s.withMiddleware(s.handleChat))
	mux.HandleFunc("GET /ws/chat", s.withMiddleware(s.handleChatSocket))

	mux.HandleFunc("POST /api/reports/export", s.withMiddleware(s.handleExportReport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, request IDs, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Writes and chat completions are the expensive operations.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		setSecurityHeaders(w)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
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

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// coupleID identifies the authenticated couple. Identity comes from the
// X-Couple-ID header set by the auth proxy in front of this service; a query
// parameter fallback keeps local development convenient.
func coupleID(r *http.Request) (string, error) {
	if id := strings.TrimSpace(r.Header.Get("X-Couple-ID")); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(r.URL.Query().Get("couple_id")); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("missing couple identity")
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
