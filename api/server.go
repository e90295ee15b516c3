// Package api exposes the crawler over HTTP behind a token login.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aluiziolira/go-catalog-crawler/auth"
	"github.com/aluiziolira/go-catalog-crawler/models"
)

// Crawler runs one full crawl.
type Crawler interface {
	Run(ctx context.Context) ([]models.SiteEntry, error)
}

// Authenticator checks login credentials.
type Authenticator interface {
	Verify(email, password string) bool
}

// Tokens issues and checks access tokens.
type Tokens interface {
	Issue() (string, error)
	Valid(token string) bool
}

// Server routes API requests.
type Server struct {
	crawler Crawler
	users   Authenticator
	tokens  Tokens
	metrics http.Handler
	logger  *slog.Logger
}

// NewServer wires the handlers. metrics may be nil, in which case
// /metrics is not served.
func NewServer(crawler Crawler, users Authenticator, tokens Tokens, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		crawler: crawler,
		users:   users,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
	}
}

// Handler returns the routed handler with CORS applied to every response.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/crawl", s.handleCrawl)
	mux.HandleFunc("/api/{$}", s.handleCrawl)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics)
	}
	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		writeError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}
	token, ok := auth.ParseBearer(header)
	if !ok || !s.tokens.Valid(token) {
		writeError(w, http.StatusForbidden, "Invalid token")
		return
	}

	start := time.Now()
	sites, err := s.crawler.Run(r.Context())
	if err != nil {
		s.logger.Warn("crawl ended early",
			slog.Any("error", err),
			slog.Int("sites", len(sites)),
		)
		if r.Context().Err() != nil {
			return
		}
		if sites == nil {
			writeError(w, http.StatusInternalServerError, "Crawl failed")
			return
		}
	}
	if sites == nil {
		sites = []models.SiteEntry{}
	}
	s.logger.Info("crawl served",
		slog.Int("sites", len(sites)),
		slog.Duration("duration", time.Since(start)),
	)
	writeJSON(w, http.StatusOK, sites)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		writeError(w, http.StatusUnauthorized, "Authorization header missing")
		return
	}
	email, password, ok := auth.ParseBasic(header)
	if !ok || !s.users.Verify(email, password) {
		s.logger.Info("login rejected", slog.String("email", email))
		writeError(w, http.StatusForbidden, "Invalid email or password")
		return
	}

	token, err := s.tokens.Issue()
	if err != nil {
		s.logger.Error("issue token", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	s.logger.Info("login accepted", slog.String("email", email))
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", slog.Any("error", err))
	}
}
