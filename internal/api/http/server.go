package apihttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"moviechat/recommendservice/internal/domain"
)

// RecommendService is the slice of the recommendation service the HTTP layer
// depends on.
type RecommendService interface {
	Recommend(ctx context.Context, text string) (domain.RecommendResponse, error)
	ExtractFilters(text string) domain.FilterSet
	Listing() domain.VocabularyListing
	Enabled() bool
}

type Server struct {
	recommend RecommendService
	logger    *slog.Logger
}

const maxMessageLength = 500

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(recommendService RecommendService, options ...ServerOption) *Server {
	server := &Server{
		recommend: recommendService,
		logger:    slog.Default(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/get", s.handleRecommend)
	mux.HandleFunc("/filters", s.handleFilters)
	mux.HandleFunc("/vocabulary", s.handleVocabulary)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "movie-recommend",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, rateLimitMiddleware(50, 100, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// handleRecommend answers GET /get?msg=<free text> with the original chatbot
// wire shape: {"response": {"recommendations": [...], "note": "..."}}.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/get" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recommend == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}

	message := strings.TrimSpace(r.URL.Query().Get("msg"))
	if message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "msg is required")
		return
	}
	if len(message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "msg too long (max 500 characters)")
		return
	}

	response, err := s.recommend.Recommend(r.Context(), message)
	if err != nil {
		s.logger.Warn("recommend request failed",
			slog.String("msg", truncate(message, 80)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation failed")
		return
	}

	s.logger.Info("recommend completed",
		slog.String("msg", truncate(message, 80)),
		slog.Int("recommendations", len(response.Recommendations)),
	)
	writeJSON(w, http.StatusOK, map[string]any{"response": response})
}

// handleFilters exposes the raw extraction result for a message, useful for
// debugging why a request mapped to a particular catalog query.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/filters" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recommend == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}

	message := strings.TrimSpace(r.URL.Query().Get("msg"))
	if message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "msg is required")
		return
	}
	if len(message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "msg too long (max 500 characters)")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"msg":     message,
		"filters": s.recommend.ExtractFilters(message),
	})
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/vocabulary" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.recommend == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "recommendation service is not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.recommend.Listing())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
