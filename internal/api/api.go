// Package api provides the prediction and history HTTP API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kamilpajak/humanorai/internal/database"
	"github.com/kamilpajak/humanorai/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HistoryStore persists predictions.
type HistoryStore interface {
	CreateHistory(ctx context.Context, params database.CreateHistoryParams) (*database.HistoryRecord, error)
	ListHistory(ctx context.Context, limit int) ([]database.HistoryRecord, error)
	ClearHistory(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// Classifier scores text with the model ensemble.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]models.ModelScore, error)
}

// Server is the API server.
type Server struct {
	db         HistoryStore
	classifier Classifier
	limiter    *rate.Limiter
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds API server configuration.
type Config struct {
	DB         HistoryStore
	Classifier Classifier
	Logger     *zap.Logger

	// PredictRPS throttles /api/predict; zero disables throttling.
	PredictRPS   float64
	PredictBurst int
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		db:         cfg.DB,
		classifier: cfg.Classifier,
		logger:     cfg.Logger,
		mux:        http.NewServeMux(),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if cfg.PredictRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.PredictRPS), max(cfg.PredictBurst, 1))
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/predict", s.handlePredict)
	s.mux.HandleFunc("GET /api/history", s.handleListHistory)
	s.mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(rec, r)

	s.logger.Info("request",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("health check: database unreachable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
