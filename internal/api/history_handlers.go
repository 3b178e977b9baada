package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type historyItemJSON struct {
	ID          string   `json:"id"`
	CreatedAt   string   `json:"created_at"`
	TextLen     int      `json:"text_len"`
	FinalLabel  string   `json:"final_label"`
	TextPreview string   `json:"text_preview"`
	LogRegAI    *float64 `json:"logreg_ai"`
	SVMAI       *float64 `json:"svm_ai"`
	NBAI        *float64 `json:"nb_ai"`
}

// handleListHistory returns the most recent predictions.
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.db.ListHistory(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}

	items := make([]historyItemJSON, 0, len(records))
	for _, h := range records {
		items = append(items, historyItemJSON{
			ID:          h.ID.String(),
			CreatedAt:   h.CreatedAt.UTC().Format(time.RFC3339Nano),
			TextLen:     h.TextLen,
			FinalLabel:  h.FinalLabel,
			TextPreview: h.TextPreview,
			LogRegAI:    h.LogRegAI,
			SVMAI:       h.SVMAI,
			NBAI:        h.NBAI,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleClearHistory deletes every stored prediction.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.db.ClearHistory(r.Context())
	if err != nil {
		s.logger.Error("failed to clear history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	s.logger.Info("history cleared", zap.Int64("deleted", n))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
