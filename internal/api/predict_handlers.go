package api

import (
	"math"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/kamilpajak/humanorai/internal/aggregate"
	"go.uber.org/zap"
)

type predictRequest struct {
	Text string `json:"text"`
}

type predictionJSON struct {
	Model    string  `json:"model"`
	AIPct    float64 `json:"ai_pct"`
	HumanPct float64 `json:"human_pct"`
}

type finalJSON struct {
	Label       string  `json:"label"`
	Rule        string  `json:"rule"`
	VotesAI     int     `json:"votes_ai"`
	AIPctAvg    float64 `json:"ai_pct_avg"`
	HumanPctAvg float64 `json:"human_pct_avg"`
}

type predictResponse struct {
	TextLen     int              `json:"text_len"`
	Final       finalJSON        `json:"final"`
	Predictions []predictionJSON `json:"predictions"`
}

// handlePredict classifies the posted text and records it in the history.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req predictRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text empty")
		return
	}

	scores, err := s.classifier.Classify(r.Context(), text)
	if err != nil {
		s.logger.Error("classification failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "classification failed")
		return
	}

	verdict := aggregate.Aggregate(scores, "")
	if _, err := s.db.CreateHistory(r.Context(), historyParams(text, verdict.Label, scores)); err != nil {
		s.logger.Error("failed to store prediction", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	resp := predictResponse{
		TextLen: utf8.RuneCountInString(text),
		Final: finalJSON{
			Label:   verdict.Label,
			Rule:    "majority_vote",
			VotesAI: aggregate.Votes(scores),
		},
		Predictions: make([]predictionJSON, 0, len(scores)),
	}
	var sum float64
	for _, sc := range scores {
		resp.Predictions = append(resp.Predictions, predictionJSON{Model: sc.Name, AIPct: sc.AIPercent, HumanPct: sc.HumanPercent})
		sum += sc.AIPercent
	}
	if len(scores) > 0 {
		resp.Final.AIPctAvg = round2(sum / float64(len(scores)))
		resp.Final.HumanPctAvg = round2(100 - resp.Final.AIPctAvg)
	}

	writeJSON(w, http.StatusOK, resp)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
