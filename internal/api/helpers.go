package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kamilpajak/humanorai/internal/classifier"
	"github.com/kamilpajak/humanorai/internal/database"
	"github.com/kamilpajak/humanorai/pkg/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	previewRunes        = 220
)

// parseLimit reads the "limit" query parameter.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return min(limit, maxHistoryLimit), nil
}

// textPreview flattens newlines and keeps the first previewRunes runes.
func textPreview(text string) string {
	flat := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if utf8.RuneCountInString(flat) <= previewRunes {
		return flat
	}
	return string([]rune(flat)[:previewRunes])
}

// modelAI returns the ai percentage reported by the named model, if any.
func modelAI(scores []models.ModelScore, name string) *float64 {
	for _, s := range scores {
		if s.Name == name {
			v := s.AIPercent
			return &v
		}
	}
	return nil
}

func historyParams(text, label string, scores []models.ModelScore) database.CreateHistoryParams {
	return database.CreateHistoryParams{
		TextPreview: textPreview(text),
		TextLen:     utf8.RuneCountInString(text),
		FinalLabel:  label,
		LogRegAI:    modelAI(scores, classifier.ModelLogReg),
		SVMAI:       modelAI(scores, classifier.ModelSVMCalibrated),
		NBAI:        modelAI(scores, classifier.ModelMultinomialNB),
	}
}
