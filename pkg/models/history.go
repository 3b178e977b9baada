package models

import "time"

// Fixed model keys carried by every history entry.
const (
	ModelLogReg = "logreg"
	ModelSVM    = "svm"
	ModelNB     = "nb"
)

// HistoryModels lists the per-model keys of a history entry in display order.
var HistoryModels = []string{ModelLogReg, ModelSVM, ModelNB}

// HistoryEntry is one stored prediction as returned by the backend.
type HistoryEntry struct {
	ID             string             `json:"id"`
	CreatedAt      time.Time          `json:"created_at"`
	TextLength     int                `json:"text_len"`
	FinalLabel     string             `json:"final_label"`
	TextPreview    string             `json:"text_preview"`
	ModelAIPercent map[string]float64 `json:"model_ai_pct"`
}
