package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kamilpajak/humanorai/pkg/models"
)

// Prediction is a decoded predict response. FinalLabel is empty when the
// backend did not assert a verdict.
type Prediction struct {
	TextLength int
	Scores     []models.ModelScore
	FinalLabel string
}

// HistoryItem is one entry of the history list.
type HistoryItem = models.HistoryEntry

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	TextLen     int `json:"text_len"`
	Predictions []struct {
		Model    string  `json:"model"`
		AIPct    float64 `json:"ai_pct"`
		HumanPct float64 `json:"human_pct"`
	} `json:"predictions"`
	Final *struct {
		Label string `json:"label"`
	} `json:"final"`
}

func (r *predictResponse) normalize() *Prediction {
	p := &Prediction{
		TextLength: max(r.TextLen, 0),
		Scores:     make([]models.ModelScore, 0, len(r.Predictions)),
	}
	for _, m := range r.Predictions {
		p.Scores = append(p.Scores, models.ModelScore{
			Name:         m.Model,
			AIPercent:    m.AIPct,
			HumanPercent: m.HumanPct,
		})
	}
	if r.Final != nil {
		p.FinalLabel = r.Final.Label
	}
	return p
}

type historyResponse struct {
	Items []historyItem `json:"items"`
}

type historyItem struct {
	ID          flexID   `json:"id"`
	CreatedAt   string   `json:"created_at"`
	TextLen     int      `json:"text_len"`
	FinalLabel  string   `json:"final_label"`
	TextPreview string   `json:"text_preview"`
	LogRegAI    *float64 `json:"logreg_ai"`
	SVMAI       *float64 `json:"svm_ai"`
	NBAI        *float64 `json:"nb_ai"`
}

func (r *historyResponse) normalize() []HistoryItem {
	items := make([]HistoryItem, 0, len(r.Items))
	for _, it := range r.Items {
		e := HistoryItem{
			ID:             string(it.ID),
			CreatedAt:      parseTimestamp(it.CreatedAt),
			TextLength:     max(it.TextLen, 0),
			FinalLabel:     it.FinalLabel,
			TextPreview:    it.TextPreview,
			ModelAIPercent: make(map[string]float64, len(models.HistoryModels)),
		}
		setIfPresent(e.ModelAIPercent, models.ModelLogReg, it.LogRegAI)
		setIfPresent(e.ModelAIPercent, models.ModelSVM, it.SVMAI)
		setIfPresent(e.ModelAIPercent, models.ModelNB, it.NBAI)
		items = append(items, e)
	}
	return items
}

func setIfPresent(m map[string]float64, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

// timestampLayouts are tried in order; the backend emits RFC 3339 but older
// rows may lack a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// flexID accepts a JSON string or number and keeps it as opaque text.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = flexID(n.String())
	return nil
}
