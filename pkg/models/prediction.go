package models

// Label is the aggregated decision shown to the user.
type Label = string

const (
	LabelAI    Label = "ai"
	LabelHuman Label = "human"
)

// VerdictSource tells where a verdict label came from.
type VerdictSource string

const (
	SourceBackend VerdictSource = "backend"
	SourceVote    VerdictSource = "vote"
)

// ModelScore is a single classifier's output for one text.
// AIPercent + HumanPercent is expected to be 100 but never enforced.
type ModelScore struct {
	Name         string  `json:"name"`
	AIPercent    float64 `json:"ai_pct"`
	HumanPercent float64 `json:"human_pct"`
}

// Verdict is the single aggregated decision for a prediction.
type Verdict struct {
	Label  Label         `json:"label"`
	Source VerdictSource `json:"source"`
}

// PredictionResult is the normalized outcome of one predict request.
type PredictionResult struct {
	TextLength int          `json:"text_len"`
	Models     []ModelScore `json:"models"`
	Verdict    Verdict      `json:"verdict"`
}
