// Package aggregate combines per-model classifier scores into a single verdict.
package aggregate

import "github.com/kamilpajak/humanorai/pkg/models"

const (
	// AIThreshold is the ai percentage at or above which a model votes "ai".
	AIThreshold = 50.0

	// MinAIVotes is the number of "ai" votes needed for an "ai" verdict.
	// The ensemble is fixed at three models, so this is a literal 2, not N/2.
	MinAIVotes = 2
)

// Aggregate returns the verdict for scores. A non-empty backendLabel is
// authoritative and returned as-is; otherwise the models vote.
func Aggregate(scores []models.ModelScore, backendLabel string) models.Verdict {
	if backendLabel != "" {
		return models.Verdict{Label: backendLabel, Source: models.SourceBackend}
	}
	return models.Verdict{Label: Vote(scores), Source: models.SourceVote}
}

// Vote applies the majority rule to scores. An empty list is "human".
func Vote(scores []models.ModelScore) models.Label {
	if Votes(scores) >= MinAIVotes {
		return models.LabelAI
	}
	return models.LabelHuman
}

// Votes counts the models whose ai percentage reaches AIThreshold.
func Votes(scores []models.ModelScore) int {
	n := 0
	for _, s := range scores {
		if s.AIPercent >= AIThreshold {
			n++
		}
	}
	return n
}
