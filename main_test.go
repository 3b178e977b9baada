package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/kamilpajak/humanorai/internal/history"
	"github.com/kamilpajak/humanorai/internal/session"
	"github.com/kamilpajak/humanorai/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func threeModels(ai1, ai2, ai3 float64) []models.ModelScore {
	return []models.ModelScore{
		{Name: "logreg", AIPercent: ai1, HumanPercent: 100 - ai1},
		{Name: "svm_calibrated", AIPercent: ai2, HumanPercent: 100 - ai2},
		{Name: "multinomial_nb", AIPercent: ai3, HumanPercent: 100 - ai3},
	}
}

func TestPrintResult_Vote(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, &models.PredictionResult{
		TextLength: 72,
		Models:     threeModels(72.5, 50, 10),
		Verdict:    models.Verdict{Label: "ai", Source: models.SourceVote},
	})

	s := out.String()
	assert.Contains(t, s, "Sonuç: AI\n")
	assert.Contains(t, s, "Metin uzunluğu: 72 (majority vote)")
	assert.Contains(t, s, "logreg — AI %72.5 / Human %27.5")
	assert.Contains(t, s, "svm_calibrated — AI %50 / Human %50")
	assert.Contains(t, s, "█")
}

func TestPrintResult_BackendLabel(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, &models.PredictionResult{
		TextLength: 10,
		Models:     threeModels(80, 80, 80),
		Verdict:    models.Verdict{Label: "human", Source: models.SourceBackend},
	})

	assert.Contains(t, out.String(), "Sonuç: HUMAN\n")
	assert.NotContains(t, out.String(), "majority vote")
}

func TestPrintSessionState_Failed(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := printSessionState(&stdout, &stderr, session.State{Status: session.Failed, Message: "API 500: boom"})

	assert.ErrorIs(t, err, errShown)
	assert.Contains(t, stderr.String(), "Error: API 500: boom")
	assert.Empty(t, stdout.String())
}

func TestPrintSessionState_JSON(t *testing.T) {
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	var stdout, stderr bytes.Buffer
	err := printSessionState(&stdout, &stderr, session.State{
		Status: session.Succeeded,
		Result: &models.PredictionResult{TextLength: 3, Models: threeModels(1, 2, 3), Verdict: models.Verdict{Label: "human", Source: models.SourceVote}},
	})
	require.NoError(t, err)

	var got models.PredictionResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "human", got.Verdict.Label)
	assert.Len(t, got.Models, 3)
}

func TestPrintHistory_Empty(t *testing.T) {
	var stdout, stderr bytes.Buffer
	printHistory(&stdout, &stderr, history.View{Items: []models.HistoryEntry{}})
	assert.Equal(t, "Henüz kayıt yok.\n", stdout.String())
}

func TestPrintHistory_ErrorShowsNoData(t *testing.T) {
	var stdout, stderr bytes.Buffer
	printHistory(&stdout, &stderr, history.View{Err: "History alınamadı: API 500"})
	assert.Contains(t, stderr.String(), "History alınamadı")
	assert.Equal(t, "Henüz kayıt yok.\n", stdout.String())
}

func TestPrintHistory_Entries(t *testing.T) {
	var stdout, stderr bytes.Buffer
	printHistory(&stdout, &stderr, history.View{Items: []models.HistoryEntry{
		{
			ID: "2", CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), TextLength: 40,
			FinalLabel: "ai", TextPreview: "An abstract",
			ModelAIPercent: map[string]float64{"logreg": 91.2, "svm": 80, "nb": 70},
		},
		{ID: "1", FinalLabel: "human", TextPreview: "hello", ModelAIPercent: map[string]float64{"logreg": 5}},
	}})

	s := stdout.String()
	assert.Contains(t, s, "— len: 40")
	assert.Contains(t, s, "Sonuç: AI")
	assert.Contains(t, s, "An abstract...")
	assert.Contains(t, s, "logreg AI%: 91.2 | svm AI%: 80 | nb AI%: 70")
	assert.Contains(t, s, "Sonuç: HUMAN")
	assert.Contains(t, s, "- — len: 0")
	assert.Contains(t, s, "logreg AI%: 5 | svm AI%: - | nb AI%: -")
	assert.Less(t, strings.Index(s, "An abstract"), strings.Index(s, "hello"))
}

func TestReadText(t *testing.T) {
	got, err := readText(strings.NewReader("ignored"), []string{"two", "words"})
	require.NoError(t, err)
	assert.Equal(t, "two words", got)

	got, err = readText(strings.NewReader("from stdin\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin\n", got)

	got, err = readText(strings.NewReader("dash"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "dash", got)
}

func TestPercentBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", barWidth), percentBar(0))
	assert.Equal(t, strings.Repeat("█", barWidth), percentBar(100))
	assert.Equal(t, strings.Repeat("█", barWidth), percentBar(140))
	assert.Equal(t, strings.Repeat("░", barWidth), percentBar(-3))
	assert.Equal(t, strings.Repeat("█", 12)+strings.Repeat("░", 12), percentBar(50))
}
