// Package classifier talks to the model-inference service that scores text.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kamilpajak/humanorai/pkg/models"
)

// Model names reported by the inference service.
const (
	ModelLogReg        = "logreg"
	ModelSVMCalibrated = "svm_calibrated"
	ModelMultinomialNB = "multinomial_nb"
)

// Client handles inference service interactions
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new inference client
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Classify scores text with every model of the ensemble, in service order.
func (c *Client) Classify(ctx context.Context, text string) ([]models.ModelScore, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inference service error: %s - %s", resp.Status, string(data))
	}

	var result struct {
		Error       string `json:"error"`
		Predictions []struct {
			Model    string  `json:"model"`
			AIPct    float64 `json:"ai_pct"`
			HumanPct float64 `json:"human_pct"`
		} `json:"predictions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	// The service reports rejected input in a 200 body.
	if result.Error != "" {
		return nil, fmt.Errorf("inference service rejected text: %s", result.Error)
	}

	scores := make([]models.ModelScore, 0, len(result.Predictions))
	for _, p := range result.Predictions {
		scores = append(scores, models.ModelScore{Name: p.Model, AIPercent: p.AIPct, HumanPercent: p.HumanPct})
	}
	return scores, nil
}
