// Package gateway calls the hosted model gateway that turns recent biometric
// samples into forecasts and coaching nudges. The gateway owns the prompt and
// model choice; this client only moves JSON.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://gateway.neurostate.app"

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// SamplePoint is the trimmed-down sample shape sent to the gateway.
type SamplePoint struct {
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

type ForecastRequest struct {
	UserID  string        `json:"user_id"`
	Days    int           `json:"days"`
	Samples []SamplePoint `json:"samples"`
}

type ForecastPayload struct {
	ForecastDate          string `json:"forecast_date"` // YYYY-MM-DD
	OptimalTrainingWindow string `json:"optimal_training_window"`
	EnergyPrediction      []struct {
		Hour  int     `json:"hour"`
		Level float64 `json:"level"`
	} `json:"energy_prediction"`
	RecoveryPrediction float64 `json:"recovery_prediction"`
	InterventionTiming struct {
		Morning   []string `json:"morning"`
		Afternoon []string `json:"afternoon"`
		Evening   []string `json:"evening"`
	} `json:"intervention_timing"`
}

type NudgeRequest struct {
	UserID  string        `json:"user_id"`
	Samples []SamplePoint `json:"samples"`
}

type NudgePayload struct {
	NudgeType   string  `json:"nudge_type"`
	Category    string  `json:"category"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Impact      string  `json:"impact"`
	Confidence  float64 `json:"confidence"`
	Timing      string  `json:"timing"`
	Priority    string  `json:"priority"`
	ActionLabel string  `json:"action_label"`
}

// Forecasts requests forward-looking predictions for the coming days.
func (c *Client) Forecasts(ctx context.Context, req ForecastRequest) ([]ForecastPayload, error) {
	var parsed struct {
		Forecasts []ForecastPayload `json:"forecasts"`
	}
	if err := c.post(ctx, "/v1/forecasts", req, &parsed); err != nil {
		return nil, err
	}
	return parsed.Forecasts, nil
}

// Nudges requests coaching nudges derived from the sample window.
func (c *Client) Nudges(ctx context.Context, req NudgeRequest) ([]NudgePayload, error) {
	var parsed struct {
		Nudges []NudgePayload `json:"nudges"`
	}
	if err := c.post(ctx, "/v1/nudges", req, &parsed); err != nil {
		return nil, err
	}
	return parsed.Nudges, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, out interface{}) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("missing gateway API key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	// Generation is expensive; the key lets the gateway drop duplicates.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &errBody); jsonErr == nil && errBody.Error != "" {
			return fmt.Errorf("gateway: %s", errBody.Error)
		}
		return fmt.Errorf("gateway request failed with status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}
