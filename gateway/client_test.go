package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecasts(t *testing.T) {
	var gotAuth, gotIdem string
	var gotBody ForecastRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/forecasts", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"forecasts":[{
			"forecast_date":"2026-03-15",
			"optimal_training_window":"10:00-12:00",
			"energy_prediction":[{"hour":10,"level":82.5}],
			"recovery_prediction":74,
			"intervention_timing":{"morning":["sunlight"],"afternoon":[],"evening":["magnesium"]}
		}]}`))
	}))
	defer srv.Close()

	c := &Client{APIKey: "test-key", BaseURL: srv.URL}
	forecasts, err := c.Forecasts(context.Background(), ForecastRequest{
		UserID: "u1",
		Days:   7,
		Samples: []SamplePoint{
			{MetricType: "hrv", Value: 62, RecordedAt: time.Now()},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.NotEmpty(t, gotIdem)
	assert.Equal(t, "u1", gotBody.UserID)
	require.Len(t, forecasts, 1)
	assert.Equal(t, "2026-03-15", forecasts[0].ForecastDate)
	assert.Equal(t, "10:00-12:00", forecasts[0].OptimalTrainingWindow)
	require.Len(t, forecasts[0].EnergyPrediction, 1)
	assert.Equal(t, 10, forecasts[0].EnergyPrediction[0].Hour)
	assert.InDelta(t, 74, forecasts[0].RecoveryPrediction, 0.001)
	assert.Equal(t, []string{"sunlight"}, forecasts[0].InterventionTiming.Morning)
}

func TestNudges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/nudges", r.URL.Path)
		_, _ = w.Write([]byte(`{"nudges":[{
			"nudge_type":"risk_alert",
			"title":"Recovery debt building",
			"description":"Three short nights in a row.",
			"confidence":0.82,
			"priority":"high"
		}]}`))
	}))
	defer srv.Close()

	c := &Client{APIKey: "test-key", BaseURL: srv.URL}
	nudges, err := c.Nudges(context.Background(), NudgeRequest{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, nudges, 1)
	assert.Equal(t, "risk_alert", nudges[0].NudgeType)
	assert.Equal(t, "high", nudges[0].Priority)
	assert.InDelta(t, 0.82, nudges[0].Confidence, 0.001)
}

func TestPost_ServerErrorMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded for plan"}`))
	}))
	defer srv.Close()

	c := &Client{APIKey: "test-key", BaseURL: srv.URL}
	_, err := c.Nudges(context.Background(), NudgeRequest{UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded for plan")
}

func TestPost_OpaqueServerErrorFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	c := &Client{APIKey: "test-key", BaseURL: srv.URL}
	_, err := c.Forecasts(context.Background(), ForecastRequest{UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestPost_MissingAPIKey(t *testing.T) {
	c := &Client{}
	_, err := c.Forecasts(context.Background(), ForecastRequest{UserID: "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing gateway API key")
}
