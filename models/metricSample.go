package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetricKind is the closed set of biometric sample types the engine
// understands. Unrecognised metric_type strings map to MetricKindUnknown and
// are stored untouched, so new wearable fields pass through without a schema
// change.
type MetricKind string

const (
	MetricHRV              MetricKind = "hrv"
	MetricSleepDuration    MetricKind = "sleep_duration"
	MetricSleepQuality     MetricKind = "sleep_quality"
	MetricRecovery         MetricKind = "recovery"
	MetricMorningCheckin   MetricKind = "morning_checkin"
	MetricSteps            MetricKind = "steps"
	MetricCalories         MetricKind = "calories"
	MetricRestingHeartRate MetricKind = "resting_heart_rate"
	MetricSleepEfficiency  MetricKind = "sleep_efficiency"
	MetricFocusTime        MetricKind = "focus_time"
	MetricKindUnknown      MetricKind = "unknown"
)

var knownMetricKinds = map[string]MetricKind{
	"hrv":                MetricHRV,
	"sleep_duration":     MetricSleepDuration,
	"sleep_quality":      MetricSleepQuality,
	"recovery":           MetricRecovery,
	"morning_checkin":    MetricMorningCheckin,
	"steps":              MetricSteps,
	"calories":           MetricCalories,
	"resting_heart_rate": MetricRestingHeartRate,
	"sleep_efficiency":   MetricSleepEfficiency,
	"focus_time":         MetricFocusTime,
}

func ParseMetricKind(metricType string) MetricKind {
	if k, ok := knownMetricKinds[metricType]; ok {
		return k
	}
	return MetricKindUnknown
}

type MetricSample struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID       string                 `bson:"user_id" json:"user_id"`
	MetricType   string                 `bson:"metric_type" json:"metric_type" validate:"required"`
	Value        float64                `bson:"value" json:"value"`
	RecordedAt   time.Time              `bson:"recorded_at" json:"recorded_at"`
	DeviceSource string                 `bson:"device_source" json:"device_source" validate:"required"` // oura, whoop, manual_entry, demo
	Metadata     map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`           // e.g. sleep-stage breakdown
	CreatedAt    time.Time              `bson:"created_at" json:"created_at"`
}

// Kind classifies the raw metric_type string.
func (s MetricSample) Kind() MetricKind {
	return ParseMetricKind(s.MetricType)
}
