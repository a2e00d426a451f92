package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnergyPoint is one hour of the predicted energy curve.
type EnergyPoint struct {
	Hour  int     `bson:"hour" json:"hour"`   // 0-23
	Level float64 `bson:"level" json:"level"` // 0-100
}

// InterventionTiming buckets suggested interventions by time of day.
type InterventionTiming struct {
	Morning   []string `bson:"morning" json:"morning"`
	Afternoon []string `bson:"afternoon" json:"afternoon"`
	Evening   []string `bson:"evening" json:"evening"`
}

// Forecast stores one generated forward-looking prediction per user per day.
type Forecast struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                string             `bson:"user_id" json:"user_id"`
	ForecastDate          time.Time          `bson:"forecast_date" json:"forecast_date"` // day (UTC midnight)
	OptimalTrainingWindow string             `bson:"optimal_training_window" json:"optimal_training_window"`
	EnergyPrediction      []EnergyPoint      `bson:"energy_prediction" json:"energy_prediction"`
	RecoveryPrediction    float64            `bson:"recovery_prediction" json:"recovery_prediction"` // 0-100
	InterventionTiming    InterventionTiming `bson:"intervention_timing" json:"intervention_timing"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
}
