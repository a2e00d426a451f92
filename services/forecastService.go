package services

import (
	"context"
	"time"

	"github.com/Sage-GtHub/neurostate-sub005/config"
	"github.com/Sage-GtHub/neurostate-sub005/gateway"
	"github.com/Sage-GtHub/neurostate-sub005/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const forecastListLimit = 7

func samplePoints(samples []models.MetricSample) []gateway.SamplePoint {
	points := make([]gateway.SamplePoint, 0, len(samples))
	for _, s := range samples {
		points = append(points, gateway.SamplePoint{
			MetricType: s.MetricType,
			Value:      s.Value,
			RecordedAt: s.RecordedAt,
		})
	}
	return points
}

// GenerateForecasts asks the model gateway for forward-looking predictions
// and upserts them by (user, forecast_date). Returns the number stored; the
// stored rows are the source of truth, not the gateway response.
func GenerateForecasts(ctx context.Context, gw *gateway.Client, guard *GenerationGuard, userID string, days int) (int, error) {
	if !guard.Begin("forecast:" + userID) {
		return 0, ErrGenerationInFlight
	}
	defer guard.End("forecast:" + userID)

	samples, err := GetRecentSamples(userID, sampleWindowLimit)
	if err != nil {
		return 0, err
	}

	if days <= 0 || days > forecastListLimit {
		days = forecastListLimit
	}
	payloads, err := gw.Forecasts(ctx, gateway.ForecastRequest{
		UserID:  userID,
		Days:    days,
		Samples: samplePoints(samples),
	})
	if err != nil {
		return 0, err
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coll := config.OpenCollection("forecasts")

	count := 0
	for _, p := range payloads {
		date, err := time.ParseInLocation("2006-01-02", p.ForecastDate, time.UTC)
		if err != nil {
			continue
		}
		energy := make([]models.EnergyPoint, 0, len(p.EnergyPrediction))
		for _, e := range p.EnergyPrediction {
			energy = append(energy, models.EnergyPoint{Hour: e.Hour, Level: e.Level})
		}
		update := bson.D{{"$set", bson.D{
			{"user_id", userID},
			{"forecast_date", date},
			{"optimal_training_window", p.OptimalTrainingWindow},
			{"energy_prediction", energy},
			{"recovery_prediction", p.RecoveryPrediction},
			{"intervention_timing", models.InterventionTiming{
				Morning:   p.InterventionTiming.Morning,
				Afternoon: p.InterventionTiming.Afternoon,
				Evening:   p.InterventionTiming.Evening,
			}},
			{"created_at", time.Now()},
		}}}
		filter := bson.M{"user_id": userID, "forecast_date": date}
		opts := options.Update().SetUpsert(true)
		if _, err := coll.UpdateOne(dbCtx, filter, update, opts); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// GetForecasts returns up to 7 forward-dated forecasts, ascending by date.
// An empty list is a normal state, not an error.
func GetForecasts(userID string) ([]models.Forecast, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coll := config.OpenCollection("forecasts")

	today := dayOf(time.Now())
	filter := bson.M{"user_id": userID, "forecast_date": bson.M{"$gte": today}}
	opts := options.Find().SetSort(bson.D{{"forecast_date", 1}}).SetLimit(forecastListLimit)
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []models.Forecast
	err = cursor.All(ctx, &out)
	return out, err
}
