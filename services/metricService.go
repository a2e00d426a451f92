package services

import (
	"context"
	"errors"
	"time"

	"github.com/Sage-GtHub/neurostate-sub005/config"
	"github.com/Sage-GtHub/neurostate-sub005/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNoSamples = errors.New("no samples provided")

// dayOf truncates a timestamp to its UTC day. Daily aggregates are keyed by
// this value so re-syncing the same day replaces instead of duplicating.
func dayOf(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

// sampleKey is the upsert identity: one authoritative sample per
// (user, metric_type, UTC day).
func sampleKey(userID string, s models.MetricSample) bson.M {
	return bson.M{
		"user_id":     userID,
		"metric_type": s.MetricType,
		"day":         dayOf(s.RecordedAt),
	}
}

// IngestSamples upserts a batch of samples. One authoritative sample per
// (user, metric_type, day); later writes win.
func IngestSamples(userID string, samples []models.MetricSample) (int, error) {
	if len(samples) == 0 {
		return 0, ErrNoSamples
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coll := config.OpenCollection("metric_samples")

	now := time.Now()
	count := 0
	for _, s := range samples {
		if s.RecordedAt.IsZero() {
			s.RecordedAt = now
		}
		filter := sampleKey(userID, s)
		update := bson.D{{"$set", bson.D{
			{"user_id", userID},
			{"metric_type", s.MetricType},
			{"value", s.Value},
			{"recorded_at", s.RecordedAt},
			{"day", dayOf(s.RecordedAt)},
			{"device_source", s.DeviceSource},
			{"metadata", s.Metadata},
			{"created_at", now},
		}}}
		opts := options.Update().SetUpsert(true)
		if _, err := coll.UpdateOne(ctx, filter, update, opts); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
