package services

import (
	"context"
	"math"
	"time"

	"github.com/Sage-GtHub/neurostate-sub005/config"
	"github.com/Sage-GtHub/neurostate-sub005/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var readinessWeights = map[string]float64{
	"hrv":      0.30,
	"sleep":    0.30,
	"recovery": 0.25,
	"checkin":  0.15,
}

const (
	sampleWindowLimit = 100
	trendThreshold    = 5.0
	// How far back the trend comparison will look for a prior-day HRV
	// sample. "Yesterday only" breaks for users who log irregularly.
	trendWindowDays = 3
)

const noDataRecommendation = "Connect a device or log a check-in to see your readiness score."

// -------- Factor normalization --------

// hrvScore maps an HRV reading (ms) onto 0-100. 20ms and below scores 0,
// 100ms and above scores 100.
func hrvScore(v float64) float64 {
	return clamp(((v-20)/80)*100, 0, 100)
}

// sleepDurationScore maps hours slept onto 0-100. The 7-9h band is ideal;
// short and long sleep both cost points.
func sleepDurationScore(hours float64) float64 {
	switch {
	case hours >= 7 && hours <= 9:
		return 90
	case hours >= 6 && hours < 7:
		return 70
	case hours > 9 && hours <= 10:
		return 75
	default:
		return math.Max(50, 100-math.Abs(7.5-hours)*15)
	}
}

// sleepQualityScore maps a 0-10 self-reported rating onto 0-100.
func sleepQualityScore(rating float64) float64 {
	return clamp(rating*10, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// usable rejects values that would poison the composite. A single bad sample
// drops that factor, not the whole score.
func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// latestPerKind picks the max-timestamp sample for each metric kind. The
// window is usually sorted descending already, but the calculator must not
// assume it.
func latestPerKind(samples []models.MetricSample) map[models.MetricKind]models.MetricSample {
	latest := make(map[models.MetricKind]models.MetricSample)
	for _, s := range samples {
		kind := s.Kind()
		if kind == models.MetricKindUnknown {
			continue
		}
		cur, ok := latest[kind]
		if !ok || s.RecordedAt.After(cur.RecordedAt) {
			latest[kind] = s
		}
	}
	return latest
}

// ComputeReadiness aggregates the most recent sample of each tracked factor
// into a single 0-100 score. Weights are renormalized over the factors that
// are actually present, so a user with only HRV data still gets a score.
// Pure: no database access, no clock access beyond the now argument (used
// for the trend comparison).
func ComputeReadiness(samples []models.MetricSample, now time.Time) models.ReadinessResult {
	latest := latestPerKind(samples)

	var factors models.FactorScores

	if s, ok := latest[models.MetricHRV]; ok && usable(s.Value) {
		v := hrvScore(s.Value)
		factors.HRV = &v
	}
	// Duration and quality are alternative sleep signals; prefer whichever
	// was recorded more recently.
	if s, ok := pickSleepSample(latest); ok && usable(s.Value) {
		var v float64
		if s.Kind() == models.MetricSleepDuration {
			v = sleepDurationScore(s.Value)
		} else {
			v = sleepQualityScore(s.Value)
		}
		factors.Sleep = &v
	}
	if s, ok := latest[models.MetricRecovery]; ok && usable(s.Value) {
		v := clamp(s.Value, 0, 100)
		factors.Recovery = &v
	}
	if s, ok := latest[models.MetricMorningCheckin]; ok && usable(s.Value) {
		v := clamp(s.Value, 0, 100)
		factors.Checkin = &v
	}

	result := models.ReadinessResult{Factors: factors}

	weighted := 0.0
	totalWeight := 0.0
	for name, ptr := range map[string]*float64{
		"hrv":      factors.HRV,
		"sleep":    factors.Sleep,
		"recovery": factors.Recovery,
		"checkin":  factors.Checkin,
	} {
		if ptr != nil {
			weighted += *ptr * readinessWeights[name]
			totalWeight += readinessWeights[name]
		}
	}

	if totalWeight == 0 {
		result.Recommendation = noDataRecommendation
		return result
	}

	score := int(math.Round(weighted / totalWeight))
	result.Score = &score
	result.Recommendation = recommendationFor(score)
	result.Trend = hrvTrend(samples, now)
	return result
}

func pickSleepSample(latest map[models.MetricKind]models.MetricSample) (models.MetricSample, bool) {
	dur, hasDur := latest[models.MetricSleepDuration]
	qual, hasQual := latest[models.MetricSleepQuality]
	switch {
	case hasDur && hasQual:
		if qual.RecordedAt.After(dur.RecordedAt) {
			return qual, true
		}
		return dur, true
	case hasDur:
		return dur, true
	case hasQual:
		return qual, true
	}
	return models.MetricSample{}, false
}

func recommendationFor(score int) string {
	switch {
	case score >= 80:
		return "Excellent readiness. Your body is primed for a high-intensity day."
	case score >= 60:
		return "Good readiness. Moderate training is a solid choice today."
	case score >= 40:
		return "Moderate readiness. Prioritise recovery over intensity."
	default:
		return "Low readiness. Rest, hydrate and keep the load light today."
	}
}

// hrvTrend compares today's HRV sample against the most recent prior-day
// HRV sample within trendWindowDays. Dates compare in UTC.
func hrvTrend(samples []models.MetricSample, now time.Time) *models.TrendDirection {
	today := now.UTC().Format("2006-01-02")

	var todaySample, priorSample *models.MetricSample
	for i := range samples {
		s := samples[i]
		if s.Kind() != models.MetricHRV || !usable(s.Value) {
			continue
		}
		day := s.RecordedAt.UTC().Format("2006-01-02")
		if day == today {
			if todaySample == nil || s.RecordedAt.After(todaySample.RecordedAt) {
				todaySample = &samples[i]
			}
			continue
		}
		if s.RecordedAt.Before(now.AddDate(0, 0, -trendWindowDays)) {
			continue
		}
		if s.RecordedAt.After(now) {
			continue
		}
		if priorSample == nil || s.RecordedAt.After(priorSample.RecordedAt) {
			priorSample = &samples[i]
		}
	}

	if todaySample == nil || priorSample == nil {
		return nil
	}

	diff := todaySample.Value - priorSample.Value
	var dir models.TrendDirection
	switch {
	case diff > trendThreshold:
		dir = models.TrendUp
	case diff < -trendThreshold:
		dir = models.TrendDown
	default:
		dir = models.TrendStable
	}
	return &dir
}

// GetReadinessForUser fetches the recent sample window and computes the
// score. The result holds no identity and is never stored.
func GetReadinessForUser(userID string) (models.ReadinessResult, error) {
	samples, err := GetRecentSamples(userID, sampleWindowLimit)
	if err != nil {
		return models.ReadinessResult{}, err
	}
	return ComputeReadiness(samples, time.Now()), nil
}

// GetRecentSamples returns up to limit samples for a user, newest first.
func GetRecentSamples(userID string, limit int64) ([]models.MetricSample, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coll := config.OpenCollection("metric_samples")
	if limit <= 0 || limit > sampleWindowLimit {
		limit = sampleWindowLimit
	}
	opts := options.Find().SetSort(bson.D{{"recorded_at", -1}}).SetLimit(limit)
	cursor, err := coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []models.MetricSample
	err = cursor.All(ctx, &out)
	return out, err
}
