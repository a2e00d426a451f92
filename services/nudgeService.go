package services

import (
	"context"
	"errors"
	"time"

	"github.com/Sage-GtHub/neurostate-sub005/config"
	"github.com/Sage-GtHub/neurostate-sub005/gateway"
	"github.com/Sage-GtHub/neurostate-sub005/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNudgeNotFound      = errors.New("nudge not found")
	ErrInvalidTransition  = errors.New("nudges can only be completed or dismissed")
	defaultNudgeLifetime  = 48 * time.Hour
	validClientNudgeState = map[models.NudgeStatus]bool{
		models.NudgeCompleted: true,
		models.NudgeDismissed: true,
	}
)

func parseNudgePriority(s string) models.NudgePriority {
	switch models.NudgePriority(s) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return models.NudgePriority(s)
	default:
		return models.PriorityLow
	}
}

func parseNudgeType(s string) models.NudgeType {
	switch models.NudgeType(s) {
	case models.NudgeTypeNudge, models.NudgeTypeRiskAlert, models.NudgeTypePattern,
		models.NudgeTypePrediction, models.NudgeTypeProtocolAdjustment:
		return models.NudgeType(s)
	default:
		return models.NudgeTypeNudge
	}
}

// GenerateNudges asks the model gateway for coaching nudges and inserts them
// as active rows. Inserts feed the realtime bridge via the change stream.
func GenerateNudges(ctx context.Context, gw *gateway.Client, guard *GenerationGuard, userID string) (int, error) {
	if !guard.Begin("nudge:" + userID) {
		return 0, ErrGenerationInFlight
	}
	defer guard.End("nudge:" + userID)

	samples, err := GetRecentSamples(userID, sampleWindowLimit)
	if err != nil {
		return 0, err
	}

	payloads, err := gw.Nudges(ctx, gateway.NudgeRequest{
		UserID:  userID,
		Samples: samplePoints(samples),
	})
	if err != nil {
		return 0, err
	}
	if len(payloads) == 0 {
		return 0, nil
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coll := config.OpenCollection("nudges")

	now := time.Now()
	docs := make([]interface{}, 0, len(payloads))
	for _, p := range payloads {
		expires := now.Add(defaultNudgeLifetime)
		docs = append(docs, models.Nudge{
			ID:          primitive.NewObjectID(),
			UserID:      userID,
			NudgeType:   parseNudgeType(p.NudgeType),
			Category:    p.Category,
			Title:       p.Title,
			Description: p.Description,
			Impact:      p.Impact,
			Confidence:  clamp(p.Confidence, 0, 1),
			Timing:      p.Timing,
			Priority:    parseNudgePriority(p.Priority),
			Status:      models.NudgeActive,
			ActionLabel: p.ActionLabel,
			ExpiresAt:   &expires,
			CreatedAt:   now,
		})
	}
	res, err := coll.InsertMany(dbCtx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

// GetNudgesByUser lists a user's nudges newest first, optionally filtered by
// status. Active rows past their expiry are flipped to expired first, so the
// caller never sees a stale active nudge.
func GetNudgesByUser(userID string, status models.NudgeStatus, limit int64) ([]models.Nudge, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coll := config.OpenCollection("nudges")

	expireFilter := bson.M{
		"user_id":    userID,
		"status":     models.NudgeActive,
		"expires_at": bson.M{"$lt": time.Now()},
	}
	// Best effort; a failed expiry sweep should not block the list.
	_, _ = coll.UpdateMany(ctx, expireFilter, bson.D{{"$set", bson.D{{"status", models.NudgeExpired}}}})

	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{"created_at", -1}}).SetLimit(limit)
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []models.Nudge
	err = cursor.All(ctx, &out)
	return out, err
}

// transitionFilter matches a nudge only while the requested transition is
// legal: out of active, or a repeat of the same transition (idempotent).
// Expired and the other terminal state never match, so they cannot be
// overwritten.
func transitionFilter(userID string, id primitive.ObjectID, to models.NudgeStatus) bson.M {
	return bson.M{
		"_id":     id,
		"user_id": userID,
		"status":  bson.M{"$in": []models.NudgeStatus{models.NudgeActive, to}},
	}
}

// UpdateNudgeStatus applies a user-driven transition. Only completed and
// dismissed are accepted from clients; repeating a transition is a no-op.
func UpdateNudgeStatus(userID, nudgeID string, status models.NudgeStatus) (*models.Nudge, error) {
	if !validClientNudgeState[status] {
		return nil, ErrInvalidTransition
	}
	objID, err := primitive.ObjectIDFromHex(nudgeID)
	if err != nil {
		return nil, ErrNudgeNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coll := config.OpenCollection("nudges")

	filter := transitionFilter(userID, objID, status)
	update := bson.D{{"$set", bson.D{{"status", status}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Nudge
	if err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		return nil, ErrNudgeNotFound
	}
	return &updated, nil
}
