package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NudgeType string

const (
	NudgeTypeNudge              NudgeType = "nudge"
	NudgeTypeRiskAlert          NudgeType = "risk_alert"
	NudgeTypePattern            NudgeType = "pattern"
	NudgeTypePrediction         NudgeType = "prediction"
	NudgeTypeProtocolAdjustment NudgeType = "protocol_adjustment"
)

type NudgePriority string

const (
	PriorityLow      NudgePriority = "low"
	PriorityMedium   NudgePriority = "medium"
	PriorityHigh     NudgePriority = "high"
	PriorityCritical NudgePriority = "critical"
)

type NudgeStatus string

const (
	NudgeActive    NudgeStatus = "active"
	NudgeCompleted NudgeStatus = "completed"
	NudgeDismissed NudgeStatus = "dismissed"
	NudgeExpired   NudgeStatus = "expired"
)

// Nudge is a server-generated coaching suggestion or alert. Created active,
// then completed/dismissed by the user or expired by time.
type Nudge struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID      string                 `bson:"user_id" json:"user_id"`
	NudgeType   NudgeType              `bson:"nudge_type" json:"nudge_type"`
	Category    string                 `bson:"category,omitempty" json:"category,omitempty"`
	Title       string                 `bson:"title" json:"title"`
	Description string                 `bson:"description" json:"description"`
	Impact      string                 `bson:"impact,omitempty" json:"impact,omitempty"`
	Confidence  float64                `bson:"confidence" json:"confidence"` // 0-1
	Timing      string                 `bson:"timing,omitempty" json:"timing,omitempty"`
	Priority    NudgePriority          `bson:"priority" json:"priority"`
	Status      NudgeStatus            `bson:"status" json:"status"`
	ActionLabel string                 `bson:"action_label,omitempty" json:"action_label,omitempty"`
	Metadata    map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	ExpiresAt   *time.Time             `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"created_at"`
}
