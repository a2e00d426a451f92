package models

// TrendDirection compares today's HRV against the prior day's.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// FactorScores holds the per-component normalized sub-scores (0-100). A nil
// entry means no sample of that factor was in the window.
type FactorScores struct {
	HRV      *float64 `json:"hrv"`
	Sleep    *float64 `json:"sleep"`
	Recovery *float64 `json:"recovery"`
	Checkin  *float64 `json:"checkin"`
}

// ReadinessResult is recomputed on demand from the recent sample window.
// Never persisted.
type ReadinessResult struct {
	Score          *int            `json:"score"` // 0-100, nil when no factors present
	Trend          *TrendDirection `json:"trend,omitempty"`
	Factors        FactorScores    `json:"factors"`
	Recommendation string          `json:"recommendation"`
}
