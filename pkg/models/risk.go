package models

import "time"

// RiskTier is the discrete classification derived from the weighted
// aggregate of findings.
type RiskTier string

const (
	RiskLow    RiskTier = "low"
	RiskMedium RiskTier = "medium"
	RiskHigh   RiskTier = "high"
)

// RiskDetail records one finding's contribution to the total score.
type RiskDetail struct {
	Type         FindingType `json:"type"`
	Confidence   int         `json:"confidence"`
	Weight       int         `json:"weight"`
	Contribution float64     `json:"contribution"`
}

// RiskResult aggregates findings into a weighted score and tier.
// The high/medium/low counts bucket findings by category weight class
// (3/2/1), not by the computed tier; downstream display code depends
// on that bucketing.
type RiskResult struct {
	Score           float64      `json:"score"`
	Tier            RiskTier     `json:"tier"`
	Color           string       `json:"color"`
	Icon            string       `json:"icon"`
	Recommendation  string       `json:"recommendation"`
	AnomalyCount    int          `json:"anomaly_count"`
	HighRiskCount   int          `json:"high_risk_count"`
	MediumRiskCount int          `json:"medium_risk_count"`
	LowRiskCount    int          `json:"low_risk_count"`
	Details         []RiskDetail `json:"details"`
	Timestamp       time.Time    `json:"timestamp"`
}

// RiskAlert is the per-tier template for surfacing a risk result to
// the user.
type RiskAlert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Urgency string `json:"urgency"` // immediate, soon, routine
}
