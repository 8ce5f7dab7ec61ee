package models

// TrendDirection classifies the trajectory between the two most recent
// analyses.
type TrendDirection string

const (
	TrendInsufficientData TrendDirection = "insufficient_data"
	TrendStable           TrendDirection = "stable"
	TrendWorsening        TrendDirection = "worsening"
	TrendImproving        TrendDirection = "improving"
)

// TrendResult compares the latest analysis against the previous one.
type TrendResult struct {
	Trend         TrendDirection `json:"trend"`
	Message       string         `json:"message"`
	ScoreDiff     float64        `json:"score_diff"`
	AnomalyDiff   int            `json:"anomaly_diff"`
	LatestScore   float64        `json:"latest_score"`
	PreviousScore float64        `json:"previous_score"`
	RecordCount   int            `json:"record_count"`
}

// TrendSeries is chart-ready history data: one labeled point per
// analysis, oldest first.
type TrendSeries struct {
	Label  string    `json:"label"`
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}
