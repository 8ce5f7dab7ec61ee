// Package trend classifies the trajectory of a user's analysis history
// and prepares chart-ready series data. Only the two most recent
// entries drive the classification; the full history feeds the chart.
package trend

import (
	"fmt"
	"math"

	"go-dental-review/pkg/models"
)

// AnalyzeTrend compares the two most recent entries of a chronologically
// ordered history (oldest first). Fewer than two entries yields
// insufficient_data with no comparison.
func AnalyzeTrend(history []models.AnalysisRecord) models.TrendResult {
	if len(history) < 2 {
		return models.TrendResult{
			Trend:       models.TrendInsufficientData,
			Message:     "At least 2 records are required for trend analysis",
			RecordCount: len(history),
		}
	}

	latest := history[len(history)-1]
	previous := history[len(history)-2]

	scoreDiff := latest.RiskScore - previous.RiskScore
	anomalyDiff := len(latest.Findings) - len(previous.Findings)

	direction := models.TrendStable
	message := "No significant change in oral health since the last analysis"
	if scoreDiff > 2 || anomalyDiff > 1 {
		direction = models.TrendWorsening
		message = "Oral health has worsened since the last analysis; extra care is advised"
	} else if scoreDiff < -2 || anomalyDiff < -1 {
		direction = models.TrendImproving
		message = "Oral health has improved since the last analysis; keep it up"
	}

	return models.TrendResult{
		Trend:         direction,
		Message:       message,
		ScoreDiff:     math.Round(scoreDiff*10) / 10,
		AnomalyDiff:   anomalyDiff,
		LatestScore:   latest.RiskScore,
		PreviousScore: previous.RiskScore,
		RecordCount:   len(history),
	}
}

// ChartSeries maps every history entry to a labeled point, oldest
// first. Empty history returns nil rather than an error.
func ChartSeries(history []models.AnalysisRecord) *models.TrendSeries {
	if len(history) == 0 {
		return nil
	}

	series := &models.TrendSeries{
		Label:  "risk score",
		Labels: make([]string, 0, len(history)),
		Scores: make([]float64, 0, len(history)),
	}
	for _, rec := range history {
		series.Labels = append(series.Labels,
			fmt.Sprintf("%d/%d", int(rec.CreatedAt.Month()), rec.CreatedAt.Day()))
		series.Scores = append(series.Scores, rec.RiskScore)
	}
	return series
}
