// Package risk aggregates findings into a weighted score and a
// discrete risk tier. Scoring is a pure function of the finding list:
// the same findings always produce the same score and tier.
package risk

import (
	"fmt"
	"math"
	"time"

	"go-dental-review/pkg/models"
)

// Category weights. Unknown categories fall back to weight 1.
var weights = map[models.FindingType]int{
	models.FindingCaries:        3,
	models.FindingRecession:     3,
	models.FindingGingivitis:    2,
	models.FindingCalculus:      2,
	models.FindingDiscoloration: 1,
}

const defaultWeight = 1

// Tier thresholds on the total score.
const (
	highThreshold   = 8
	mediumThreshold = 5
)

type tierInfo struct {
	color          string
	icon           string
	recommendation string
}

var tierTable = map[models.RiskTier]tierInfo{
	models.RiskLow: {
		color: "#10B981",
		icon:  "✅",
		recommendation: "No significant abnormality found. Keep up your oral hygiene " +
			"routine and schedule a routine check every 3 months.",
	},
	models.RiskMedium: {
		color: "#F59E0B",
		icon:  "🟠",
		recommendation: "Some conditions need attention. Improve oral cleaning and " +
			"arrange a follow-up check within a week.",
	},
	models.RiskHigh: {
		color: "#EF4444",
		icon:  "🔴",
		recommendation: "Serious abnormal signs detected. Book a dental examination " +
			"as soon as possible to avoid delaying treatment.",
	},
}

// Weight reports the scoring weight for a finding category.
func Weight(t models.FindingType) int {
	if w, ok := weights[t]; ok {
		return w
	}
	return defaultWeight
}

// Score computes the weighted risk result for a finding list. Each
// finding contributes confidence/100 x category weight; the total is
// rounded to one decimal place. The per-weight-class counts bucket by
// category weight (3/2/1), not by the computed tier: a low-confidence
// caries finding still counts toward HighRiskCount. Display code
// depends on that bucketing.
func Score(findings []models.Finding) models.RiskResult {
	var total float64
	details := make([]models.RiskDetail, 0, len(findings))
	var high, medium, low int

	for _, f := range findings {
		w := Weight(f.Type)
		contribution := float64(f.Confidence) / 100 * float64(w)
		total += contribution

		details = append(details, models.RiskDetail{
			Type:         f.Type,
			Confidence:   f.Confidence,
			Weight:       w,
			Contribution: round1(contribution),
		})

		switch w {
		case 3:
			high++
		case 2:
			medium++
		default:
			low++
		}
	}

	total = round1(total)

	tier := models.RiskLow
	if total >= highThreshold {
		tier = models.RiskHigh
	} else if total >= mediumThreshold {
		tier = models.RiskMedium
	}

	info := tierTable[tier]
	return models.RiskResult{
		Score:           total,
		Tier:            tier,
		Color:           info.color,
		Icon:            info.icon,
		Recommendation:  info.recommendation,
		AnomalyCount:    len(findings),
		HighRiskCount:   high,
		MediumRiskCount: medium,
		LowRiskCount:    low,
		Details:         details,
		Timestamp:       time.Now().UTC(),
	}
}

// Alert renders the per-tier alert template for a risk result.
func Alert(r models.RiskResult) models.RiskAlert {
	switch r.Tier {
	case models.RiskHigh:
		return models.RiskAlert{
			Title: "High-risk findings detected",
			Message: fmt.Sprintf("Your oral health score is %.1f (high risk) with %d findings. %s",
				r.Score, r.AnomalyCount, r.Recommendation),
			Action:  "Book an appointment",
			Urgency: "immediate",
		}
	case models.RiskMedium:
		return models.RiskAlert{
			Title: "Attention needed",
			Message: fmt.Sprintf("Your oral health score is %.1f (medium risk) with %d findings to watch. %s",
				r.Score, r.AnomalyCount, r.Recommendation),
			Action:  "View details",
			Urgency: "soon",
		}
	default:
		return models.RiskAlert{
			Title:   "Oral health looks good",
			Message: fmt.Sprintf("Your oral health score is %.1f (low risk). %s", r.Score, r.Recommendation),
			Action:  "View report",
			Urgency: "routine",
		}
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
