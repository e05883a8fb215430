// Package scoring turns the classification service's raw 0-1 scores into
// the labels and text officers see on the dashboard.
package scoring

import (
	"fmt"
	"math"

	"civisense/internal/model"
)

// Priority label thresholds, inclusive
const (
	HighThreshold   = 0.70
	MediumThreshold = 0.40

	// HighPriorityPercent is HighThreshold on the 0-100 scale
	HighPriorityPercent = 70
)

// PriorityLabel derives the label from the raw priority score alone
func PriorityLabel(score float64) model.Priority {
	switch {
	case score >= HighThreshold:
		return model.PriorityHigh
	case score >= MediumThreshold:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// Percent converts a 0-1 score to a rounded 0-100 integer
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// Explanation renders the priority breakdown shown next to a complaint.
// Missing sub-scores are rendered as zero.
func Explanation(priority float64, urgency, impact, vulnerability *float64) string {
	return fmt.Sprintf(
		"Priority Score: %d/100. Breakdown: Urgency (%.2f), Impact (%.2f), Vulnerability (%.2f).",
		Percent(priority), orZero(urgency), orZero(impact), orZero(vulnerability),
	)
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
