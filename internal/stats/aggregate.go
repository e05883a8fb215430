// Package stats reduces service-side counters and a fetched record subset
// into the dashboard summary cards.
package stats

import (
	"civisense/internal/model"
	"civisense/internal/scoring"
)

var (
	pendingStatuses = map[model.Status]bool{
		model.StatusNew:          true,
		model.StatusAssigned:     true,
		model.StatusVerified:     true,
		model.StatusSchemeLinked: true,
	}
	resolvedStatuses = map[model.Status]bool{
		model.StatusResolved: true,
		model.StatusClosed:   true,
	}
)

// Aggregate builds DashboardStats.
//
// total and byStatus are global counters from the service. HighPriority is
// counted over subset only, which is whatever slice the service returned
// (usually its recent high-priority list), not the whole complaint store.
// A record counts as high priority when its rounded percentage reaches 70,
// so a score of 0.696 is counted here while PriorityLabel calls it medium.
func Aggregate(total int, byStatus map[string]int, subset []model.Complaint) model.DashboardStats {
	out := model.DashboardStats{Total: total}

	for key, count := range byStatus {
		status, ok := model.ParseStatus(key)
		if !ok {
			continue
		}
		switch {
		case pendingStatuses[status]:
			out.Pending += count
		case resolvedStatuses[status]:
			out.Resolved += count
		}
	}

	for _, c := range subset {
		if scoring.Percent(c.PriorityScore) >= scoring.HighPriorityPercent {
			out.HighPriority++
		}
	}

	return out
}
