package stats

import (
	"testing"

	"civisense/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_StatusSums(t *testing.T) {
	byStatus := map[string]int{"new": 2, "verified": 1, "resolved": 5, "closed": 1}

	got := Aggregate(9, byStatus, nil)

	assert.Equal(t, 9, got.Total)
	assert.Equal(t, 3, got.Pending)
	assert.Equal(t, 6, got.Resolved)
	assert.Equal(t, 0, got.HighPriority)
}

func TestAggregate_AllPendingKeys(t *testing.T) {
	byStatus := map[string]int{"new": 1, "assigned": 2, "verified": 3, "scheme_linked": 4, "unknown": 100}

	got := Aggregate(110, byStatus, nil)

	assert.Equal(t, 10, got.Pending)
	assert.Equal(t, 0, got.Resolved)
}

func TestAggregate_DisplayFormKeysCountTheSame(t *testing.T) {
	got := Aggregate(3, map[string]int{"Scheme Linked": 2, "Closed": 1}, nil)

	assert.Equal(t, 2, got.Pending)
	assert.Equal(t, 1, got.Resolved)
}

func TestAggregate_HighPriorityScopedToSubset(t *testing.T) {
	subset := []model.Complaint{
		{ID: "1", PriorityScore: 0.70},
		{ID: "2", PriorityScore: 0.696},
		{ID: "3", PriorityScore: 0.69},
		{ID: "4", PriorityScore: 0.2},
		{ID: "5", PriorityScore: 0.99},
	}

	got := Aggregate(500, map[string]int{"new": 500}, subset)

	// 0.696 rounds to 70 on the 0-100 scale
	assert.Equal(t, 3, got.HighPriority)
	assert.Equal(t, 500, got.Total)
}
