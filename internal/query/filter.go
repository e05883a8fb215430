// Package query is the dashboard table engine: filtering, sorting and
// pagination over an in-memory set of decoded complaints.
package query

import (
	"strings"

	"civisense/internal/model"
)

// Criteria are the dashboard filter inputs
type Criteria struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	Area     string `json:"area"`
	Status   string `json:"status"`
}

// DefaultCriteria matches every record
func DefaultCriteria() Criteria {
	return Criteria{
		Category: model.AllCategories,
		Area:     model.AllAreas,
		Status:   model.AllStatuses,
	}
}

// normalized fills empty dimensions with their sentinel
func (c Criteria) normalized() Criteria {
	if c.Category == "" {
		c.Category = model.AllCategories
	}
	if c.Area == "" {
		c.Area = model.AllAreas
	}
	if c.Status == "" {
		c.Status = model.AllStatuses
	}
	return c
}

// Matches reports whether a complaint passes every predicate
func (c Criteria) Matches(r model.Complaint) bool {
	c = c.normalized()
	return c.matchesSearch(r) &&
		(c.Category == model.AllCategories || r.Category == c.Category) &&
		(c.Area == model.AllAreas || r.Area == c.Area) &&
		(c.Status == model.AllStatuses || string(r.Status) == c.Status)
}

func (c Criteria) matchesSearch(r model.Complaint) bool {
	if c.Search == "" {
		return true
	}
	needle := strings.ToLower(c.Search)
	return strings.Contains(strings.ToLower(r.Description), needle) ||
		strings.Contains(r.ID, c.Search) ||
		strings.Contains(strings.ToLower(r.Contact.Name), needle)
}

// Filter returns the records that match c, preserving input order
func Filter(records []model.Complaint, c Criteria) []model.Complaint {
	out := make([]model.Complaint, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
