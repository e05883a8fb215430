// Package dashboard turns the classification service's dashboard feed into
// snapshots and keeps the latest one current.
package dashboard

import (
	"time"

	"github.com/oklog/ulid/v2"

	"civisense/internal/civic"
	"civisense/internal/model"
	"civisense/internal/record"
	"civisense/internal/scoring"
	"civisense/internal/stats"
)

type Builder struct {
	cache *DecodeCache
}

// NewBuilder creates a builder. A nil cache decodes every record.
func NewBuilder(cache *DecodeCache) *Builder {
	return &Builder{cache: cache}
}

// Build maps a dashboard response into a snapshot
func (b *Builder) Build(resp *civic.DashboardResponse, seq int64, fetchedAt time.Time) model.Snapshot {
	complaints := make([]model.Complaint, 0, len(resp.RecentHighPriority))
	for _, raw := range resp.RecentHighPriority {
		complaints = append(complaints, b.Complaint(raw))
	}

	topAreas := make([]model.AreaCount, 0, len(resp.TopAreas))
	for _, a := range resp.TopAreas {
		topAreas = append(topAreas, model.AreaCount{Area: a.Area, Count: a.Count})
	}

	return model.Snapshot{
		ID:         ulid.Make().String(),
		Seq:        seq,
		FetchedAt:  fetchedAt,
		Complaints: complaints,
		Stats:      stats.Aggregate(resp.TotalComplaints, resp.ByStatus, complaints),
		ByCategory: copyCounts(resp.ByCategory),
		ByStatus:   copyCounts(resp.ByStatus),
		TopAreas:   topAreas,
	}
}

// Complaint decodes one raw record and fills in its derived fields
func (b *Builder) Complaint(raw civic.RawComplaint) model.Complaint {
	d := b.cache.Decode(raw.Text)
	status, _ := model.ParseStatus(raw.Status)

	return model.Complaint{
		ID:            raw.ID.String(),
		Description:   d.Description,
		Category:      orDefault(raw.Category, record.DefaultCategory),
		Priority:      scoring.PriorityLabel(raw.PriorityScore),
		PriorityScore: raw.PriorityScore,
		Scheme:        orDefault(raw.Scheme, record.DefaultScheme),
		Area:          orDefault(raw.Area, record.DefaultArea),
		Status:        status,
		Timestamp:     raw.Timestamp,
		Contact: model.Contact{
			Name:  d.ContactName,
			Phone: nonEmpty(d.Phone, record.NotProvided),
			Email: nonEmpty(d.Email, record.NotProvided),
		},
		Vulnerability:      d.Vulnerability,
		Confidence:         raw.Confidence,
		UrgencyScore:       raw.Urgency,
		ImpactScore:        raw.PopulationImpact,
		VulnerabilityScore: raw.Vulnerability,
		Explanation:        scoring.Explanation(raw.PriorityScore, raw.Urgency, raw.PopulationImpact, raw.Vulnerability),
	}
}

func orDefault(p *string, def string) string {
	if p == nil {
		return def
	}
	return nonEmpty(*p, def)
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
