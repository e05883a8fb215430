package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"civisense/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortField is a sortable dashboard column
type SortField string

const (
	SortTimestamp SortField = "timestamp"
	SortPriority  SortField = "priority"
	SortCategory  SortField = "category"
	SortArea      SortField = "area"
	SortStatus    SortField = "status"
)

// SortFields lists every sortable column
var SortFields = []SortField{SortTimestamp, SortPriority, SortCategory, SortArea, SortStatus}

// Direction is the sort direction
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

func (d Direction) multiplier() int {
	if d == Asc {
		return 1
	}
	return -1
}

// ParseSortField validates a column name
func ParseSortField(raw string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(SortFields, f) {
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field: %q", raw)
}

// ParseDirection validates a direction
func ParseDirection(raw string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(raw))); d {
	case Asc, Desc:
		return d, nil
	}
	return "", fmt.Errorf("unknown sort direction: %q", raw)
}

// SortState is the (field, direction) pair a dashboard session sorts by
type SortState struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSortState sorts newest first
func DefaultSortState() SortState {
	return SortState{Field: SortTimestamp, Direction: Desc}
}

// Transition applies a click on a column header: the same column flips the
// direction, a different column starts descending.
func (s SortState) Transition(clicked SortField) SortState {
	if clicked != s.Field {
		return SortState{Field: clicked, Direction: Desc}
	}
	return SortState{Field: clicked, Direction: s.Direction.Flip()}
}

// Sort returns a stably sorted copy of records
func Sort(records []model.Complaint, state SortState) []model.Complaint {
	out := slices.Clone(records)
	cmp := comparator(state.Field)
	m := state.Direction.multiplier()
	slices.SortStableFunc(out, func(a, b model.Complaint) int {
		return m * cmp(a, b)
	})
	return out
}

func comparator(field SortField) func(a, b model.Complaint) int {
	switch field {
	case SortTimestamp:
		return func(a, b model.Complaint) int {
			return sign(epochMillis(a.Timestamp) - epochMillis(b.Timestamp))
		}
	case SortPriority:
		return func(a, b model.Complaint) int {
			return a.Priority.Rank() - b.Priority.Rank()
		}
	case SortCategory, SortArea, SortStatus:
		// Collators keep internal buffers and are not safe for concurrent use
		col := collate.New(language.English)
		key := stringKey(field)
		return func(a, b model.Complaint) int {
			return col.CompareString(key(a), key(b))
		}
	}
	return func(a, b model.Complaint) int { return 0 }
}

func stringKey(field SortField) func(model.Complaint) string {
	switch field {
	case SortCategory:
		return func(c model.Complaint) string { return c.Category }
	case SortArea:
		return func(c model.Complaint) string { return c.Area }
	default:
		return func(c model.Complaint) string { return string(c.Status) }
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// epochMillis parses an ISO timestamp; zone-less values are read as UTC and
// unparsable ones sort as the epoch. A browser would read zone-less values as
// local time, which only changes ordering when one feed mixes zoned and
// zone-less stamps.
func epochMillis(ts string) int64 {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
