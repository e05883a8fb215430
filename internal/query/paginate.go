package query

import "civisense/internal/model"

// DefaultPageSize is the number of rows per dashboard page
const DefaultPageSize = 10

// Page is one visible slice of the table
type Page struct {
	Items      []model.Complaint `json:"items"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
	Total      int               `json:"total"`
}

// Paginate returns the records of the requested page. The page number is
// clamped to [1, totalPages], or to 1 when there are no records.
func Paginate(records []model.Complaint, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return Page{
		Items:      records[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Total:      total,
	}
}
