package query

import "civisense/internal/model"

// View is the table state of one dashboard session
type View struct {
	Criteria Criteria  `json:"criteria"`
	Sort     SortState `json:"sort"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// NewView starts a session with no filters, newest first, on page 1
func NewView(pageSize int) View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return View{
		Criteria: DefaultCriteria(),
		Sort:     DefaultSortState(),
		Page:     1,
		PageSize: pageSize,
	}
}

// ToggleSort applies a column header click
func (v *View) ToggleSort(field SortField) {
	v.Sort = v.Sort.Transition(field)
}

// Apply runs filter, sort and paginate over records
func (v View) Apply(records []model.Complaint) Page {
	return Paginate(Sort(Filter(records, v.Criteria), v.Sort), v.Page, v.PageSize)
}
