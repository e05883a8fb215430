package api

import (
	"net/http"
	"strconv"

	"civisense/internal/model"
	"civisense/internal/query"
)

// viewFromQuery builds a table view from ?search&category&area&status&sort&dir&page
func (d Dependencies) viewFromQuery(r *http.Request) (query.View, error) {
	q := r.URL.Query()
	view := query.NewView(d.PageSize)

	view.Criteria.Search = q.Get("search")
	if v := q.Get("category"); v != "" {
		view.Criteria.Category = v
	}
	if v := q.Get("area"); v != "" {
		view.Criteria.Area = v
	}
	if v := q.Get("status"); v != "" {
		view.Criteria.Status = v
	}

	if v := q.Get("sort"); v != "" {
		field, err := query.ParseSortField(v)
		if err != nil {
			return view, err
		}
		view.Sort = query.SortState{Field: field, Direction: query.Desc}
	}
	if v := q.Get("dir"); v != "" {
		dir, err := query.ParseDirection(v)
		if err != nil {
			return view, err
		}
		view.Sort.Direction = dir
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return view, err
		}
		view.Page = page
	}
	return view, nil
}

func (d Dependencies) getDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := d.viewFromQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_query", err.Error(), d.Log)
		return
	}

	snap, ok := d.Snapshots.Latest()
	if !ok {
		WriteError(w, http.StatusServiceUnavailable, "not_ready", "Dashboard data not loaded yet", d.Log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"seq":        snap.Seq,
		"snapshotId": snap.ID,
		"fetchedAt":  snap.FetchedAt,
		"stats":      snap.Stats,
		"byCategory": snap.ByCategory,
		"byStatus":   snap.ByStatus,
		"topAreas":   snap.TopAreas,
		"page":       view.Apply(snap.Complaints),
		"sort":       view.Sort,
		"criteria":   view.Criteria,
	})
}

func (d Dependencies) getOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories":   append([]string{model.AllCategories}, model.Categories...),
		"areas":        append([]string{model.AllAreas}, model.Areas...),
		"statuses":     append([]model.Status{model.AllStatuses}, model.Statuses...),
		"serviceTypes": model.ServiceTypes,
		"urgencies":    model.Urgencies,
		"sortFields":   query.SortFields,
		"pageSize":     query.NewView(d.PageSize).PageSize,
	})
}
