package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"civisense/internal/model"
	"civisense/internal/service"
)

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (d Dependencies) submitComplaint(w http.ResponseWriter, r *http.Request) {
	form := service.NewForm()
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	form.Phone = service.NormalizePhone(form.Phone)

	result, err := d.Complaints.Submit(r.Context(), form)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "validation_failed",
				Code:    "validation_failed",
				Message: "Please fill in all required fields and accept the consent checkbox.",
				Details: ve.Violations,
			})
		case errors.Is(err, service.ErrSubmissionFailed):
			WriteError(w, http.StatusBadGateway, "submit_failed", service.ErrSubmissionFailed.Error(), d.Log)
		default:
			WriteError(w, http.StatusInternalServerError, "submit_failed", service.ErrSubmissionFailed.Error(), d.Log)
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (d Dependencies) getComplaint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snap, ok := d.Snapshots.Latest()
	if !ok {
		WriteError(w, http.StatusServiceUnavailable, "not_ready", "Dashboard data not loaded yet", d.Log)
		return
	}

	complaint, ok := snap.Find(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "Complaint not found", d.Log)
		return
	}

	writeJSON(w, http.StatusOK, complaint)
}

func (d Dependencies) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}

	status, ok := model.ParseStatus(req.Status)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid_status", "Unknown status: "+req.Status, d.Log)
		return
	}

	if err := d.Complaints.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, service.ErrUnknownStatus) {
			WriteError(w, http.StatusBadRequest, "invalid_status", err.Error(), d.Log)
			return
		}
		d.Log.Warn("Status update failed", zap.String("complaintId", id), zap.Error(err))
		WriteError(w, http.StatusBadGateway, "update_failed", "Failed to update status", d.Log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"status": status,
	})
}
