package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type FeedbackRequest struct {
	ComplaintID     string `json:"complaintId"`
	CorrectCategory string `json:"correctCategory,omitempty"`
	CorrectScheme   string `json:"correctScheme,omitempty"`
}

func (d Dependencies) sendFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if strings.TrimSpace(req.ComplaintID) == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "complaintId required", d.Log)
		return
	}

	if err := d.Complaints.SendFeedback(r.Context(), req.ComplaintID, req.CorrectCategory, req.CorrectScheme); err != nil {
		WriteError(w, http.StatusBadGateway, "feedback_failed", "Failed to submit feedback", d.Log)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
