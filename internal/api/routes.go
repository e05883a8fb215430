package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"civisense/internal/model"
	"civisense/internal/ws"
)

// ComplaintService is the complaint lifecycle the API exposes
type ComplaintService interface {
	Submit(ctx context.Context, form model.ComplaintFormData) (*model.SubmissionResult, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	SendFeedback(ctx context.Context, id, category, scheme string) error
}

type Dependencies struct {
	Complaints ComplaintService
	Snapshots  ws.SnapshotSource
	Hub        *ws.Hub
	Log        *zap.Logger
	PageSize   int
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	// Add request logging middleware
	r.Use(RequestLogger(d.Log))

	// Citizen endpoints
	r.Post("/complaints", d.submitComplaint)

	// Officer endpoints
	r.Get("/dashboard", d.getDashboard)
	r.Get("/complaints/{id}", d.getComplaint)
	r.Patch("/complaints/{id}/status", d.updateStatus)
	r.Post("/feedback", d.sendFeedback)

	// Filter and sort options for dashboard clients
	r.Get("/options", d.getOptions)

	// WebSocket endpoint
	r.Get("/ws", d.wsHandler)

	return r
}
