package ws

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"civisense/internal/model"
	"civisense/internal/query"
)

// ComplaintActions are the officer actions available over the socket
type ComplaintActions interface {
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	SendFeedback(ctx context.Context, id, category, scheme string) error
}

// CommandHandler handles WebSocket commands
type CommandHandler struct {
	actions ComplaintActions
	log     *zap.Logger
}

func NewCommandHandler(actions ComplaintActions, log *zap.Logger) *CommandHandler {
	return &CommandHandler{
		actions: actions,
		log:     log,
	}
}

// HandleCommand processes a WebSocket command
func (h *CommandHandler) HandleCommand(ctx context.Context, conn *Conn, cmd map[string]interface{}) {
	op, _ := cmd["op"].(string)
	data, _ := cmd["data"].(map[string]interface{})
	msgID, _ := cmd["id"].(string)

	switch op {
	case "view.sort":
		h.handleSort(conn, msgID, data)
	case "view.filter":
		h.handleFilter(conn, msgID, data)
	case "view.page":
		h.handlePage(conn, msgID, data)
	case "view.reset":
		h.handleReset(conn, msgID)
	case "complaint.get":
		h.handleGetComplaint(conn, msgID, data)
	case "status.update":
		h.handleUpdateStatus(ctx, conn, msgID, data)
	case "feedback.send":
		h.handleSendFeedback(ctx, conn, msgID, data)
	default:
		h.sendError(conn, msgID, "unknown_command", "Unknown command: "+op)
	}
}

func (h *CommandHandler) handleSort(conn *Conn, msgID string, data map[string]interface{}) {
	raw, _ := data["field"].(string)
	field, err := query.ParseSortField(raw)
	if err != nil {
		h.sendError(conn, msgID, "invalid_input", err.Error())
		return
	}

	view := conn.updateView(func(v *query.View) {
		v.ToggleSort(field)
	})
	h.sendView(conn, msgID, view)
}

func (h *CommandHandler) handleFilter(conn *Conn, msgID string, data map[string]interface{}) {
	view := conn.updateView(func(v *query.View) {
		if search, ok := data["search"].(string); ok {
			v.Criteria.Search = search
		}
		if category, ok := data["category"].(string); ok {
			v.Criteria.Category = category
		}
		if area, ok := data["area"].(string); ok {
			v.Criteria.Area = area
		}
		if status, ok := data["status"].(string); ok {
			v.Criteria.Status = status
		}
		v.Page = 1
	})
	h.sendView(conn, msgID, view)
}

func (h *CommandHandler) handlePage(conn *Conn, msgID string, data map[string]interface{}) {
	page, ok := data["page"].(float64)
	if !ok {
		h.sendError(conn, msgID, "invalid_input", "page required")
		return
	}

	view := conn.updateView(func(v *query.View) {
		v.Page = int(page)
		conn.clampPage(v)
	})
	h.sendView(conn, msgID, view)
}

func (h *CommandHandler) handleReset(conn *Conn, msgID string) {
	view := conn.updateView(func(v *query.View) {
		*v = query.NewView(v.PageSize)
	})
	h.sendView(conn, msgID, view)
}

func (h *CommandHandler) handleGetComplaint(conn *Conn, msgID string, data map[string]interface{}) {
	id, _ := data["complaintId"].(string)
	if id == "" {
		h.sendError(conn, msgID, "invalid_input", "complaintId required")
		return
	}

	if conn.hub.source == nil {
		h.sendError(conn, msgID, "not_ready", "dashboard not loaded yet")
		return
	}
	snap, ok := conn.hub.source.Latest()
	if !ok {
		h.sendError(conn, msgID, "not_ready", "dashboard not loaded yet")
		return
	}

	complaint, ok := snap.Find(id)
	if !ok {
		h.sendError(conn, msgID, "not_found", "complaint not found")
		return
	}

	h.sendResponse(conn, msgID, map[string]interface{}{
		"type": "response",
		"data": complaint,
	})
}

func (h *CommandHandler) handleUpdateStatus(ctx context.Context, conn *Conn, msgID string, data map[string]interface{}) {
	id, _ := data["complaintId"].(string)
	raw, _ := data["status"].(string)
	if id == "" || raw == "" {
		h.sendError(conn, msgID, "invalid_input", "complaintId and status required")
		return
	}

	status, ok := model.ParseStatus(raw)
	if !ok {
		h.sendError(conn, msgID, "invalid_input", "unknown status: "+raw)
		return
	}

	if err := h.actions.UpdateStatus(ctx, id, status); err != nil {
		h.log.Warn("Status update failed", zap.String("complaintId", id), zap.Error(err))
		h.sendError(conn, msgID, "update_failed", "Failed to update status")
		return
	}

	h.sendResponse(conn, msgID, map[string]interface{}{
		"type": "response",
		"data": map[string]string{"complaintId": id, "status": string(status)},
	})
}

func (h *CommandHandler) handleSendFeedback(ctx context.Context, conn *Conn, msgID string, data map[string]interface{}) {
	id, _ := data["complaintId"].(string)
	category, _ := data["correctCategory"].(string)
	scheme, _ := data["correctScheme"].(string)
	if id == "" {
		h.sendError(conn, msgID, "invalid_input", "complaintId required")
		return
	}

	if err := h.actions.SendFeedback(ctx, id, category, scheme); err != nil {
		h.log.Warn("Feedback failed", zap.String("complaintId", id), zap.Error(err))
		h.sendError(conn, msgID, "feedback_failed", "Failed to submit feedback")
		return
	}

	h.sendResponse(conn, msgID, map[string]interface{}{
		"type": "response",
		"data": map[string]string{"status": "ACCEPTED"},
	})
}

// sendView acknowledges a view change and pushes the re-rendered page
func (h *CommandHandler) sendView(conn *Conn, msgID string, view query.View) {
	h.sendResponse(conn, msgID, map[string]interface{}{
		"type": "response",
		"data": view,
	})
	conn.sendRaw(conn.render())
}

func (h *CommandHandler) sendResponse(conn *Conn, msgID string, response map[string]interface{}) {
	if msgID != "" {
		response["id"] = msgID
	}
	msg, _ := json.Marshal(response)
	if !conn.trySend(msg) {
		h.log.Warn("Failed to send response, channel full")
	}
}

func (h *CommandHandler) sendError(conn *Conn, msgID, code, message string) {
	err := map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": message,
	}
	if msgID != "" {
		err["id"] = msgID
	}
	msg, _ := json.Marshal(err)
	if !conn.trySend(msg) {
		h.log.Warn("Failed to send error, channel full")
	}
}
