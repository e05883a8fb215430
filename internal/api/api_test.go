package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"civisense/internal/model"
	"civisense/internal/service"
	"civisense/internal/ws"
)

type fakeComplaints struct {
	forms    []model.ComplaintFormData
	statuses map[string]model.Status
	feedback []string

	result *model.SubmissionResult
	err    error
}

func (f *fakeComplaints) Submit(ctx context.Context, form model.ComplaintFormData) (*model.SubmissionResult, error) {
	f.forms = append(f.forms, form)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeComplaints) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if f.err != nil {
		return f.err
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeComplaints) SendFeedback(ctx context.Context, id, category, scheme string) error {
	if f.err != nil {
		return f.err
	}
	f.feedback = append(f.feedback, id+"|"+category+"|"+scheme)
	return nil
}

type staticSource struct {
	snap *model.Snapshot
}

func (s *staticSource) Latest() (*model.Snapshot, bool) {
	return s.snap, s.snap != nil
}

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		ID:        "01HXSNAP",
		Seq:       5,
		FetchedAt: time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC),
		Complaints: []model.Complaint{
			{ID: "1", Description: "Pipe burst on main road", Category: "Water Supply", Area: "Adyar", Priority: model.PriorityHigh, PriorityScore: 0.9, Status: model.StatusNew, Timestamp: "2024-05-01T10:00:00Z", Contact: model.Contact{Name: "Asha"}},
			{ID: "2", Description: "Pothole", Category: "Road Maintenance", Area: "Guindy", Priority: model.PriorityLow, PriorityScore: 0.2, Status: model.StatusAssigned, Timestamp: "2024-05-03T10:00:00Z", Contact: model.Contact{Name: "Ravi"}},
			{ID: "3", Description: "Clinic closed", Category: "Healthcare", Area: "Adyar", Priority: model.PriorityMedium, PriorityScore: 0.5, Status: model.StatusResolved, Timestamp: "2024-05-02T10:00:00Z", Contact: model.Contact{Name: "Meena"}},
		},
		Stats:      model.DashboardStats{Total: 30, Pending: 12, Resolved: 9, HighPriority: 1},
		ByCategory: map[string]int{"Water Supply": 4},
		ByStatus:   map[string]int{"new": 10},
		TopAreas:   []model.AreaCount{{Area: "Adyar", Count: 6}},
	}
}

func setupServer(t *testing.T, complaints *fakeComplaints, source *staticSource, hub *ws.Hub) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/v1", Routes(Dependencies{
		Complaints: complaints,
		Snapshots:  source,
		Hub:        hub,
		Log:        zap.NewNop(),
		PageSize:   2,
	}))
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestSubmitComplaint(t *testing.T) {
	complaints := &fakeComplaints{result: &model.SubmissionResult{ReferenceID: "77", Category: "Water Supply", Confidence: 90, NextSteps: service.NextSteps}}
	server := setupServer(t, complaints, &staticSource{}, nil)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/v1/complaints", map[string]interface{}{
		"description": "No water for three days in our street",
		"area":        "Adyar",
		"name":        "Asha",
		"phone":       "98765-43210",
		"consent":     true,
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "77", body["referenceId"])
	assert.Len(t, body["nextSteps"], 3)

	require.Len(t, complaints.forms, 1)
	form := complaints.forms[0]
	assert.Equal(t, "9876543210", form.Phone)
	assert.Equal(t, model.ServiceOther, form.ServiceType)
	assert.Equal(t, model.UrgencyMedium, form.Urgency)
}

func TestSubmitComplaintErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &service.ValidationError{Violations: []string{"/consent: must be true"}}, http.StatusBadRequest, "validation_failed"},
		{"transport", service.ErrSubmissionFailed, http.StatusBadGateway, "submit_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupServer(t, &fakeComplaints{err: tt.err}, &staticSource{}, nil)

			resp, body := doJSON(t, http.MethodPost, server.URL+"/v1/complaints", map[string]interface{}{"description": "x"})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestSubmitComplaintTransportMessage(t *testing.T) {
	server := setupServer(t, &fakeComplaints{err: service.ErrSubmissionFailed}, &staticSource{}, nil)

	_, body := doJSON(t, http.MethodPost, server.URL+"/v1/complaints", map[string]interface{}{})
	assert.Equal(t, "Failed to submit complaint", body["message"])
}

func TestSubmitComplaintBadBody(t *testing.T) {
	server := setupServer(t, &fakeComplaints{}, &staticSource{}, nil)

	resp, err := http.Post(server.URL+"/v1/complaints", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetDashboard(t *testing.T) {
	server := setupServer(t, &fakeComplaints{}, &staticSource{snap: testSnapshot()}, nil)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(5), body["seq"])
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(30), stats["total"])

	page := body["page"].(map[string]interface{})
	assert.Equal(t, float64(2), page["totalPages"])
	items := page["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].(map[string]interface{})["id"])
	assert.Equal(t, "3", items[1].(map[string]interface{})["id"])
}

func TestGetDashboardQuery(t *testing.T) {
	server := setupServer(t, &fakeComplaints{}, &staticSource{snap: testSnapshot()}, nil)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/v1/dashboard?area=Adyar&sort=priority&dir=asc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := body["page"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "3", items[0].(map[string]interface{})["id"])
	assert.Equal(t, "1", items[1].(map[string]interface{})["id"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/v1/dashboard?search=asha", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items = body["page"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].(map[string]interface{})["id"])

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/v1/dashboard?page=9", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetDashboardInvalidQuery(t *testing.T) {
	server := setupServer(t, &fakeComplaints{}, &staticSource{snap: testSnapshot()}, nil)

	for _, q := range []string{"sort=colour", "dir=sideways", "page=two"} {
		resp, body := doJSON(t, http.MethodGet, server.URL+"/v1/dashboard?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Equal(t, "invalid_query", body["code"], q)
	}
}

func TestGetDashboardNotReady(t *testing.T) {
	server := setupServer(t, &fakeComplaints{}, &staticSource{}, nil)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/v1/dashboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "not_ready", body["code"])
}

func TestGetComplaint(t *testing.T) {
	server := setupServer(t, &fakeComplaints{}, &staticSource{snap: testSnapshot()}, nil)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/v1/complaints/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Clinic closed", body["description"])

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/v1/complaints/404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateStatus(t *testing.T) {
	complaints := &fakeComplaints{statuses: make(map[string]model.Status)}
	server := setupServer(t, complaints, &staticSource{snap: testSnapshot()}, nil)

	resp, body := doJSON(t, http.MethodPatch, server.URL+"/v1/complaints/1/status", map[string]string{"status": "Scheme Linked"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", body["id"])
	assert.Equal(t, "Scheme Linked", body["status"])
	assert.Equal(t, model.StatusSchemeLinked, complaints.statuses["1"])

	resp, body = doJSON(t, http.MethodPatch, server.URL+"/v1/complaints/1/status", map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_status", body["code"])
}

func TestUpdateStatusRemoteFailure(t *testing.T) {
	complaints := &fakeComplaints{statuses: make(map[string]model.Status), err: errors.New("service down")}
	server := setupServer(t, complaints, &staticSource{}, nil)

	resp, body := doJSON(t, http.MethodPatch, server.URL+"/v1/complaints/1/status", map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "update_failed", body["code"])
}

func TestSendFeedback(t *testing.T) {
	complaints := &fakeComplaints{}
	server := setupServer(t, complaints, &staticSource{}, nil)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/v1/feedback", map[string]string{"complaintId": "9", "correctScheme": "PMAY"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []string{"9||PMAY"}, complaints.feedback)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/v1/feedback", map[string]string{"correctScheme": "PMAY"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetOptions(t *testing.T) {
	server := setupServer(t, &fakeComplaints{}, &staticSource{}, nil)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/v1/options", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	categories := body["categories"].([]interface{})
	assert.Equal(t, model.AllCategories, categories[0])
	assert.Len(t, categories, len(model.Categories)+1)
	statuses := body["statuses"].([]interface{})
	assert.Len(t, statuses, 7)
	assert.Equal(t, float64(2), body["pageSize"])
}

func TestWebSocketDashboardSubscription(t *testing.T) {
	source := &staticSource{snap: testSnapshot()}
	hub := ws.NewHub(source, 2, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := setupServer(t, &fakeComplaints{}, source, hub)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "channel": ws.DashboardChannel}))

	var ack map[string]interface{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ack))
	assert.Equal(t, "subscribed", ack["ack"])

	var frame map[string]interface{}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "dashboard", frame["type"])
	assert.Equal(t, float64(5), frame["seq"])
}

func TestRequestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(zap.New(core)))
	r.Patch("/complaints/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/complaints/42/status", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	entries := logs.All()
	require.Len(t, entries, 2)

	patch := entries[0]
	assert.Equal(t, zapcore.InfoLevel, patch.Level)
	fields := patch.ContextMap()
	assert.Equal(t, "/complaints/{id}/status", fields["route"])
	assert.NotEmpty(t, fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])

	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}
