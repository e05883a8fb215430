package pubsub

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civisense/internal/model"
)

type recordingHub struct {
	mu     sync.Mutex
	events []struct {
		channel string
		message map[string]interface{}
	}
}

func (h *recordingHub) Publish(channel string, message map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, struct {
		channel string
		message map[string]interface{}
	}{channel, message})
}

func TestBus_PublishDashboardWithoutRedis(t *testing.T) {
	hub := &recordingHub{}
	bus := New(nil, "civisense:dashboard", zap.NewNop())
	bus.SetWSHub(hub)

	snap := &model.Snapshot{ID: "01HX", Seq: 4, FetchedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, bus.PublishDashboard(snap))

	require.Len(t, hub.events, 1)
	assert.Equal(t, DashboardChannel, hub.events[0].channel)
	assert.Equal(t, "dashboard.refreshed", hub.events[0].message["type"])
	assert.Equal(t, int64(4), hub.events[0].message["seq"])
	assert.Equal(t, "01HX", hub.events[0].message["snapshotId"])
}

func TestBus_PublishComplaint(t *testing.T) {
	hub := &recordingHub{}
	bus := New(nil, "civisense:dashboard", zap.NewNop())
	bus.SetWSHub(hub)

	require.NoError(t, bus.PublishComplaint("15", map[string]interface{}{"type": "complaint.status_changed"}))

	require.Len(t, hub.events, 1)
	assert.Equal(t, "complaint:15", hub.events[0].channel)
}

func TestBus_DeliverSkipsOwnEvents(t *testing.T) {
	hub := &recordingHub{}
	bus := New(nil, "civisense:dashboard", zap.NewNop())
	bus.SetWSHub(hub)

	own, _ := json.Marshal(envelope{Origin: bus.origin, Channel: DashboardChannel, Event: map[string]interface{}{"type": "x"}})
	bus.deliver(own)
	assert.Empty(t, hub.events)

	remote, _ := json.Marshal(envelope{Origin: "other", Channel: "complaint:3", Event: map[string]interface{}{"type": "complaint.submitted"}})
	bus.deliver(remote)
	require.Len(t, hub.events, 1)
	assert.Equal(t, "complaint:3", hub.events[0].channel)
	assert.Equal(t, "complaint.submitted", hub.events[0].message["type"])

	bus.deliver([]byte("not json"))
	assert.Len(t, hub.events, 1)
}
