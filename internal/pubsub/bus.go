package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"civisense/internal/model"
)

// DashboardChannel carries dashboard.refreshed events
const DashboardChannel = "dashboard"

// Bus delivers events to the local websocket hub and, when a Redis client is
// configured, to every other gateway instance listening on the same channel.
type Bus struct {
	rdb          *redis.Client
	redisChannel string
	origin       string
	log          *zap.Logger
	ctx          context.Context
	wsHub        WSHub
}

type WSHub interface {
	Publish(channel string, message map[string]interface{})
}

// envelope is what goes over Redis
type envelope struct {
	Origin  string                 `json:"origin"`
	Channel string                 `json:"channel"`
	Event   map[string]interface{} `json:"event"`
}

// New creates a bus. rdb may be nil, in which case events stay in process.
func New(rdb *redis.Client, redisChannel string, log *zap.Logger) *Bus {
	return &Bus{
		rdb:          rdb,
		redisChannel: redisChannel,
		origin:       ulid.Make().String(),
		log:          log,
		ctx:          context.Background(),
	}
}

// SetWSHub sets the WebSocket hub for event broadcasting
func (b *Bus) SetWSHub(hub WSHub) {
	b.wsHub = hub
}

// PublishDashboard announces an accepted dashboard snapshot
func (b *Bus) PublishDashboard(snap *model.Snapshot) error {
	return b.Publish(DashboardChannel, map[string]interface{}{
		"type":       "dashboard.refreshed",
		"seq":        snap.Seq,
		"snapshotId": snap.ID,
		"fetchedAt":  snap.FetchedAt.Format(time.RFC3339Nano),
	})
}

// PublishComplaint publishes an event to a complaint's channel
func (b *Bus) PublishComplaint(complaintID string, event map[string]interface{}) error {
	return b.Publish("complaint:"+complaintID, event)
}

// Publish publishes an event to a channel. A Redis failure is logged and
// returned, but local subscribers still receive the event.
func (b *Bus) Publish(channel string, event map[string]interface{}) error {
	if b.wsHub != nil {
		b.wsHub.Publish(channel, event)
	}

	if b.rdb == nil {
		b.log.Debug("Published event", zap.String("channel", channel))
		return nil
	}

	data, err := json.Marshal(envelope{Origin: b.origin, Channel: channel, Event: event})
	if err != nil {
		return err
	}

	if err := b.rdb.Publish(b.ctx, b.redisChannel, data).Err(); err != nil {
		b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
		return err
	}

	b.log.Debug("Published event", zap.String("channel", channel), zap.String("event", string(data)))
	return nil
}

// Listen forwards events published by other instances to the local hub
// until ctx is done. It returns immediately when Redis is not configured.
func (b *Bus) Listen(ctx context.Context) {
	if b.rdb == nil {
		return
	}

	sub := b.rdb.Subscribe(ctx, b.redisChannel)
	defer sub.Close()

	b.log.Info("Listening for remote events", zap.String("redisChannel", b.redisChannel))

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			b.deliver([]byte(msg.Payload))
		}
	}
}

func (b *Bus) deliver(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.log.Warn("Failed to parse remote event", zap.Error(err))
		return
	}
	if env.Origin == b.origin || env.Channel == "" {
		return
	}
	if b.wsHub != nil {
		b.wsHub.Publish(env.Channel, env.Event)
	}
}
