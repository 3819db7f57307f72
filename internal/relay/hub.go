// Package relay fans project state deltas out to connected observers.
// Delivery is at-most-once per change with no cross-project ordering
// guarantee; consumers are expected to resync from the project snapshot
// endpoint and treat event payloads as hints, never as authoritative state.
package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/teamlance/engine/pkg/logger"
	"go.uber.org/zap"
)

const channel = "relay:projects"

// Event is one state delta for a project.
type Event struct {
	Type      string          `json:"type"`
	ProjectID uuid.UUID       `json:"project_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	At        time.Time       `json:"at"`
}

// Event types emitted by the engine.
const (
	EventAssignmentUpdated = "assignment_updated"
	EventProjectStatus     = "project_status"
	EventKickoffCompleted  = "kickoff_completed"
)

type subscriber struct {
	ch chan Event
}

// Hub routes events to local subscribers keyed by project id. When a redis
// client is configured, events are published through redis pub/sub so that
// deltas produced by the worker process reach api instances; without redis
// the hub dispatches locally (single-process and test setups).
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID][]*subscriber
	rdb         *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID][]*subscriber),
		rdb:         rdb,
	}
}

// Subscribe registers an observer for one project. The returned cancel
// function must be called when the observer disconnects.
func (h *Hub) Subscribe(projectID uuid.UUID) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, 64)}
	h.subscribers[projectID] = append(h.subscribers[projectID], sub)

	unsub := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[projectID]
		for i, s := range subs {
			if s == sub {
				h.subscribers[projectID] = append(subs[:i], subs[i+1:]...)
				close(sub.ch)
				break
			}
		}
		if len(h.subscribers[projectID]) == 0 {
			delete(h.subscribers, projectID)
		}
	}
	return sub.ch, unsub
}

// Broadcast emits an event. Best-effort: failures are logged and never
// propagate to the mutation that triggered them.
func (h *Hub) Broadcast(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if h.rdb != nil {
		data, err := json.Marshal(ev)
		if err != nil {
			logger.L().Error("relay marshal failed", zap.Error(err))
			return
		}
		if err := h.rdb.Publish(ctx, channel, data).Err(); err != nil {
			logger.L().Warn("relay publish failed", zap.Error(err), zap.String("project_id", ev.ProjectID.String()))
		}
		return
	}
	h.dispatch(ev)
}

// Run consumes the redis channel and dispatches to local subscribers. It
// blocks until the context is cancelled. No-op without a redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		<-ctx.Done()
		return
	}
	sub := h.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.L().Warn("relay unmarshal failed", zap.Error(err))
				continue
			}
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers[ev.ProjectID] {
		select {
		case sub.ch <- ev:
		default:
			// slow consumer, drop; the snapshot endpoint is the safety net
		}
	}
}
