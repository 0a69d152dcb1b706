package progress

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	// DefaultBuffer is the per-subscriber queue length
	DefaultBuffer = 64
	// DefaultRetention is how long a batch's last event stays replayable
	DefaultRetention = time.Hour
	// DefaultMaxBatches bounds how many batches the hub remembers
	DefaultMaxBatches = 1024
)

// Hub fans events out to subscribers. A subscriber whose queue is full
// misses the event; the publisher never waits. The hub also remembers the
// last event of each recent batch so a late subscriber still sees where
// the batch stands.
type Hub struct {
	mu         sync.RWMutex
	subs       map[*Subscription]struct{}
	batches    map[string]batchState
	retention  time.Duration
	maxBatches int
	now        func() time.Time
	dropped    atomic.Int64
}

type batchState struct {
	last Event
	seen time.Time
}

// Subscription is one listener on the hub
type Subscription struct {
	hub    *Hub
	ch     chan Event
	filter string
	once   sync.Once
}

// NewHub creates an empty hub with the default retention
func NewHub() *Hub {
	return NewHubWithRetention(DefaultRetention, DefaultMaxBatches)
}

// NewHubWithRetention creates a hub remembering at most maxBatches batches
// for retention after their last activity
func NewHubWithRetention(retention time.Duration, maxBatches int) *Hub {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if maxBatches <= 0 {
		maxBatches = DefaultMaxBatches
	}
	return &Hub{
		subs:       make(map[*Subscription]struct{}),
		batches:    make(map[string]batchState),
		retention:  retention,
		maxBatches: maxBatches,
		now:        time.Now,
	}
}

// Register marks a batch as known before it publishes anything
func (h *Hub) Register(batchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.batches[batchID]; !ok {
		h.remember(batchID, Event{})
	}
}

// Known reports whether the batch was registered or published recently
func (h *Hub) Known(batchID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	state, ok := h.batches[batchID]
	return ok && h.now().Sub(state.seen) < h.retention
}

// Subscribe registers a listener. A non-empty batchID limits delivery to
// that batch, and the batch's last event, if any, is queued first.
func (h *Hub) Subscribe(batchID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscription{hub: h, ch: make(chan Event, buffer), filter: batchID}

	h.mu.Lock()
	defer h.mu.Unlock()
	if batchID != "" {
		if state, ok := h.batches[batchID]; ok && state.last.Type != "" && h.now().Sub(state.seen) < h.retention {
			sub.ch <- state.last
		}
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Publish delivers e to every matching subscriber without blocking
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e.BatchID != "" {
		h.remember(e.BatchID, e)
	}

	for sub := range h.subs {
		if sub.filter != "" && sub.filter != e.BatchID {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			h.dropped.Add(1)
			logger.Debug("Dropped progress event for slow subscriber",
				zap.String("batchID", e.BatchID),
				zap.String("type", string(e.Type)),
			)
		}
	}
}

// remember stores the batch state, expiring stale batches and evicting the
// oldest once the bound is hit. Callers hold the write lock.
func (h *Hub) remember(batchID string, e Event) {
	now := h.now()
	for id, state := range h.batches {
		if now.Sub(state.seen) >= h.retention {
			delete(h.batches, id)
		}
	}
	if _, ok := h.batches[batchID]; !ok && len(h.batches) >= h.maxBatches {
		oldest := ""
		for id, state := range h.batches {
			if oldest == "" || state.seen.Before(h.batches[oldest].seen) {
				oldest = id
			}
		}
		delete(h.batches, oldest)
	}
	h.batches[batchID] = batchState{last: e, seen: now}
}

// Dropped returns how many deliveries were skipped
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Subscribers returns the current listener count
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// C returns the event channel. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close unregisters the subscription
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}
