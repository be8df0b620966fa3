package inventory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nexusmarket/backend/pkg/logger"
)

const (
	EventInventoryUpdate = "inventory_update"
	EventProductAdded    = "product_added"
	EventProductDeleted  = "product_deleted"
)

const writeWait = 5 * time.Second

// Event is one message pushed to /ws/inventory subscribers.
type Event struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Stock     *int   `json:"stock,omitempty"`
}

// StockChanged builds an inventory_update event with the post-change stock.
func StockChanged(productID string, stock int) Event {
	s := stock
	return Event{Type: EventInventoryUpdate, ProductID: productID, Stock: &s}
}

// ProductAdded builds a product_added event.
func ProductAdded(productID string, stock int) Event {
	s := stock
	return Event{Type: EventProductAdded, ProductID: productID, Stock: &s}
}

// ProductDeleted builds a product_deleted event.
func ProductDeleted(productID string) Event {
	return Event{Type: EventProductDeleted, ProductID: productID}
}

// Broadcaster is the surface services use to push inventory events.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event)
}

// conn is the subset of *websocket.Conn the hub depends on.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Subscriber struct {
	mu   sync.Mutex
	conn conn
}

func (s *Subscriber) write(data []byte, deadline time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wc, ok := s.conn.(*websocket.Conn); ok {
		_ = wc.SetWriteDeadline(deadline)
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub owns all live inventory subscriptions. Broadcast walks a snapshot of
// the subscriber set so a slow or dead peer never blocks registration, and
// prunes any subscriber whose send fails.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
	logg *logger.Logger
}

// NewHub builds an empty hub.
func NewHub(logg *logger.Logger) *Hub {
	return &Hub{
		subs: make(map[*Subscriber]struct{}),
		logg: logg,
	}
}

// Subscribe registers a connection and returns its handle for Unsubscribe.
func (h *Hub) Subscribe(c conn) *Subscriber {
	sub := &Subscriber{conn: c}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber and closes its connection.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	_, present := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()
	if present {
		_ = sub.conn.Close()
	}
}

// Count reports the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast sends the event to every subscriber, best effort. Failed
// subscribers are dropped; delivery is never retried.
func (h *Hub) Broadcast(ctx context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		if h.logg != nil {
			h.logg.Error(ctx, "marshal inventory event", err)
		}
		return
	}

	h.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	deadline := time.Now().Add(writeWait)
	for _, sub := range snapshot {
		if err := sub.write(data, deadline); err != nil {
			if h.logg != nil {
				h.logg.Warn(h.logg.WithField(ctx, "event_type", event.Type), "dropping inventory subscriber")
			}
			h.Unsubscribe(sub)
		}
	}
}

// Close drops every subscriber, closing their connections.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[*Subscriber]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		_ = sub.conn.Close()
	}
}
