package notify

import (
	"sync"
)

// Message is one notification pushed to subscribers.
type Message struct {
	EventType string
	AuctionID string
	Payload   []byte
}

// Hub fans settlement events out to SSE subscribers. Subscriptions are
// keyed by auction id; the empty topic receives everything. Delivery is
// best effort: a subscriber that cannot keep up drops messages instead
// of stalling the broadcast.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Message]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Message]struct{}),
		buffer:      16,
	}
}

// Subscribe registers a channel for one topic. An empty topic subscribes
// to all auctions.
func (h *Hub) Subscribe(topic string) chan Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Message, h.buffer)
	if _, ok := h.subscribers[topic]; !ok {
		h.subscribers[topic] = make(map[chan Message]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes the channel.
func (h *Hub) Unsubscribe(topic string, ch chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscribers[topic]; ok {
		if _, exists := subs[ch]; exists {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, topic)
		}
	}
}

// Broadcast delivers the message to the auction's subscribers and to
// the catch-all topic.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliver(h.subscribers[msg.AuctionID], msg)
	if msg.AuctionID != "" {
		h.deliver(h.subscribers[""], msg)
	}
}

func (h *Hub) deliver(subs map[chan Message]struct{}, msg Message) {
	for ch := range subs {
		select {
		case ch <- msg:
		default:
			// Subscriber buffer full; drop rather than block.
		}
	}
}

// SubscriberCount reports active subscriptions for a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// Close shuts down all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, topic)
	}
}
