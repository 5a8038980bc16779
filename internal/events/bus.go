package events

import (
	"log/slog"
	"sync"
	"time"
)

const (
	TypeSignedIn    = "session.signed_in"
	TypeSignedOut   = "session.signed_out"
	TypePaired      = "pairing.paired"
	TypePairRemoved = "pairing.pair_removed"
	TypeCycleReset  = "cycle.reset"
	TypeCycleRolled = "cycle.started"
	TypeCheckIn     = "room.check_in"
)

type Event struct {
	Type   string            `json:"type"`
	UserID string            `json:"user_id,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty"`
	At     time.Time         `json:"at"`
}

// Bus fans events out to subscribers over buffered channels.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscriber
	closed bool
}

type subscriber struct {
	ch     chan Event
	filter map[string]bool
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscriber)}
}

// Subscribe registers a subscriber for the given event types (all types when
// none are given). The returned cancel func unsubscribes and closes the channel.
func (b *Bus) Subscribe(buffer int, types ...string) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	var filter map[string]bool
	if len(types) > 0 {
		filter = make(map[string]bool, len(types))
		for _, t := range types {
			filter[t] = true
		}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = subscriber{ch: ch, filter: filter}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			sub, ok := b.subs[id]
			if !ok {
				return
			}
			delete(b.subs, id)
			close(sub.ch)
		})
	}
	return ch, cancel
}

func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter[e.Type] {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			slog.Warn("event dropped, subscriber buffer full", "type", e.Type)
		}
	}
}

// Close closes every subscriber channel. Later subscriptions receive a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
