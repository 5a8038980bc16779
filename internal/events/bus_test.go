package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToMatchingSubscribers(t *testing.T) {
	bus := NewBus()
	all, cancelAll := bus.Subscribe(4)
	defer cancelAll()
	sessions, cancelSessions := bus.Subscribe(4, TypeSignedIn, TypeSignedOut)
	defer cancelSessions()

	bus.Publish(Event{Type: TypeSignedIn, UserID: "u1"})
	bus.Publish(Event{Type: TypePaired, UserID: "u2"})

	got := <-sessions
	assert.Equal(t, TypeSignedIn, got.Type)
	assert.False(t, got.At.IsZero())
	assert.Empty(t, sessions)

	assert.Equal(t, TypeSignedIn, (<-all).Type)
	assert.Equal(t, TypePaired, (<-all).Type)
}

func TestBusDropsWhenBufferFull(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(Event{Type: TypeCheckIn})
	bus.Publish(Event{Type: TypeCheckIn}) // dropped, must not block

	assert.Len(t, ch, 1)
}

func TestBusCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)

	cancel()
	cancel() // idempotent

	_, ok := <-ch
	assert.False(t, ok)

	bus.Publish(Event{Type: TypeSignedOut})
}

func TestBusClose(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := bus.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func (w *recordingWriter) messages() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func TestKafkaForwarderWritesEvents(t *testing.T) {
	writer := &recordingWriter{}
	forwarder := NewKafkaForwarder(writer)

	events := make(chan Event, 2)
	events <- Event{Type: TypeSignedIn, UserID: "u1", At: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)}
	events <- Event{Type: TypePaired, UserID: "u2", Attrs: map[string]string{"pair_id": "p1"}}
	close(events)

	forwarder.Run(context.Background(), events)

	msgs := writer.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "u1", string(msgs[0].Key))
	assert.Equal(t, TypeSignedIn, string(msgs[0].Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msgs[1].Value, &decoded))
	assert.Equal(t, "p1", decoded.Attrs["pair_id"])
}

func TestKafkaForwarderStopsOnContextCancel(t *testing.T) {
	forwarder := NewKafkaForwarder(&recordingWriter{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		forwarder.Run(ctx, make(chan Event))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop")
	}
}
