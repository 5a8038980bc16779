package app

import (
	"context"
	"testing"
	"time"

	"github.com/pairtrack/pairtrack/internal/events"
)

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("logSessionChanges did not return")
	}
}

func TestLogSessionChangesStops(t *testing.T) {
	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		changes := make(chan events.Event)
		done := make(chan struct{})
		go func() {
			logSessionChanges(ctx, changes)
			close(done)
		}()
		cancel()
		waitDone(t, done)
	})

	t.Run("channel closed", func(t *testing.T) {
		changes := make(chan events.Event, 1)
		changes <- events.Event{Type: events.TypeSignedOut, UserID: "u1"}
		close(changes)
		done := make(chan struct{})
		go func() {
			logSessionChanges(context.Background(), changes)
			close(done)
		}()
		waitDone(t, done)
	})
}
