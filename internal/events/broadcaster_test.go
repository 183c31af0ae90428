package events

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func recv(t *testing.T, ch <-chan Frame) Frame {
	t.Helper()
	select {
	case f, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return nil
}

func mustEncode(t *testing.T, name string, payload any) Frame {
	t.Helper()
	f, err := Encode(name, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return f
}

func TestSubscribeDeliversInitFirst(t *testing.T) {
	b := NewBroadcaster(testLogger())
	init := mustEncode(t, Init, map[string]int{"sessions": 0})

	sub := b.Subscribe(context.Background(), init)
	b.Publish(Status, map[string]string{"agent": "a1"})

	if got := string(recv(t, sub.Frames())); got != string(init) {
		t.Errorf("first frame = %q, want %q", got, init)
	}
	if got := string(recv(t, sub.Frames())); !strings.HasPrefix(got, "event: status\n") {
		t.Errorf("second frame = %q, want status event", got)
	}
}

func TestPublishFansOutInOrder(t *testing.T) {
	b := NewBroadcaster(testLogger())
	init := mustEncode(t, Init, struct{}{})
	subs := []*Subscription{
		b.Subscribe(context.Background(), init),
		b.Subscribe(context.Background(), init),
		b.Subscribe(context.Background(), init),
	}

	names := []string{SessionNew, Status, Question, Answer}
	for _, name := range names {
		b.Publish(name, struct{}{})
	}

	for i, sub := range subs {
		recv(t, sub.Frames())
		for _, name := range names {
			got := string(recv(t, sub.Frames()))
			if !strings.HasPrefix(got, "event: "+name+"\n") {
				t.Errorf("subscriber %d: got %q, want %s", i, got, name)
			}
		}
	}
}

func TestContextCancelUnsubscribes(t *testing.T) {
	b := NewBroadcaster(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	sub := b.Subscribe(ctx, mustEncode(t, Init, struct{}{}))
	if b.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", b.Count())
	}

	cancel()
	recv(t, sub.Frames())

	select {
	case _, ok := <-sub.Frames():
		if ok {
			t.Fatal("expected channel to close after cancel")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("subscription not closed after context cancel")
	}
	if b.Count() != 0 {
		t.Errorf("Count() = %d after cancel, want 0", b.Count())
	}
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	b := NewBroadcaster(testLogger())
	slow := b.Subscribe(context.Background(), mustEncode(t, Init, struct{}{}))
	fast := b.Subscribe(context.Background(), mustEncode(t, Init, struct{}{}))
	recv(t, fast.Frames())

	for i := 0; i < SubscriberBuffer+1; i++ {
		b.Publish(Status, map[string]int{"n": i})
		recv(t, fast.Frames())
	}

	if b.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 (slow observer dropped)", b.Count())
	}

	n := 0
	for range slow.Frames() {
		n++
	}
	if n != SubscriberBuffer {
		t.Errorf("slow observer got %d frames before removal, want %d", n, SubscriberBuffer)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroadcaster(testLogger())
	sub := b.Subscribe(context.Background(), mustEncode(t, Init, struct{}{}))
	b.Unsubscribe(sub)
	b.Unsubscribe(sub)
	if b.Count() != 0 {
		t.Errorf("Count() = %d, want 0", b.Count())
	}
}

func TestCloseEndsAllStreams(t *testing.T) {
	b := NewBroadcaster(testLogger())
	subs := []*Subscription{
		b.Subscribe(context.Background(), mustEncode(t, Init, struct{}{})),
		b.Subscribe(context.Background(), mustEncode(t, Init, struct{}{})),
	}

	b.Close()

	for i, sub := range subs {
		recv(t, sub.Frames())
		if _, ok := <-sub.Frames(); ok {
			t.Errorf("subscriber %d still open after Close", i)
		}
	}
	if b.Count() != 0 {
		t.Errorf("Count() = %d, want 0", b.Count())
	}
}
