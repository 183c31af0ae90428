// Package events fans named dashboard events out to live observers and
// encodes them in the server-sent events wire format.
package events

import (
	"context"
	"log/slog"
	"sync"
)

// Event names carried on the stream.
const (
	Init           = "init"
	SessionNew     = "session-new"
	SessionRemoved = "session-removed"
	Status         = "status"
	Question       = "question"
	Answer         = "answer"
	Reset          = "reset"
	Shutdown       = "shutdown"
)

// SubscriberBuffer is the number of frames a subscriber may lag behind
// before it is dropped.
const SubscriberBuffer = 256

// Subscription is one observer's view of the stream. Frames arrive in
// publish order; the channel is closed once the subscription is removed.
type Subscription struct {
	id     uint64
	frames chan Frame
}

// Frames returns the channel of encoded frames for this observer.
func (s *Subscription) Frames() <-chan Frame { return s.frames }

// Broadcaster holds the live subscriber set. It knows nothing about
// sessions; callers decide what to publish and when.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	logger *slog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[uint64]*Subscription),
		logger: logger,
	}
}

// Subscribe registers an observer and queues init as its first frame. The
// subscription is removed when ctx is done.
func (b *Broadcaster) Subscribe(ctx context.Context, init Frame) *Subscription {
	b.mu.Lock()
	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		frames: make(chan Frame, SubscriberBuffer),
	}
	sub.frames <- init
	b.subs[sub.id] = sub
	b.mu.Unlock()

	context.AfterFunc(ctx, func() { b.Unsubscribe(sub) })
	b.logger.Debug("observer subscribed", "subscriber", sub.id, "clients", b.Count())
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it more than
// once is harmless.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	removed := b.removeLocked(sub.id)
	b.mu.Unlock()

	if removed {
		b.logger.Debug("observer unsubscribed", "subscriber", sub.id)
	}
}

// Publish encodes payload once and offers the frame to every subscriber.
// Delivery is best effort: a subscriber whose buffer is full is removed
// on the spot and never retried.
func (b *Broadcaster) Publish(name string, payload any) {
	frame, err := Encode(name, payload)
	if err != nil {
		b.logger.Error("encode event", "event", name, "error", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		select {
		case sub.frames <- frame:
		default:
			b.removeLocked(id)
			b.logger.Warn("dropping slow observer", "subscriber", id, "event", name)
		}
	}
}

// Close removes every subscriber, ending their streams.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id := range b.subs {
		b.removeLocked(id)
	}
}

// Count returns the number of live subscribers.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) removeLocked(id uint64) bool {
	sub, ok := b.subs[id]
	if !ok {
		return false
	}
	delete(b.subs, id)
	close(sub.frames)
	return true
}
