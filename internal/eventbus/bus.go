// Package eventbus implements the in-process Event Bus (C8): a
// best-effort topic broadcaster that the coordinators publish ChangeEvents
// to after a successful mutation, and the SSE transport subscribes to.
package eventbus

import (
	"sync"

	"github.com/radio-aktywne/showcaster/internal/model"
)

// topic is the single channel name every ChangeEvent is published under
// (mirrors the source's self._channels.publish(data, "events")).
const topic = "events"

// subscriberBuffer bounds how many unconsumed events a slow subscriber can
// queue before Publish starts dropping for it rather than blocking.
const subscriberBuffer = 64

// Bus is a single-topic, multi-subscriber broadcaster. The zero value is not
// usable; construct with New.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan model.ChangeEvent
	next int
}

func New() *Bus {
	return &Bus{subs: make(map[int]chan model.ChangeEvent)}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function. The caller must call unsubscribe when done to avoid
// leaking the channel and its goroutine-side buffer.
func (b *Bus) Subscribe() (<-chan model.ChangeEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan model.ChangeEvent, subscriberBuffer)
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if ch, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// Publish broadcasts event to every current subscriber on the events topic.
// A subscriber whose buffer is full is skipped rather than blocking the
// publisher — Publish is called from the coordinator's request path and
// must never stall on a slow SSE client.
func (b *Bus) Publish(event model.ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Topic returns the fixed topic name this bus publishes under.
func Topic() string { return topic }
