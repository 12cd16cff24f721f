// Package broker relays live comment events to in-process listeners.
//
// Delivery is best effort and at most once per subscriber: a subscriber
// whose buffer is full misses the event. Nothing is persisted.
package broker

import (
	"context"
	"sync"
	"time"

	"devtask/internal/models"
)

// DefaultBuffer is the per-subscriber channel capacity
const DefaultBuffer = 16

// Event types
const (
	EventCommentAdded   = "comment_added"
	EventCommentDeleted = "comment_deleted"
)

// Event is a change to a task's comment thread
type Event struct {
	Type    string             `json:"type"`
	TaskID  string             `json:"task_id"`
	Comment models.TaskComment `json:"comment"`
	At      time.Time          `json:"at"`
}

type subscriber struct {
	ch chan Event
}

// Broker fans events out to the subscribers of each task
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

// New creates a Broker; buffer <= 0 selects DefaultBuffer
func New(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{subs: make(map[string]map[*subscriber]struct{}), buffer: buffer}
}

// Subscribe registers a listener for taskID. The channel is closed once ctx ends.
func (b *Broker) Subscribe(ctx context.Context, taskID string) <-chan Event {
	sub := &subscriber{ch: make(chan Event, b.buffer)}

	b.mu.Lock()
	if b.subs[taskID] == nil {
		b.subs[taskID] = make(map[*subscriber]struct{})
	}
	b.subs[taskID][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[taskID], sub)
		if len(b.subs[taskID]) == 0 {
			delete(b.subs, taskID)
		}
		close(sub.ch)
	}()
	return sub.ch
}

// Publish delivers ev to every current subscriber of taskID without blocking.
// It returns how many subscribers received the event.
func (b *Broker) Publish(taskID string, ev Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for sub := range b.subs[taskID] {
		select {
		case sub.ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of listeners on taskID
func (b *Broker) Subscribers(taskID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[taskID])
}
