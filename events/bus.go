// Package events carries background notifications to the UI.
package events

import (
	"sync"
	"time"
)

const minBufferSize = 8

type Type string

const (
	// NewMessages means the open channel grew since it was loaded.
	NewMessages Type = "new_messages"
	// RefreshFailed means the poller could not reach the archive.
	RefreshFailed Type = "refresh_failed"
)

type Event struct {
	Type      Type
	ChannelID string
	Count     int64
	Err       error
	Time      time.Time
}

// Bus distributes events to subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	bufferSize  int
}

func NewBus(bufferSize int) *Bus {
	if bufferSize < minBufferSize {
		bufferSize = minBufferSize
	}
	return &Bus{bufferSize: bufferSize}
}

// Subscribe returns a channel that receives events. The caller must keep
// reading from it.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			close(sub)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribers. Events are dropped for
// subscribers whose buffer is full.
func (b *Bus) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
