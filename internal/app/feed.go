package app

import (
	"sync"

	"quiz-review-service/internal/domain"
)

// Feed fans ingest events out to subscribers. Slow subscribers lose their
// oldest pending event rather than blocking publishers.
type Feed struct {
	mu          sync.Mutex
	subscribers map[chan domain.IngestEvent]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[chan domain.IngestEvent]struct{})}
}

// Subscribe registers a new subscriber.
func (f *Feed) Subscribe() (<-chan domain.IngestEvent, func()) {
	ch := make(chan domain.IngestEvent, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber without blocking.
func (f *Feed) Publish(ev domain.IngestEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Len reports the number of active subscribers.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}
