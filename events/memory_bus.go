package events

import (
	"context"
	"errors"
	"sync"
)

// ErrBusFull is returned when the buffer is exhausted rather than blocking the
// publishing request handler.
var ErrBusFull = errors.New("events: bus buffer full")

// MemoryBus is the in-process bus. All handlers run on a single dispatch
// goroutine, so the handlers for one event finish before the next event is
// delivered — threshold checks in subscribers never see interleaved updates.
type MemoryBus struct {
	ch   chan RewardEvent
	done chan struct{}

	mu       sync.RWMutex
	handlers []func(RewardEvent)

	closeOnce sync.Once
}

func NewMemoryBus(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = 256
	}
	b := &MemoryBus{
		ch:   make(chan RewardEvent, buffer),
		done: make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *MemoryBus) run() {
	for {
		select {
		case <-b.done:
			return
		case ev := <-b.ch:
			b.mu.RLock()
			handlers := make([]func(RewardEvent), len(b.handlers))
			copy(handlers, b.handlers)
			b.mu.RUnlock()
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}

func (b *MemoryBus) Publish(_ context.Context, ev RewardEvent) error {
	select {
	case b.ch <- ev:
		return nil
	case <-b.done:
		return errors.New("events: bus closed")
	default:
		return ErrBusFull
	}
}

// Subscribe registers handler for every subsequent event. The context is
// accepted for interface symmetry with the redis bus; registration itself
// does not block.
func (b *MemoryBus) Subscribe(_ context.Context, handler func(RewardEvent)) error {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
