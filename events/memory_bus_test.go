package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversInOrder(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	err := bus.Subscribe(context.Background(), func(ev RewardEvent) {
		mu.Lock()
		got = append(got, ev.Action)
		if len(got) == 3 {
			close(done)
		}
		mu.Unlock()
	})
	require.NoError(t, err)

	for _, action := range []string{"first", "second", "third"} {
		require.NoError(t, bus.Publish(context.Background(), RewardEvent{UserID: "u1", Action: action}))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "second", "third"}, got)
}

func TestMemoryBusFanOut(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		require.NoError(t, bus.Subscribe(context.Background(), func(ev RewardEvent) {
			wg.Done()
		}))
	}

	require.NoError(t, bus.Publish(context.Background(), RewardEvent{UserID: "u1", Action: "x"}))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not all subscribers saw the event")
	}
}

// Handlers run one event at a time: a slow handler for event N delays delivery
// of event N+1 instead of racing it.
func TestMemoryBusSerializesHandlers(t *testing.T) {
	bus := NewMemoryBus(16)
	defer bus.Close()

	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0
	done := make(chan struct{})
	seen := 0

	err := bus.Subscribe(context.Background(), func(ev RewardEvent) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		seen++
		if seen == 5 {
			close(done)
		}
		mu.Unlock()
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(context.Background(), RewardEvent{UserID: "u1"}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, maxInFlight)
}

func TestMemoryBusFullBuffer(t *testing.T) {
	bus := NewMemoryBus(1)

	// Block the dispatch goroutine so published events pile up in the buffer.
	release := make(chan struct{})
	require.NoError(t, bus.Subscribe(context.Background(), func(ev RewardEvent) {
		<-release
	}))

	// At most one event can be in the handler and one in the buffer, so the
	// third publish must overflow.
	var err error
	for i := 0; i < 3; i++ {
		err = bus.Publish(context.Background(), RewardEvent{UserID: "u1"})
		if err != nil {
			break
		}
	}
	require.ErrorIs(t, err, ErrBusFull)

	close(release)
	bus.Close()
}