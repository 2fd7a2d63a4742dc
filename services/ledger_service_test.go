package services

import (
	"context"
	"sync"
	"testing"

	"greenscore-service/events"

	"github.com/stretchr/testify/require"
)

// capturePublisher collects published events in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []events.RewardEvent
}

func (p *capturePublisher) Publish(_ context.Context, ev events.RewardEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	return nil
}

func TestLedgerAwardAndBalance(t *testing.T) {
	db := newTestDB(t)
	pub := &capturePublisher{}
	ledger := NewLedgerService(db, pub)
	user := createTestUser(t, db, "Ada")

	_, err := ledger.Award(user.ID, "Tip Completed: LED Bulbs", 10, nil)
	require.NoError(t, err)
	_, err = ledger.Award(user.ID, "Bill Upload Bonus", 5, map[string]any{"billId": "b1"})
	require.NoError(t, err)
	_, err = ledger.Award(user.ID, "Wallet Connected", 10, nil)
	require.NoError(t, err)

	balance, err := ledger.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, 25.0, balance)

	// Another user's transactions never leak into the sum.
	other := createTestUser(t, db, "Bob")
	_, err = ledger.Award(other.ID, "Tip Completed", 50, nil)
	require.NoError(t, err)

	balance, err = ledger.Balance(user.ID)
	require.NoError(t, err)
	require.Equal(t, 25.0, balance)
}

func TestLedgerAwardPublishesEvent(t *testing.T) {
	db := newTestDB(t)
	pub := &capturePublisher{}
	ledger := NewLedgerService(db, pub)
	user := createTestUser(t, db, "Ada")

	_, err := ledger.Award(user.ID, "Challenge Reward: Energy Reduction", 50, nil)
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	require.Equal(t, user.ID, ev.UserID)
	require.Equal(t, 50.0, ev.Tokens)
	require.Equal(t, events.TypeChallenge, ev.Type)
}

func TestLedgerRecentLimit(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db, nil)
	user := createTestUser(t, db, "Ada")

	for i := 0; i < 15; i++ {
		_, err := ledger.Award(user.ID, "Tip Completed", 1, nil)
		require.NoError(t, err)
	}

	txs, err := ledger.Recent(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, txs, 10)

	// Out-of-range limits fall back to 10.
	txs, err = ledger.Recent(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txs, 10)
}

func TestClassifyAction(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{"Tip Completed: Unplug Devices", events.TypeTip},
		{"Challenge Reward: Carbon Footprint", events.TypeChallenge},
		{"Wallet Connected", events.TypeTokens},
		{"Bill Upload Bonus", events.TypeTokens},
		{"Successful Referral", events.TypeScore},
		{"Setup Completed", events.TypeScore},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, events.ClassifyAction(tt.action), tt.action)
	}
}
