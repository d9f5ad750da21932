package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orientanurag/upnext-mvp/internal/models"
)

func drainUpdate(t *testing.T, sub *Subscriber) Update {
	t.Helper()
	select {
	case update, ok := <-sub.Updates():
		require.True(t, ok, "channel closed unexpectedly")
		return update
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestBroadcaster_SnapshotFirst(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster(nil)
	b.SetSnapshotFunc(func(ctx context.Context) (*EngineState, error) {
		return &EngineState{Leaderboard: []*models.Bid{}}, nil
	})

	sub, err := b.Subscribe(ctx)
	require.NoError(t, err)
	defer b.Unsubscribe(sub)

	first := drainUpdate(t, sub)
	assert.Equal(t, UpdateSnapshot, first.Type)
	require.NotNil(t, first.State)
	assert.Equal(t, uint64(0), first.Version)
}

func TestBroadcaster_VersionsAreGapFree(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster(nil)
	b.SetSnapshotFunc(func(ctx context.Context) (*EngineState, error) {
		return &EngineState{}, nil
	})

	b.BidCreated(ctx, &models.Bid{ID: "bid1"})
	b.BidCreated(ctx, &models.Bid{ID: "bid2"})

	sub, err := b.Subscribe(ctx)
	require.NoError(t, err)
	defer b.Unsubscribe(sub)

	snapshot := drainUpdate(t, sub)
	assert.Equal(t, UpdateSnapshot, snapshot.Type)
	assert.Equal(t, uint64(2), snapshot.Version, "snapshot carries the version it was taken at")

	b.BidUpdated(ctx, &models.Bid{ID: "bid1"})
	b.SlotChanged(ctx, &models.Slot{ID: "slot1"})

	delta := drainUpdate(t, sub)
	assert.Equal(t, UpdateBidUpdated, delta.Type)
	assert.Equal(t, snapshot.Version+1, delta.Version, "first delta follows the snapshot with no gap")

	delta = drainUpdate(t, sub)
	assert.Equal(t, UpdateSlotChanged, delta.Type)
	assert.Equal(t, snapshot.Version+2, delta.Version)
}

func TestBroadcaster_MultipleSubscribers(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster(nil)

	s1, err := b.Subscribe(ctx)
	require.NoError(t, err)
	s2, err := b.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, b.SubscriberCount())

	b.BidCreated(ctx, &models.Bid{ID: "bid1"})

	u1 := drainUpdate(t, s1)
	u2 := drainUpdate(t, s2)
	assert.Equal(t, u1.Version, u2.Version)
	assert.Equal(t, "bid1", u1.Bid.ID)

	b.Unsubscribe(s1)
	assert.Equal(t, 1, b.SubscriberCount())

	_, ok := <-s1.Updates()
	assert.False(t, ok, "unsubscribed channel is closed")
}

func TestBroadcaster_SlowSubscriberDropped(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster(nil)

	sub, err := b.Subscribe(ctx)
	require.NoError(t, err)

	// Fill the buffer without draining, then overflow it.
	for i := 0; i < 65; i++ {
		b.BidCreated(ctx, &models.Bid{ID: "bid"})
	}

	assert.Equal(t, 0, b.SubscriberCount(), "overflowing subscriber is dropped")

	// The channel still delivers what was buffered, then closes.
	delivered := 0
	for range sub.Updates() {
		delivered++
	}
	assert.Equal(t, 64, delivered)
}

func TestBroadcaster_SnapshotAssembly(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	e.bcast.SetSnapshotFunc(e.events.Snapshot)

	t.Run("no active event yields empty state", func(t *testing.T) {
		sub, err := e.bcast.Subscribe(ctx)
		require.NoError(t, err)
		defer e.bcast.Unsubscribe(sub)

		snapshot := drainUpdate(t, sub)
		require.NotNil(t, snapshot.State)
		assert.Nil(t, snapshot.State.Event)
		assert.Empty(t, snapshot.State.Leaderboard)
	})

	t.Run("live event state", func(t *testing.T) {
		event := e.seedEvent(t)
		wallet := e.seedWallet(t, "user1", 200)
		bid := e.submitBid(t, event.ID, wallet.ID, 60)
		_, err := e.bids.SetStatus(ctx, bid.ID, models.BidStatusApproved)
		require.NoError(t, err)
		_, err = e.bids.SetStatus(ctx, bid.ID, models.BidStatusPlayed)
		require.NoError(t, err)

		sub, err := e.bcast.Subscribe(ctx)
		require.NoError(t, err)
		defer e.bcast.Unsubscribe(sub)

		snapshot := drainUpdate(t, sub)
		state := snapshot.State
		require.NotNil(t, state)
		require.NotNil(t, state.Event)
		assert.Equal(t, event.ID, state.Event.ID)
		require.NotNil(t, state.CurrentSlot)
		require.NotNil(t, state.CurrentWinner)
		assert.Equal(t, bid.ID, state.CurrentWinner.ID)
	})
}
