package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orientanurag/upnext-mvp/internal/models"
)

func TestExpiryService_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("elapsed slot refunds its unresolved bids", func(t *testing.T) {
		e := newTestEngine(t)
		event := e.seedEvent(t)
		wallet := e.seedWallet(t, "user1", 200)

		bid := e.submitBid(t, event.ID, wallet.ID, 60)
		slotID := bid.SlotID

		e.advance(15 * time.Minute) // first 10-minute slot has elapsed

		refunded, err := e.expiry.Sweep(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, refunded)

		got, err := e.bids.Get(ctx, bid.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BidStatusRejected, got.Status)
		assert.Equal(t, models.PaymentStatusRefunded, got.PaymentStatus)

		balance, err := e.wallets.Balance(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(200), balance)

		slot, err := e.store.GetSlot(ctx, slotID)
		require.NoError(t, err)
		assert.Equal(t, models.SlotStatusCompleted, slot.Status)
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		e := newTestEngine(t)
		event := e.seedEvent(t)
		wallet := e.seedWallet(t, "user1", 200)
		e.submitBid(t, event.ID, wallet.ID, 60)

		e.advance(15 * time.Minute)

		refunded, err := e.expiry.Sweep(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, refunded)

		refunded, err = e.expiry.Sweep(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, refunded, "second sweep finds nothing unresolved")

		balance, err := e.wallets.Balance(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(200), balance)
	})

	t.Run("current slot untouched", func(t *testing.T) {
		e := newTestEngine(t)
		event := e.seedEvent(t)
		wallet := e.seedWallet(t, "user1", 200)
		bid := e.submitBid(t, event.ID, wallet.ID, 60)

		refunded, err := e.expiry.Sweep(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, refunded)

		got, err := e.bids.Get(ctx, bid.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BidStatusPending, got.Status)
	})

	t.Run("played bid not refunded", func(t *testing.T) {
		e := newTestEngine(t)
		event := e.seedEvent(t)
		wallet := e.seedWallet(t, "user1", 200)
		bid := e.submitBid(t, event.ID, wallet.ID, 60)

		_, err := e.bids.SetStatus(ctx, bid.ID, models.BidStatusApproved)
		require.NoError(t, err)
		_, err = e.bids.SetStatus(ctx, bid.ID, models.BidStatusPlayed)
		require.NoError(t, err)

		e.advance(15 * time.Minute)
		refunded, err := e.expiry.Sweep(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, refunded)

		balance, err := e.wallets.Balance(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(140), balance, "winner's payment stays spent")
	})

	t.Run("approved but unplayed bid refunded", func(t *testing.T) {
		e := newTestEngine(t)
		event := e.seedEvent(t)
		wallet := e.seedWallet(t, "user1", 200)
		bid := e.submitBid(t, event.ID, wallet.ID, 60)

		_, err := e.bids.SetStatus(ctx, bid.ID, models.BidStatusApproved)
		require.NoError(t, err)

		e.advance(15 * time.Minute)
		refunded, err := e.expiry.Sweep(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, refunded)

		balance, err := e.wallets.Balance(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(200), balance)
	})
}

func TestExpiryService_ForceNextSlot(t *testing.T) {
	ctx := context.Background()

	t.Run("completes current slot and opens the next", func(t *testing.T) {
		e := newTestEngine(t)
		event := e.seedEvent(t)
		wallet := e.seedWallet(t, "user1", 200)
		bid := e.submitBid(t, event.ID, wallet.ID, 60)

		next, err := e.expiry.ForceNextSlot(ctx, event.ID)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, 2, next.SlotNumber)
		assert.Equal(t, models.SlotStatusBidding, next.Status)

		old, err := e.store.GetSlot(ctx, bid.SlotID)
		require.NoError(t, err)
		assert.Equal(t, models.SlotStatusCompleted, old.Status)

		// The skipped slot behaves exactly like an expired one.
		balance, err := e.wallets.Balance(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, int64(200), balance)
	})

	t.Run("nothing left to open", func(t *testing.T) {
		e := newTestEngine(t)
		event := e.seedEvent(t)

		slots, err := e.store.ListSlots(ctx, event.ID)
		require.NoError(t, err)
		for _, slot := range slots[1:] {
			require.NoError(t, e.store.UpdateSlotStatus(ctx, slot.ID, models.SlotStatusCompleted))
		}

		next, err := e.expiry.ForceNextSlot(ctx, event.ID)
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("no current slot still opens the next available", func(t *testing.T) {
		e := newTestEngine(t)
		event := e.seedEvent(t)

		slots, err := e.store.ListSlots(ctx, event.ID)
		require.NoError(t, err)
		require.NoError(t, e.store.UpdateSlotStatus(ctx, slots[0].ID, models.SlotStatusCompleted))

		next, err := e.expiry.ForceNextSlot(ctx, event.ID)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, 2, next.SlotNumber)
	})
}
