package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orientanurag/upnext-mvp/internal/models"
)

func newTestWallet(t *testing.T, s *MemoryStore, userID string, balance int64) *models.Wallet {
	t.Helper()
	wallet := &models.Wallet{
		ID:        "wallet-" + userID,
		UserID:    userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, s.CreateWallet(context.Background(), wallet))
	if balance > 0 {
		_, err := s.CreditWallet(context.Background(), wallet.ID, balance, "Top-up")
		require.NoError(t, err)
	}
	return wallet
}

func newTestBid(walletID, slotID string, amount int64) *models.Bid {
	return &models.Bid{
		ID:            "bid-" + walletID + "-" + slotID,
		EventID:       "event1",
		SlotID:        slotID,
		WalletID:      walletID,
		SongTitle:     "Test Song",
		Amount:        amount,
		UserName:      "Guest",
		Status:        models.BidStatusPending,
		PaymentStatus: models.PaymentStatusPaid,
		SubmittedAt:   time.Now(),
	}
}

func TestMemoryStore_PlaceBid(t *testing.T) {
	ctx := context.Background()

	t.Run("debits wallet and records ledger entry", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 100)

		bid := newTestBid(wallet.ID, "slot1", 60)
		require.NoError(t, s.PlaceBid(ctx, bid, 5))

		got, err := s.GetWallet(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40), got.Balance)

		txns, err := s.ListWalletTransactions(ctx, wallet.ID, 0)
		require.NoError(t, err)
		require.Len(t, txns, 2) // credit then debit, newest first
		assert.Equal(t, models.TxTypeDebit, txns[0].Type)
		assert.Equal(t, int64(-60), txns[0].Amount)
		assert.Equal(t, bid.ID, txns[0].ReferenceBidID)
	})

	t.Run("insufficient funds leaves no residue", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 50)

		bid := newTestBid(wallet.ID, "slot1", 60)
		err := s.PlaceBid(ctx, bid, 5)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		got, err := s.GetWallet(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), got.Balance)

		_, err = s.GetBid(ctx, bid.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		txns, err := s.ListWalletTransactions(ctx, wallet.ID, 0)
		require.NoError(t, err)
		assert.Len(t, txns, 1) // only the top-up
	})

	t.Run("exact balance is allowed", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 60)

		require.NoError(t, s.PlaceBid(ctx, newTestBid(wallet.ID, "slot1", 60), 5))

		got, err := s.GetWallet(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.Balance)
	})

	t.Run("slot at capacity", func(t *testing.T) {
		s := NewMemoryStore()
		w1 := newTestWallet(t, s, "user1", 100)
		w2 := newTestWallet(t, s, "user2", 100)

		require.NoError(t, s.PlaceBid(ctx, newTestBid(w1.ID, "slot1", 60), 1))

		err := s.PlaceBid(ctx, newTestBid(w2.ID, "slot1", 70), 1)
		assert.ErrorIs(t, err, ErrSlotFull)

		// Capacity failure must not debit the wallet.
		got, err := s.GetWallet(ctx, w2.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Balance)
	})

	t.Run("maxPerSlot zero disables the capacity check", func(t *testing.T) {
		s := NewMemoryStore()
		w1 := newTestWallet(t, s, "user1", 100)
		w2 := newTestWallet(t, s, "user2", 100)

		require.NoError(t, s.PlaceBid(ctx, newTestBid(w1.ID, "slot1", 60), 1))
		require.NoError(t, s.PlaceBid(ctx, newTestBid(w2.ID, "slot1", 70), 0))

		count, err := s.CountUnresolvedBids(ctx, "slot1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("concurrent bids never overdraw", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 100)

		var wg sync.WaitGroup
		errs := make([]error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				bid := newTestBid(wallet.ID, "slot1", 60)
				bid.ID = bid.ID + "-" + string(rune('a'+i))
				errs[i] = s.PlaceBid(ctx, bid, 0)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
			}
		}
		assert.Equal(t, 1, succeeded)

		got, err := s.GetWallet(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(40), got.Balance)
	})
}

func TestMemoryStore_TransitionBid(t *testing.T) {
	ctx := context.Background()

	t.Run("reject refunds exactly once", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 100)
		bid := newTestBid(wallet.ID, "slot1", 60)
		require.NoError(t, s.PlaceBid(ctx, bid, 5))

		now := time.Now()
		rejected, err := s.TransitionBid(ctx, bid.ID, models.UnresolvedBidStatuses,
			models.BidStatusRejected, now, true, "Refund: bid rejected")
		require.NoError(t, err)
		assert.Equal(t, models.BidStatusRejected, rejected.Status)
		assert.Equal(t, models.PaymentStatusRefunded, rejected.PaymentStatus)

		got, err := s.GetWallet(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Balance)

		// A second rejection fails the CAS and must not refund again.
		_, err = s.TransitionBid(ctx, bid.ID, models.UnresolvedBidStatuses,
			models.BidStatusRejected, now, true, "Refund: bid rejected")
		assert.ErrorIs(t, err, ErrInvalidTransition)

		got, err = s.GetWallet(ctx, wallet.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Balance)
	})

	t.Run("approve records timestamp", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 100)
		bid := newTestBid(wallet.ID, "slot1", 60)
		require.NoError(t, s.PlaceBid(ctx, bid, 5))

		at := time.Now()
		approved, err := s.TransitionBid(ctx, bid.ID, []string{models.BidStatusPending},
			models.BidStatusApproved, at, false, "")
		require.NoError(t, err)
		assert.Equal(t, models.BidStatusApproved, approved.Status)
		require.NotNil(t, approved.ApprovedAt)
		assert.True(t, approved.ApprovedAt.Equal(at))
		assert.Equal(t, models.PaymentStatusPaid, approved.PaymentStatus)
	})

	t.Run("approve from rejected fails", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 100)
		bid := newTestBid(wallet.ID, "slot1", 60)
		require.NoError(t, s.PlaceBid(ctx, bid, 5))

		_, err := s.TransitionBid(ctx, bid.ID, models.UnresolvedBidStatuses,
			models.BidStatusRejected, time.Now(), true, "Refund")
		require.NoError(t, err)

		_, err = s.TransitionBid(ctx, bid.ID, []string{models.BidStatusPending},
			models.BidStatusApproved, time.Now(), false, "")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown bid", func(t *testing.T) {
		s := NewMemoryStore()
		_, err := s.TransitionBid(ctx, "nope", []string{models.BidStatusPending},
			models.BidStatusApproved, time.Now(), false, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore_PlayBid(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	event := &models.Event{ID: "event1", Name: "Test Night", SlotsPerHour: 6, DurationHours: 1}
	require.NoError(t, s.CreateEvent(ctx, event))
	require.NoError(t, s.CreateSlots(ctx, event.ID, []*models.Slot{
		{ID: "slot1", EventID: event.ID, SlotNumber: 1, Status: models.SlotStatusBidding},
	}))

	wallet := newTestWallet(t, s, "user1", 200)
	bid := newTestBid(wallet.ID, "slot1", 60)
	require.NoError(t, s.PlaceBid(ctx, bid, 5))

	_, err := s.PlayBid(ctx, bid.ID, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending bid cannot be played")

	_, err = s.TransitionBid(ctx, bid.ID, []string{models.BidStatusPending},
		models.BidStatusApproved, time.Now(), false, "")
	require.NoError(t, err)

	at := time.Now()
	played, err := s.PlayBid(ctx, bid.ID, at)
	require.NoError(t, err)
	assert.Equal(t, models.BidStatusPlayed, played.Status)
	require.NotNil(t, played.PlayedAt)

	slot, err := s.GetSlot(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, models.SlotStatusLocked, slot.Status)
	assert.Equal(t, bid.ID, slot.CurrentWinnerBidID)

	got, err := s.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, bid.ID, got.CurrentWinnerBidID)

	// No refund on played: winner keeps paying.
	w, err := s.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(140), w.Balance)
}

func TestMemoryStore_LedgerReconciles(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	wallet := newTestWallet(t, s, "user1", 500)

	bid1 := newTestBid(wallet.ID, "slot1", 120)
	bid2 := newTestBid(wallet.ID, "slot2", 80)
	require.NoError(t, s.PlaceBid(ctx, bid1, 5))
	require.NoError(t, s.PlaceBid(ctx, bid2, 5))

	_, err := s.TransitionBid(ctx, bid2.ID, models.UnresolvedBidStatuses,
		models.BidStatusRejected, time.Now(), true, "Refund: slot expired")
	require.NoError(t, err)

	got, err := s.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)

	txns, err := s.ListWalletTransactions(ctx, wallet.ID, 0)
	require.NoError(t, err)

	var sum int64
	for _, txn := range txns {
		sum += txn.Amount
	}
	assert.Equal(t, got.Balance, sum, "ledger entries must sum to the balance")
	assert.Equal(t, int64(380), got.Balance)
}

func TestMemoryStore_ListBids(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	wallet := newTestWallet(t, s, "user1", 1000)

	base := time.Now()
	amounts := []int64{100, 300, 100, 200}
	for i, amount := range amounts {
		bid := newTestBid(wallet.ID, "slot1", amount)
		bid.ID = "bid" + string(rune('1'+i))
		bid.SubmittedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.PlaceBid(ctx, bid, 0))
	}

	t.Run("amount desc, earlier bid wins ties", func(t *testing.T) {
		bids, err := s.ListBids(ctx, BidFilter{EventID: "event1"})
		require.NoError(t, err)
		require.Len(t, bids, 4)
		assert.Equal(t, "bid2", bids[0].ID)
		assert.Equal(t, "bid4", bids[1].ID)
		assert.Equal(t, "bid1", bids[2].ID) // earlier than bid3 at the same amount
		assert.Equal(t, "bid3", bids[3].ID)
	})

	t.Run("tie break descending", func(t *testing.T) {
		bids, err := s.ListBids(ctx, BidFilter{EventID: "event1", TieBreakDesc: true})
		require.NoError(t, err)
		require.Len(t, bids, 4)
		assert.Equal(t, "bid3", bids[2].ID)
		assert.Equal(t, "bid1", bids[3].ID)
	})

	t.Run("status filter and limit", func(t *testing.T) {
		_, err := s.TransitionBid(ctx, "bid2", []string{models.BidStatusPending},
			models.BidStatusApproved, time.Now(), false, "")
		require.NoError(t, err)

		bids, err := s.ListBids(ctx, BidFilter{
			EventID:  "event1",
			Statuses: []string{models.BidStatusApproved},
		})
		require.NoError(t, err)
		require.Len(t, bids, 1)
		assert.Equal(t, "bid2", bids[0].ID)

		bids, err = s.ListBids(ctx, BidFilter{EventID: "event1", Limit: 2})
		require.NoError(t, err)
		assert.Len(t, bids, 2)
	})
}

func TestMemoryStore_Wallets(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate user rejected", func(t *testing.T) {
		s := NewMemoryStore()
		newTestWallet(t, s, "user1", 0)

		err := s.CreateWallet(ctx, &models.Wallet{ID: "other", UserID: "user1"})
		assert.ErrorIs(t, err, ErrDuplicateWallet)
	})

	t.Run("credit appends ledger entry", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 0)

		got, err := s.CreditWallet(ctx, wallet.ID, 250, "Top-up")
		require.NoError(t, err)
		assert.Equal(t, int64(250), got.Balance)

		txns, err := s.ListWalletTransactions(ctx, wallet.ID, 0)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, models.TxTypeCredit, txns[0].Type)
		assert.Equal(t, int64(250), txns[0].Amount)
	})

	t.Run("lookup by user", func(t *testing.T) {
		s := NewMemoryStore()
		wallet := newTestWallet(t, s, "user1", 0)

		got, err := s.GetWalletByUser(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, wallet.ID, got.ID)

		_, err = s.GetWalletByUser(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore_Slots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	slots := []*models.Slot{
		{ID: "slot2", EventID: "event1", SlotNumber: 2},
		{ID: "slot1", EventID: "event1", SlotNumber: 1},
	}
	require.NoError(t, s.CreateSlots(ctx, "event1", slots))

	t.Run("second generation rejected", func(t *testing.T) {
		err := s.CreateSlots(ctx, "event1", []*models.Slot{{ID: "slot3", EventID: "event1"}})
		assert.ErrorIs(t, err, ErrSlotsExist)
	})

	t.Run("listed in slot order", func(t *testing.T) {
		got, err := s.ListSlots(ctx, "event1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "slot1", got[0].ID)
		assert.Equal(t, "slot2", got[1].ID)
	})
}
