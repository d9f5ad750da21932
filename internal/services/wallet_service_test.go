package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orientanurag/upnext-mvp/internal/models"
	"github.com/orientanurag/upnext-mvp/internal/store"
)

func TestWalletService_AddFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("creates wallet on first top-up", func(t *testing.T) {
		e := newTestEngine(t)

		wallet, err := e.wallets.AddFunds(ctx, "user1", 500)
		require.NoError(t, err)
		assert.Equal(t, "user1", wallet.UserID)
		assert.Equal(t, int64(500), wallet.Balance)
	})

	t.Run("subsequent top-ups accumulate", func(t *testing.T) {
		e := newTestEngine(t)

		first, err := e.wallets.AddFunds(ctx, "user1", 500)
		require.NoError(t, err)
		second, err := e.wallets.AddFunds(ctx, "user1", 250)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID, "same wallet reused")
		assert.Equal(t, int64(750), second.Balance)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		e := newTestEngine(t)

		_, err := e.wallets.AddFunds(ctx, "", 100)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = e.wallets.AddFunds(ctx, "user1", 0)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = e.wallets.AddFunds(ctx, "user1", -50)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestWalletService_Transactions(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	event := e.seedEvent(t)

	wallet := e.seedWallet(t, "user1", 300)
	bid := e.submitBid(t, event.ID, wallet.ID, 100)
	_, err := e.bids.SetStatus(ctx, bid.ID, models.BidStatusRejected)
	require.NoError(t, err)

	txns, err := e.wallets.Transactions(ctx, "user1", 0)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	// Newest first: refund, debit, credit.
	assert.Equal(t, models.TxTypeRefund, txns[0].Type)
	assert.Equal(t, int64(100), txns[0].Amount)
	assert.Equal(t, bid.ID, txns[0].ReferenceBidID)
	assert.Equal(t, models.TxTypeDebit, txns[1].Type)
	assert.Equal(t, int64(-100), txns[1].Amount)
	assert.Equal(t, models.TxTypeCredit, txns[2].Type)
	assert.Equal(t, int64(300), txns[2].Amount)

	var sum int64
	for _, txn := range txns {
		sum += txn.Amount
	}
	balance, err := e.wallets.Balance(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, balance, sum, "ledger reconciles with the balance")

	t.Run("unknown user", func(t *testing.T) {
		_, err := e.wallets.Transactions(ctx, "ghost", 0)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
