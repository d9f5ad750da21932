package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/orientanurag/upnext-mvp/internal/models"
	"github.com/orientanurag/upnext-mvp/internal/store"
)

// WalletService is the closed-loop wallet ledger. Credits (top-ups) go through
// here; debits and refunds happen inside the store's compound bid operations
// so they commit atomically with the bid they belong to.
type WalletService struct {
	store store.Store
	now   func() time.Time
}

func NewWalletService(st store.Store) *WalletService {
	return &WalletService{
		store: st,
		now:   time.Now,
	}
}

// AddFunds tops up a user's wallet, creating it lazily on first use.
func (s *WalletService) AddFunds(ctx context.Context, userID string, amount int64) (*models.Wallet, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrValidation)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: top-up amount must be positive", ErrValidation)
	}

	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		wallet, err = s.createWallet(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	wallet, err = s.store.CreditWallet(ctx, wallet.ID, amount, "Top-up")
	if err != nil {
		return nil, err
	}

	log.Printf("[WALLET] Credited %d to wallet %s (user %s), balance now %d",
		amount, wallet.ID, userID, wallet.Balance)
	return wallet, nil
}

func (s *WalletService) createWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	now := s.now()
	wallet := &models.Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.store.CreateWallet(ctx, wallet)
	if errors.Is(err, store.ErrDuplicateWallet) {
		// Lost a creation race; the existing wallet wins.
		return s.store.GetWalletByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// Balance returns the user's current balance. An unknown user reads as zero
// rather than an error, since wallets are created lazily.
func (s *WalletService) Balance(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// Wallet looks up a wallet by id.
func (s *WalletService) Wallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	return s.store.GetWallet(ctx, walletID)
}

// Transactions lists a wallet's ledger entries, newest first.
func (s *WalletService) Transactions(ctx context.Context, userID string, limit int) ([]*models.WalletTransaction, error) {
	wallet, err := s.store.GetWalletByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListWalletTransactions(ctx, wallet.ID, limit)
}
