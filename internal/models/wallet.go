package models

import (
	"time"
)

// Wallet transaction types
const (
	TxTypeCredit = "CREDIT"
	TxTypeDebit  = "DEBIT"
	TxTypeRefund = "REFUND"
)

// Wallet holds a user's closed-loop balance. The balance is only mutated
// through ledger operations that also append a WalletTransaction.
type Wallet struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Balance   int64     `json:"balance" db:"balance"` // in rupees, never negative
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// WalletTransaction is one append-only ledger entry. Amount is signed:
// negative for DEBIT, positive for CREDIT and REFUND. Summing a wallet's
// entries always reproduces its balance.
type WalletTransaction struct {
	ID             string    `json:"id" db:"id"`
	WalletID       string    `json:"walletId" db:"wallet_id"`
	Amount         int64     `json:"amount" db:"amount"`
	Type           string    `json:"type" db:"type"`
	Description    string    `json:"description" db:"description"`
	ReferenceBidID string    `json:"referenceBidId,omitempty" db:"reference_bid_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
