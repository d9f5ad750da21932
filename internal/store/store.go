// Package store defines the state store behind the auction engine. The
// compound methods (PlaceBid, TransitionBid, PlayBid, CreditWallet) are the
// atomic units the engine relies on: each either fully applies or leaves no
// trace. Two implementations exist, an in-memory store and a Postgres store.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/orientanurag/upnext-mvp/internal/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSlotFull          = errors.New("slot at capacity")
	ErrSlotsExist        = errors.New("slots already generated for event")
	ErrDuplicateWallet   = errors.New("wallet already exists for user")
)

// BidFilter narrows ListBids. Zero values mean "any". Results are ordered by
// amount descending; ties break on submission time ascending unless
// TieBreakDesc is set.
type BidFilter struct {
	EventID      string
	SlotID       string
	Statuses     []string
	Limit        int
	TieBreakDesc bool
}

// Store is the persistence boundary for the engine. Implementations must
// serialize the compound operations per wallet and per bid.
type Store interface {
	// Events
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ActiveEvent(ctx context.Context) (*models.Event, error)
	SetEventActive(ctx context.Context, id string, active bool) error

	// Slots. CreateSlots fails with ErrSlotsExist if the event already has
	// slots; ListSlots returns them ordered by slot number.
	CreateSlots(ctx context.Context, eventID string, slots []*models.Slot) error
	GetSlot(ctx context.Context, id string) (*models.Slot, error)
	ListSlots(ctx context.Context, eventID string) ([]*models.Slot, error)
	UpdateSlotStatus(ctx context.Context, slotID, status string) error
	CountUnresolvedBids(ctx context.Context, slotID string) (int, error)

	// Wallets
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	GetWallet(ctx context.Context, id string) (*models.Wallet, error)
	GetWalletByUser(ctx context.Context, userID string) (*models.Wallet, error)
	// CreditWallet atomically increments the balance and appends a CREDIT
	// entry. Refunds go through TransitionBid, never through CreditWallet.
	CreditWallet(ctx context.Context, walletID string, amount int64, description string) (*models.Wallet, error)
	ListWalletTransactions(ctx context.Context, walletID string, limit int) ([]*models.WalletTransaction, error)

	// PlaceBid atomically debits the bid's wallet (failing with
	// ErrInsufficientFunds on a balance-floor violation, leaving no residue),
	// re-checks the target slot's unresolved-bid count against maxPerSlot
	// (failing with ErrSlotFull; maxPerSlot <= 0 disables the check for
	// overbooking), and inserts the bid.
	PlaceBid(ctx context.Context, bid *models.Bid, maxPerSlot int) error
	GetBid(ctx context.Context, id string) (*models.Bid, error)
	ListBids(ctx context.Context, filter BidFilter) ([]*models.Bid, error)

	// TransitionBid compare-and-sets the bid's status: the update applies only
	// if the current status is in from, otherwise ErrInvalidTransition. When
	// refund is true and the bid is still paid, the wallet credit, the REFUND
	// ledger entry and the status change commit as one unit.
	TransitionBid(ctx context.Context, bidID string, from []string, to string, at time.Time, refund bool, refundDescription string) (*models.Bid, error)

	// PlayBid compare-and-sets approved -> played, records playedAt, locks the
	// bid's slot with the bid as its winner, and makes the bid the event-wide
	// current winner. The previous winner's own status is left untouched.
	PlayBid(ctx context.Context, bidID string, at time.Time) (*models.Bid, error)
}
