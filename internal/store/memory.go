package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orientanurag/upnext-mvp/internal/models"
)

// MemoryStore keeps all records in process memory behind a single mutex, so
// every compound operation is trivially serializable. It is the default store
// for single-node deployments and tests.
type MemoryStore struct {
	mu sync.RWMutex

	events  map[string]*models.Event
	slots   map[string]*models.Slot
	bids    map[string]*models.Bid
	wallets map[string]*models.Wallet
	txns    map[string][]*models.WalletTransaction // walletID -> entries
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:  make(map[string]*models.Event),
		slots:   make(map[string]*models.Slot),
		bids:    make(map[string]*models.Bid),
		wallets: make(map[string]*models.Wallet),
		txns:    make(map[string][]*models.WalletTransaction),
	}
}

func (s *MemoryStore) CreateEvent(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *event
	s.events[event.ID] = &cp
	return nil
}

func (s *MemoryStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *event
	return &cp, nil
}

func (s *MemoryStore) ActiveEvent(ctx context.Context) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, event := range s.events {
		if event.Active {
			cp := *event
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SetEventActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return ErrNotFound
	}
	event.Active = active
	return nil
}

func (s *MemoryStore) CreateSlots(ctx context.Context, eventID string, slots []*models.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.EventID == eventID {
			return ErrSlotsExist
		}
	}
	for _, slot := range slots {
		cp := *slot
		s.slots[slot.ID] = &cp
	}
	return nil
}

func (s *MemoryStore) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *slot
	return &cp, nil
}

func (s *MemoryStore) ListSlots(ctx context.Context, eventID string) ([]*models.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Slot
	for _, slot := range s.slots {
		if slot.EventID == eventID {
			cp := *slot
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotNumber < out[j].SlotNumber })
	return out, nil
}

func (s *MemoryStore) UpdateSlotStatus(ctx context.Context, slotID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[slotID]
	if !ok {
		return ErrNotFound
	}
	slot.Status = status
	return nil
}

func (s *MemoryStore) CountUnresolvedBids(ctx context.Context, slotID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countUnresolvedLocked(slotID), nil
}

func (s *MemoryStore) countUnresolvedLocked(slotID string) int {
	count := 0
	for _, bid := range s.bids {
		if bid.SlotID == slotID && !bid.Resolved() {
			count++
		}
	}
	return count
}

func (s *MemoryStore) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.UserID == wallet.UserID {
			return ErrDuplicateWallet
		}
	}
	cp := *wallet
	s.wallets[wallet.ID] = &cp
	return nil
}

func (s *MemoryStore) GetWallet(ctx context.Context, id string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wallet, ok := s.wallets[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *wallet
	return &cp, nil
}

func (s *MemoryStore) GetWalletByUser(ctx context.Context, userID string) (*models.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, wallet := range s.wallets {
		if wallet.UserID == userID {
			cp := *wallet
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreditWallet(ctx context.Context, walletID string, amount int64, description string) (*models.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wallet, ok := s.wallets[walletID]
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	wallet.Balance += amount
	wallet.UpdatedAt = now
	s.appendTxnLocked(walletID, amount, models.TxTypeCredit, description, "", now)
	cp := *wallet
	return &cp, nil
}

func (s *MemoryStore) ListWalletTransactions(ctx context.Context, walletID string, limit int) ([]*models.WalletTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.txns[walletID]
	out := make([]*models.WalletTransaction, 0, len(entries))
	// newest first
	for i := len(entries) - 1; i >= 0; i-- {
		cp := *entries[i]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) PlaceBid(ctx context.Context, bid *models.Bid, maxPerSlot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, ok := s.wallets[bid.WalletID]
	if !ok {
		return ErrNotFound
	}
	if wallet.Balance < bid.Amount {
		return ErrInsufficientFunds
	}
	if maxPerSlot > 0 && s.countUnresolvedLocked(bid.SlotID) >= maxPerSlot {
		return ErrSlotFull
	}

	now := time.Now()
	wallet.Balance -= bid.Amount
	wallet.UpdatedAt = now
	s.appendTxnLocked(bid.WalletID, -bid.Amount, models.TxTypeDebit,
		"Bid: "+bid.SongTitle, bid.ID, now)

	cp := *bid
	s.bids[bid.ID] = &cp
	return nil
}

func (s *MemoryStore) GetBid(ctx context.Context, id string) (*models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bid, ok := s.bids[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *bid
	return &cp, nil
}

func (s *MemoryStore) ListBids(ctx context.Context, filter BidFilter) ([]*models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Bid
	for _, bid := range s.bids {
		if filter.EventID != "" && bid.EventID != filter.EventID {
			continue
		}
		if filter.SlotID != "" && bid.SlotID != filter.SlotID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, bid.Status) {
			continue
		}
		cp := *bid
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		if filter.TieBreakDesc {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) TransitionBid(ctx context.Context, bidID string, from []string, to string, at time.Time, refund bool, refundDescription string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bid, ok := s.bids[bidID]
	if !ok {
		return nil, ErrNotFound
	}
	if !containsStatus(from, bid.Status) {
		return nil, ErrInvalidTransition
	}

	bid.Status = to
	if to == models.BidStatusApproved {
		t := at
		bid.ApprovedAt = &t
	}

	if refund && bid.PaymentStatus == models.PaymentStatusPaid {
		wallet, ok := s.wallets[bid.WalletID]
		if !ok {
			return nil, ErrNotFound
		}
		wallet.Balance += bid.Amount
		wallet.UpdatedAt = at
		s.appendTxnLocked(bid.WalletID, bid.Amount, models.TxTypeRefund, refundDescription, bid.ID, at)
		bid.PaymentStatus = models.PaymentStatusRefunded
	}

	cp := *bid
	return &cp, nil
}

func (s *MemoryStore) PlayBid(ctx context.Context, bidID string, at time.Time) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bid, ok := s.bids[bidID]
	if !ok {
		return nil, ErrNotFound
	}
	if bid.Status != models.BidStatusApproved {
		return nil, ErrInvalidTransition
	}

	bid.Status = models.BidStatusPlayed
	t := at
	bid.PlayedAt = &t

	if slot, ok := s.slots[bid.SlotID]; ok {
		slot.Status = models.SlotStatusLocked
		slot.CurrentWinnerBidID = bid.ID
	}
	if event, ok := s.events[bid.EventID]; ok {
		event.CurrentWinnerBidID = bid.ID
	}

	cp := *bid
	return &cp, nil
}

func (s *MemoryStore) appendTxnLocked(walletID string, amount int64, txType, description, refBidID string, at time.Time) {
	s.txns[walletID] = append(s.txns[walletID], &models.WalletTransaction{
		ID:             uuid.NewString(),
		WalletID:       walletID,
		Amount:         amount,
		Type:           txType,
		Description:    description,
		ReferenceBidID: refBidID,
		CreatedAt:      at,
	})
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
