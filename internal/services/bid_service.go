package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/orientanurag/upnext-mvp/internal/config"
	"github.com/orientanurag/upnext-mvp/internal/models"
	"github.com/orientanurag/upnext-mvp/internal/store"
)

// CreateBidInput is the validated submission payload.
type CreateBidInput struct {
	EventID    string `json:"eventId" validate:"required"`
	WalletID   string `json:"walletId" validate:"required"`
	SongTitle  string `json:"songTitle" validate:"required,max=200"`
	SongArtist string `json:"songArtist" validate:"max=200"`
	SongAlbum  string `json:"songAlbum" validate:"max=200"`
	TrackID    string `json:"trackId" validate:"max=64"`
	Message    string `json:"message" validate:"max=500"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	UserName   string `json:"userName" validate:"max=100"`
}

// BidService owns the bid state machine and the leaderboard. Money movement
// and capacity checks ride inside the store's compound operations, so a
// failed submission leaves no partial residue.
type BidService struct {
	store       store.Store
	slots       *SlotService
	broadcaster *Broadcaster
	cfg         *config.AuctionConfig
	validator   *ValidationHelper
	now         func() time.Time
}

func NewBidService(st store.Store, slots *SlotService, broadcaster *Broadcaster, cfg *config.AuctionConfig) *BidService {
	return &BidService{
		store:       st,
		slots:       slots,
		broadcaster: broadcaster,
		cfg:         cfg,
		validator:   NewValidationHelper(),
		now:         time.Now,
	}
}

// Submit validates the input, debits the wallet and admits the bid into a
// slot, all before the bid becomes visible. Capacity is re-checked atomically
// per candidate slot; when the whole look-ahead window is full the current
// slot is overbooked rather than the bid rejected.
func (s *BidService) Submit(ctx context.Context, input *CreateBidInput) (*models.Bid, error) {
	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if input.Amount < s.cfg.MinBidAmount {
		return nil, fmt.Errorf("%w: minimum bid is %s%d", ErrValidation, s.cfg.CurrencySymbol, s.cfg.MinBidAmount)
	}
	if _, err := s.store.GetWallet(ctx, input.WalletID); err != nil {
		return nil, err
	}

	candidates, err := s.slots.AssignmentCandidates(ctx, input.EventID)
	if err != nil {
		return nil, err
	}

	userName := input.UserName
	if userName == "" {
		userName = "Anonymous"
	}
	bid := &models.Bid{
		ID:            uuid.NewString(),
		EventID:       input.EventID,
		WalletID:      input.WalletID,
		SongTitle:     input.SongTitle,
		SongArtist:    input.SongArtist,
		SongAlbum:     input.SongAlbum,
		TrackID:       input.TrackID,
		Message:       input.Message,
		Amount:        input.Amount,
		UserName:      userName,
		Status:        models.BidStatusPending,
		PaymentStatus: models.PaymentStatusPaid,
		SubmittedAt:   s.now(),
	}

	for _, candidate := range candidates {
		bid.SlotID = candidate.ID
		err := s.store.PlaceBid(ctx, bid, s.cfg.MaxBidsPerSlot)
		if errors.Is(err, store.ErrSlotFull) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if candidate != candidates[0] {
			log.Printf("[BID] Slot %d full, bid %s assigned to slot %d",
				candidates[0].SlotNumber, bid.ID, candidate.SlotNumber)
		}
		s.broadcaster.BidCreated(ctx, bid)
		return bid, nil
	}

	// Every candidate filled up; overbook the current slot so saturation
	// degrades capacity instead of dropping revenue.
	log.Printf("[BID] All near-future slots full, overbooking slot %d", candidates[0].SlotNumber)
	bid.SlotID = candidates[0].ID
	if err := s.store.PlaceBid(ctx, bid, 0); err != nil {
		return nil, err
	}
	s.broadcaster.BidCreated(ctx, bid)
	return bid, nil
}

// SetStatus applies an operator transition: approve, reject or play.
// Rejecting a paid bid refunds it in the same atomic unit as the status
// change. Playing makes the bid the event-wide current winner.
func (s *BidService) SetStatus(ctx context.Context, bidID, target string) (*models.Bid, error) {
	var (
		bid *models.Bid
		err error
	)

	switch target {
	case models.BidStatusApproved:
		bid, err = s.store.TransitionBid(ctx, bidID,
			[]string{models.BidStatusPending}, models.BidStatusApproved, s.now(), false, "")
	case models.BidStatusRejected:
		bid, err = s.reject(ctx, bidID, "Refund: bid rejected")
	case models.BidStatusPlayed:
		bid, err = s.store.PlayBid(ctx, bidID, s.now())
	default:
		return nil, fmt.Errorf("%w: unknown target status %q", ErrValidation, target)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[BID] Bid %s -> %s", bid.ID, bid.Status)
	s.broadcaster.BidUpdated(ctx, bid)
	return bid, nil
}

// reject is shared by operator rejection and the expiry sweep.
func (s *BidService) reject(ctx context.Context, bidID, refundDescription string) (*models.Bid, error) {
	return s.store.TransitionBid(ctx, bidID,
		[]string{models.BidStatusPending, models.BidStatusApproved},
		models.BidStatusRejected, s.now(), true, refundDescription)
}

// Leaderboard is the fairness contract: approved bids for the event, amount
// descending, ties broken by earliest submission.
func (s *BidService) Leaderboard(ctx context.Context, eventID string, limit int) ([]*models.Bid, error) {
	if limit <= 0 {
		limit = s.cfg.LeaderboardSize
	}
	return s.store.ListBids(ctx, store.BidFilter{
		EventID:  eventID,
		Statuses: []string{models.BidStatusApproved},
		Limit:    limit,
	})
}

// TopBids lists a slot's unresolved bids in leaderboard order.
func (s *BidService) TopBids(ctx context.Context, slotID string, limit int) ([]*models.Bid, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListBids(ctx, store.BidFilter{
		SlotID:   slotID,
		Statuses: models.UnresolvedBidStatuses,
		Limit:    limit,
	})
}

// List returns bids for the event, optionally filtered by status, ordered by
// amount descending with newest submissions first on ties.
func (s *BidService) List(ctx context.Context, eventID, status string, limit int) ([]*models.Bid, error) {
	filter := store.BidFilter{
		EventID:      eventID,
		Limit:        limit,
		TieBreakDesc: true,
	}
	if status != "" {
		filter.Statuses = []string{status}
	}
	return s.store.ListBids(ctx, filter)
}

// Get looks up a single bid.
func (s *BidService) Get(ctx context.Context, bidID string) (*models.Bid, error) {
	return s.store.GetBid(ctx, bidID)
}

// CurrentWinner returns the event's now-playing bid, if any.
func (s *BidService) CurrentWinner(ctx context.Context, eventID string) (*models.Bid, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CurrentWinnerBidID == "" {
		return nil, nil
	}
	return s.store.GetBid(ctx, event.CurrentWinnerBidID)
}
