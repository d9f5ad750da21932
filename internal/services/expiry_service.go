package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/orientanurag/upnext-mvp/internal/models"
	"github.com/orientanurag/upnext-mvp/internal/store"
)

// ExpiryService reconciles slots whose window has elapsed while still holding
// unresolved bids. Every resolution funnels through BidService's reject path,
// so the refund invariants cannot be bypassed. The sweep is idempotent: a
// resolved bid no longer matches the unresolved+paid predicate.
type ExpiryService struct {
	store store.Store
	bids  *BidService
	slots *SlotService
	bcast *Broadcaster
	now   func() time.Time
}

func NewExpiryService(st store.Store, bids *BidService, slots *SlotService, bcast *Broadcaster) *ExpiryService {
	return &ExpiryService{
		store: st,
		bids:  bids,
		slots: slots,
		bcast: bcast,
		now:   time.Now,
	}
}

// Sweep resolves every elapsed slot of the event: unresolved paid bids are
// rejected (triggering their refunds) and the slot is marked completed.
// Current and future slots are never touched. Returns the number of bids
// refunded.
func (s *ExpiryService) Sweep(ctx context.Context, eventID string) (int, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	slots, err := s.store.ListSlots(ctx, eventID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	duration := event.SlotDuration()
	refunded := 0

	for _, slot := range slots {
		if !slot.EndTime(duration).Before(now) {
			continue
		}

		n, err := s.expireSlot(ctx, slot)
		if err != nil {
			return refunded, err
		}
		refunded += n

		if slot.Status != models.SlotStatusCompleted {
			if err := s.store.UpdateSlotStatus(ctx, slot.ID, models.SlotStatusCompleted); err != nil {
				return refunded, err
			}
			slot.Status = models.SlotStatusCompleted
			s.bcast.SlotChanged(ctx, slot)
		}
	}

	if refunded > 0 {
		log.Printf("[EXPIRY] Sweep refunded %d expired bids for event %s", refunded, eventID)
	}
	return refunded, nil
}

// expireSlot rejects the slot's unresolved paid bids one by one through the
// same CAS transition the operator path uses, so a concurrent manual reject
// cannot cause a double refund.
func (s *ExpiryService) expireSlot(ctx context.Context, slot *models.Slot) (int, error) {
	bids, err := s.store.ListBids(ctx, store.BidFilter{
		SlotID:   slot.ID,
		Statuses: models.UnresolvedBidStatuses,
	})
	if err != nil {
		return 0, err
	}

	refunded := 0
	for _, bid := range bids {
		if bid.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		desc := fmt.Sprintf("Refund: slot ended without play for %q", bid.SongTitle)
		resolved, err := s.bids.reject(ctx, bid.ID, desc)
		if err == store.ErrInvalidTransition {
			// Lost the race to an operator action; nothing left to do.
			continue
		}
		if err != nil {
			return refunded, err
		}
		refunded++
		s.bcast.BidUpdated(ctx, resolved)
	}
	return refunded, nil
}

// ForceNextSlot is the operator's manual rotation: it behaves exactly like
// the current slot expiring this instant. The current bidding slot is
// completed and refunded, the next available slot opens, and the rotation
// timer is rearmed so it cannot double-fire.
func (s *ExpiryService) ForceNextSlot(ctx context.Context, eventID string) (*models.Slot, error) {
	slots, err := s.store.ListSlots(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var current *models.Slot
	for _, slot := range slots {
		if slot.Status == models.SlotStatusBidding || slot.Status == models.SlotStatusLocked {
			current = slot
			break
		}
	}

	if current != nil {
		if _, err := s.expireSlot(ctx, current); err != nil {
			return nil, err
		}
		if err := s.store.UpdateSlotStatus(ctx, current.ID, models.SlotStatusCompleted); err != nil {
			return nil, err
		}
		current.Status = models.SlotStatusCompleted
		s.bcast.SlotChanged(ctx, current)
	}

	var next *models.Slot
	for _, slot := range slots {
		if current != nil && slot.SlotNumber <= current.SlotNumber {
			continue
		}
		if slot.Status == models.SlotStatusAvailable {
			next = slot
			break
		}
	}
	if next == nil {
		log.Printf("[EXPIRY] Forced rotation for event %s: no slots remaining", eventID)
		return nil, nil
	}

	if err := s.store.UpdateSlotStatus(ctx, next.ID, models.SlotStatusBidding); err != nil {
		return nil, err
	}
	next.Status = models.SlotStatusBidding
	s.bcast.SlotChanged(ctx, next)

	if err := s.slots.ScheduleRotation(ctx, eventID); err != nil {
		log.Printf("[EXPIRY] Failed to rearm rotation timer: %v", err)
	}

	log.Printf("[EXPIRY] Forced rotation for event %s: slot %d now bidding", eventID, next.SlotNumber)
	return next, nil
}

// Rotate is the timer callback: sweep the elapsed window, open the next slot,
// rearm the timer.
func (s *ExpiryService) Rotate(eventID string) {
	ctx := context.Background()
	if _, err := s.Sweep(ctx, eventID); err != nil {
		log.Printf("[EXPIRY] Rotation sweep failed for event %s: %v", eventID, err)
	}
	if _, err := s.ForceNextSlot(ctx, eventID); err != nil {
		log.Printf("[EXPIRY] Rotation failed for event %s: %v", eventID, err)
	}
}

// Run sweeps the active event on the configured interval until the context
// is cancelled. The opportunistic sweep backstops the rotation timer.
func (s *ExpiryService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			event, err := s.store.ActiveEvent(ctx)
			if err == store.ErrNotFound {
				continue
			}
			if err != nil {
				log.Printf("[EXPIRY] Active event lookup failed: %v", err)
				continue
			}
			if _, err := s.Sweep(ctx, event.ID); err != nil {
				log.Printf("[EXPIRY] Sweep failed for event %s: %v", event.ID, err)
			}
		}
	}
}
