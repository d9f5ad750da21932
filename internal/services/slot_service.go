package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orientanurag/upnext-mvp/internal/config"
	"github.com/orientanurag/upnext-mvp/internal/models"
	"github.com/orientanurag/upnext-mvp/internal/store"
)

// SlotService owns the time-to-slot mapping: eager slot generation, the
// wall-clock current-slot lookup, capacity-aware assignment candidates and
// the slot-boundary rotation timer.
type SlotService struct {
	store store.Store
	cfg   *config.AuctionConfig
	now   func() time.Time

	mu       sync.Mutex
	rotation *time.Timer
	onRotate func(eventID string)
}

func NewSlotService(st store.Store, cfg *config.AuctionConfig) *SlotService {
	return &SlotService{
		store: st,
		cfg:   cfg,
		now:   time.Now,
	}
}

// SetRotateFunc registers the callback fired at each slot boundary.
func (s *SlotService) SetRotateFunc(fn func(eventID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRotate = fn
}

// GenerateSlots eagerly creates the event's full schedule: durationHours x
// slotsPerHour contiguous slots, the first one immediately open for bidding.
// Calling it again for the same event fails with ErrSlotsExist.
func (s *SlotService) GenerateSlots(ctx context.Context, eventID string) ([]*models.Slot, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: event has no start time", ErrValidation)
	}
	if event.SlotsPerHour <= 0 || event.DurationHours <= 0 {
		return nil, fmt.Errorf("%w: event needs positive duration and slots per hour", ErrValidation)
	}

	total := event.TotalSlots()
	interval := event.SlotDuration()
	created := s.now()

	slots := make([]*models.Slot, 0, total)
	scheduled := event.StartTime
	for i := 0; i < total; i++ {
		status := models.SlotStatusAvailable
		if i == 0 {
			status = models.SlotStatusBidding
		}
		slots = append(slots, &models.Slot{
			ID:            uuid.NewString(),
			EventID:       eventID,
			SlotNumber:    i + 1,
			ScheduledTime: scheduled,
			Status:        status,
			CreatedAt:     created,
		})
		scheduled = scheduled.Add(interval)
	}

	if err := s.store.CreateSlots(ctx, eventID, slots); err != nil {
		return nil, err
	}

	log.Printf("[SLOT] Generated %d slots for event %s", total, eventID)
	return slots, nil
}

// CurrentSlot scans the ordered schedule for the slot whose window contains
// now. Returns (nil, nil) when now falls in a gap, e.g. after the last slot.
// The scan uses wall-clock time, never a stored pointer, so it survives
// restarts.
func (s *SlotService) CurrentSlot(ctx context.Context, eventID string) (*models.Slot, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	slots, err := s.store.ListSlots(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	duration := event.SlotDuration()
	for i := len(slots) - 1; i >= 0; i-- {
		if !slots[i].ScheduledTime.After(now) {
			if slots[i].Contains(now, duration) {
				return slots[i], nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

// AssignmentCandidates returns the slots a new bid may land in, in preference
// order: the current slot first, then up to the configured look-ahead of
// future slots. The caller re-checks capacity atomically when placing the
// bid; if every candidate is full it overbooks the first one.
func (s *SlotService) AssignmentCandidates(ctx context.Context, eventID string) ([]*models.Slot, error) {
	current, err := s.CurrentSlot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: no open slot for event", ErrValidation)
	}

	slots, err := s.store.ListSlots(ctx, eventID)
	if err != nil {
		return nil, err
	}

	candidates := []*models.Slot{current}
	for _, slot := range slots {
		if slot.SlotNumber <= current.SlotNumber {
			continue
		}
		if slot.Status == models.SlotStatusCompleted || slot.Status == models.SlotStatusLocked {
			continue
		}
		candidates = append(candidates, slot)
		if len(candidates) > s.cfg.SlotLookahead {
			break
		}
	}
	return candidates, nil
}

// UpcomingSlots returns the next open slots with each one's top approved bid.
type UpcomingSlot struct {
	Slot   *models.Slot `json:"slot"`
	TopBid *models.Bid  `json:"topBid,omitempty"`
}

func (s *SlotService) UpcomingSlots(ctx context.Context, eventID string, limit int) ([]*UpcomingSlot, error) {
	if limit <= 0 {
		limit = 10
	}
	slots, err := s.store.ListSlots(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var out []*UpcomingSlot
	for _, slot := range slots {
		if slot.Status != models.SlotStatusAvailable && slot.Status != models.SlotStatusBidding {
			continue
		}
		top, err := s.store.ListBids(ctx, store.BidFilter{
			SlotID:   slot.ID,
			Statuses: []string{models.BidStatusApproved},
			Limit:    1,
		})
		if err != nil {
			return nil, err
		}
		upcoming := &UpcomingSlot{Slot: slot}
		if len(top) > 0 {
			upcoming.TopBid = top[0]
		}
		out = append(out, upcoming)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Statistics summarizes an event's schedule and takings.
type SlotStatistics struct {
	TotalSlots     int   `json:"totalSlots"`
	CompletedSlots int   `json:"completedSlots"`
	UpcomingSlots  int   `json:"upcomingSlots"`
	TotalBids      int   `json:"totalBids"`
	TotalRevenue   int64 `json:"totalRevenue"`
}

func (s *SlotService) Statistics(ctx context.Context, eventID string) (*SlotStatistics, error) {
	slots, err := s.store.ListSlots(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := &SlotStatistics{TotalSlots: len(slots)}
	for _, slot := range slots {
		switch slot.Status {
		case models.SlotStatusCompleted:
			stats.CompletedSlots++
		case models.SlotStatusAvailable:
			stats.UpcomingSlots++
		}
	}

	bids, err := s.store.ListBids(ctx, store.BidFilter{
		EventID:  eventID,
		Statuses: []string{models.BidStatusApproved, models.BidStatusPlayed},
	})
	if err != nil {
		return nil, err
	}
	stats.TotalBids = len(bids)
	for _, bid := range bids {
		stats.TotalRevenue += bid.Amount
	}
	return stats, nil
}

// ScheduleRotation arms the rotation timer for the next slot boundary of the
// event. Rearming always stops the previous timer first, so a manual rotation
// never leaves a stale timer to double-fire.
func (s *SlotService) ScheduleRotation(ctx context.Context, eventID string) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	slots, err := s.store.ListSlots(ctx, eventID)
	if err != nil {
		return err
	}

	now := s.now()
	duration := event.SlotDuration()
	var next time.Time
	for _, slot := range slots {
		if end := slot.EndTime(duration); end.After(now) {
			next = end
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotation != nil {
		s.rotation.Stop()
		s.rotation = nil
	}
	if next.IsZero() {
		log.Printf("[SLOT] No future boundary for event %s, rotation timer idle", eventID)
		return nil
	}

	fn := s.onRotate
	s.rotation = time.AfterFunc(next.Sub(now), func() {
		if fn != nil {
			fn(eventID)
		}
	})
	log.Printf("[SLOT] Rotation timer armed for event %s at %s", eventID, next.Format(time.RFC3339))
	return nil
}

// StopRotation cancels any pending rotation timer.
func (s *SlotService) StopRotation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotation != nil {
		s.rotation.Stop()
		s.rotation = nil
	}
}
