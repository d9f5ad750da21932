package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orientanurag/upnext-mvp/internal/models"
	"github.com/orientanurag/upnext-mvp/internal/store"
)

// CreateEventInput is the validated event creation payload.
type CreateEventInput struct {
	Name          string    `json:"name" validate:"required,max=200"`
	StartTime     time.Time `json:"startTime" validate:"required"`
	DurationHours int       `json:"durationHours" validate:"required,gt=0,lte=24"`
	SlotsPerHour  int       `json:"slotsPerHour" validate:"required,gt=0,lte=60"`
}

// EventService manages auction sessions and assembles the broadcast snapshot.
type EventService struct {
	store     store.Store
	slots     *SlotService
	bids      *BidService
	validator *ValidationHelper
	now       func() time.Time
}

func NewEventService(st store.Store, slots *SlotService, bids *BidService) *EventService {
	return &EventService{
		store:     st,
		slots:     slots,
		bids:      bids,
		validator: NewValidationHelper(),
		now:       time.Now,
	}
}

// Create registers a new event. Slots are generated separately and exactly
// once; after that the event's timing is immutable.
func (s *EventService) Create(ctx context.Context, input *CreateEventInput) (*models.Event, error) {
	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	event := &models.Event{
		ID:            uuid.NewString(),
		Name:          input.Name,
		StartTime:     input.StartTime,
		DurationHours: input.DurationHours,
		SlotsPerHour:  input.SlotsPerHour,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Activate marks the event live and arms its rotation timer.
func (s *EventService) Activate(ctx context.Context, eventID string) (*models.Event, error) {
	if err := s.store.SetEventActive(ctx, eventID, true); err != nil {
		return nil, err
	}
	if err := s.slots.ScheduleRotation(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.GetEvent(ctx, eventID)
}

// Get looks up an event.
func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	return s.store.GetEvent(ctx, eventID)
}

// Active returns the currently active event.
func (s *EventService) Active(ctx context.Context) (*models.Event, error) {
	return s.store.ActiveEvent(ctx)
}

// Snapshot builds the full state a new realtime subscriber starts from.
func (s *EventService) Snapshot(ctx context.Context) (*EngineState, error) {
	state := &EngineState{Leaderboard: []*models.Bid{}}

	event, err := s.store.ActiveEvent(ctx)
	if err == store.ErrNotFound {
		return state, nil
	}
	if err != nil {
		return nil, err
	}
	state.Event = event

	if state.CurrentSlot, err = s.slots.CurrentSlot(ctx, event.ID); err != nil {
		return nil, err
	}
	if state.Leaderboard, err = s.bids.Leaderboard(ctx, event.ID, 0); err != nil {
		return nil, err
	}
	if state.CurrentWinner, err = s.bids.CurrentWinner(ctx, event.ID); err != nil {
		return nil, err
	}
	return state, nil
}
