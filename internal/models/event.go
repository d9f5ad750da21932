package models

import (
	"time"
)

// Slot statuses
const (
	SlotStatusAvailable = "available"
	SlotStatusBidding   = "bidding"
	SlotStatusLocked    = "locked"
	SlotStatusCompleted = "completed"
)

// Event represents a single auction session. Timing fields are immutable
// once slots have been generated.
type Event struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	StartTime          time.Time `json:"startTime" db:"start_time"`
	DurationHours      int       `json:"durationHours" db:"duration_hours"`
	SlotsPerHour       int       `json:"slotsPerHour" db:"slots_per_hour"`
	Active             bool      `json:"active" db:"active"`
	CurrentWinnerBidID string    `json:"currentWinnerBidId,omitempty" db:"current_winner_bid_id"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}

// SlotDuration derives the length of one slot (60/slotsPerHour minutes).
func (e *Event) SlotDuration() time.Duration {
	if e.SlotsPerHour <= 0 {
		return 0
	}
	return time.Hour / time.Duration(e.SlotsPerHour)
}

// TotalSlots is the number of slots the event schedule holds.
func (e *Event) TotalSlots() int {
	return e.DurationHours * e.SlotsPerHour
}

// EndTime is when the last slot of the event closes.
func (e *Event) EndTime() time.Time {
	return e.StartTime.Add(time.Duration(e.DurationHours) * time.Hour)
}

// Slot is one fixed-duration bidding window. Timing is immutable after
// generation; only Status and CurrentWinnerBidID change.
type Slot struct {
	ID                 string    `json:"id" db:"id"`
	EventID            string    `json:"eventId" db:"event_id"`
	SlotNumber         int       `json:"slotNumber" db:"slot_number"`
	ScheduledTime      time.Time `json:"scheduledTime" db:"scheduled_time"`
	Status             string    `json:"status" db:"status"`
	CurrentWinnerBidID string    `json:"currentWinnerBidId,omitempty" db:"current_winner_bid_id"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}

// EndTime returns when the slot's window closes given the event's slot duration.
func (s *Slot) EndTime(slotDuration time.Duration) time.Time {
	return s.ScheduledTime.Add(slotDuration)
}

// Contains reports whether now falls inside the slot window.
func (s *Slot) Contains(now time.Time, slotDuration time.Duration) bool {
	return !now.Before(s.ScheduledTime) && now.Before(s.EndTime(slotDuration))
}
