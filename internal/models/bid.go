package models

import (
	"time"
)

// Bid statuses
const (
	BidStatusPending  = "pending"
	BidStatusApproved = "approved"
	BidStatusRejected = "rejected"
	BidStatusPlayed   = "played"
)

// Payment statuses
const (
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// UnresolvedBidStatuses are the statuses that occupy slot capacity.
var UnresolvedBidStatuses = []string{BidStatusPending, BidStatusApproved}

// Bid is a paid song request competing for a slot.
type Bid struct {
	ID            string     `json:"id" db:"id"`
	EventID       string     `json:"eventId" db:"event_id"`
	SlotID        string     `json:"slotId,omitempty" db:"slot_id"`
	WalletID      string     `json:"walletId" db:"wallet_id"`
	SongTitle     string     `json:"songTitle" db:"song_title"`
	SongArtist    string     `json:"songArtist,omitempty" db:"song_artist"`
	SongAlbum     string     `json:"songAlbum,omitempty" db:"song_album"`
	TrackID       string     `json:"trackId,omitempty" db:"track_id"`
	Message       string     `json:"message,omitempty" db:"message"`
	Amount        int64      `json:"amount" db:"amount"` // in rupees
	UserName      string     `json:"userName" db:"user_name"`
	Status        string     `json:"status" db:"status"`
	PaymentStatus string     `json:"paymentStatus" db:"payment_status"`
	SubmittedAt   time.Time  `json:"submittedAt" db:"submitted_at"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty" db:"approved_at"`
	PlayedAt      *time.Time `json:"playedAt,omitempty" db:"played_at"`
}

// Resolved reports whether the bid has reached a terminal outcome and no
// longer occupies slot capacity.
func (b *Bid) Resolved() bool {
	return b.Status == BidStatusRejected || b.Status == BidStatusPlayed
}
