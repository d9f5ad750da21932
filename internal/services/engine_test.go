package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orientanurag/upnext-mvp/internal/config"
	"github.com/orientanurag/upnext-mvp/internal/models"
	"github.com/orientanurag/upnext-mvp/internal/store"
)

// testEngine wires the full service graph on the in-memory store with a
// controllable clock.
type testEngine struct {
	store   *store.MemoryStore
	cfg     *config.AuctionConfig
	bcast   *Broadcaster
	slots   *SlotService
	bids    *BidService
	wallets *WalletService
	events  *EventService
	expiry  *ExpiryService

	clock time.Time
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	e := &testEngine{
		store: store.NewMemoryStore(),
		cfg: &config.AuctionConfig{
			MinBidAmount:    50,
			MaxBidsPerSlot:  5,
			SlotLookahead:   5,
			LeaderboardSize: 10,
			SweepInterval:   30 * time.Second,
			CurrencySymbol:  "₹",
		},
		clock: time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
	}

	now := func() time.Time { return e.clock }

	e.bcast = NewBroadcaster(nil)
	e.slots = NewSlotService(e.store, e.cfg)
	e.slots.now = now
	e.bids = NewBidService(e.store, e.slots, e.bcast, e.cfg)
	e.bids.now = now
	e.wallets = NewWalletService(e.store)
	e.wallets.now = now
	e.events = NewEventService(e.store, e.slots, e.bids)
	e.events.now = now
	e.expiry = NewExpiryService(e.store, e.bids, e.slots, e.bcast)
	e.expiry.now = now

	t.Cleanup(e.slots.StopRotation)
	return e
}

// advance moves the test clock forward.
func (e *testEngine) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

// seedEvent creates a 2-hour event with 10-minute slots starting at the
// current test clock, generates its schedule and activates it.
func (e *testEngine) seedEvent(t *testing.T) *models.Event {
	t.Helper()
	ctx := context.Background()

	event, err := e.events.Create(ctx, &CreateEventInput{
		Name:          "Saturday Night",
		StartTime:     e.clock,
		DurationHours: 2,
		SlotsPerHour:  6,
	})
	require.NoError(t, err)

	_, err = e.slots.GenerateSlots(ctx, event.ID)
	require.NoError(t, err)

	require.NoError(t, e.store.SetEventActive(ctx, event.ID, true))
	event.Active = true
	return event
}

// seedWallet tops up a fresh wallet for the user and returns it.
func (e *testEngine) seedWallet(t *testing.T, userID string, balance int64) *models.Wallet {
	t.Helper()
	wallet, err := e.wallets.AddFunds(context.Background(), userID, balance)
	require.NoError(t, err)
	return wallet
}

// submitBid places a bid with sensible defaults.
func (e *testEngine) submitBid(t *testing.T, eventID, walletID string, amount int64) *models.Bid {
	t.Helper()
	bid, err := e.bids.Submit(context.Background(), &CreateBidInput{
		EventID:   eventID,
		WalletID:  walletID,
		SongTitle: "Test Song",
		Amount:    amount,
		UserName:  "Guest",
	})
	require.NoError(t, err)
	return bid
}
