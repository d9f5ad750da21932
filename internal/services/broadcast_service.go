package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/orientanurag/upnext-mvp/internal/models"
)

// Broadcast update types
const (
	UpdateSnapshot    = "snapshot"
	UpdateBidCreated  = "bid_created"
	UpdateBidUpdated  = "bid_updated"
	UpdateSlotChanged = "slot_changed"
)

// Update is one broadcast message. Deltas carry the record that changed;
// snapshots carry the whole state. Version increases by one per publication.
type Update struct {
	Version uint64       `json:"version"`
	Type    string       `json:"type"`
	Bid     *models.Bid  `json:"bid,omitempty"`
	Slot    *models.Slot `json:"slot,omitempty"`
	State   *EngineState `json:"state,omitempty"`
}

// EngineState is the full snapshot a new subscriber starts from.
type EngineState struct {
	Event         *models.Event `json:"event,omitempty"`
	CurrentSlot   *models.Slot  `json:"currentSlot,omitempty"`
	Leaderboard   []*models.Bid `json:"leaderboard"`
	CurrentWinner *models.Bid   `json:"currentWinner,omitempty"`
}

// Subscriber receives a snapshot as its first update, then deltas in version
// order. A subscriber that falls too far behind is dropped, never waited on.
type Subscriber struct {
	ch chan Update
}

// Updates returns the subscriber's receive channel. It is closed when the
// subscriber is dropped or unsubscribed.
func (s *Subscriber) Updates() <-chan Update {
	return s.ch
}

// Broadcaster fans out engine mutations to all connected observers and
// optionally mirrors every delta to a Redis channel for external processes.
type Broadcaster struct {
	mu       sync.Mutex
	version  uint64
	subs     map[*Subscriber]struct{}
	snapshot func(ctx context.Context) (*EngineState, error)

	redis   *redis.Client
	channel string
}

func NewBroadcaster(rdb *redis.Client) *Broadcaster {
	return &Broadcaster{
		subs:    make(map[*Subscriber]struct{}),
		redis:   rdb,
		channel: "upnext:updates",
	}
}

// SetSnapshotFunc registers the state reader used to build the initial
// snapshot for new subscribers.
func (b *Broadcaster) SetSnapshotFunc(fn func(ctx context.Context) (*EngineState, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snapshot = fn
}

// Subscribe registers an observer. The snapshot and its version are taken
// under the publish lock, so the first delta the subscriber sees always has
// a version greater than its snapshot: no gaps, no reordering.
func (b *Broadcaster) Subscribe(ctx context.Context) (*Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscriber{ch: make(chan Update, 64)}

	if b.snapshot != nil {
		state, err := b.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		sub.ch <- Update{Version: b.version, Type: UpdateSnapshot, State: state}
	}

	b.subs[sub] = struct{}{}
	return sub, nil
}

// Unsubscribe removes the observer and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// BidCreated publishes a new-bid delta.
func (b *Broadcaster) BidCreated(ctx context.Context, bid *models.Bid) {
	b.publish(ctx, Update{Type: UpdateBidCreated, Bid: bid})
}

// BidUpdated publishes a bid status change.
func (b *Broadcaster) BidUpdated(ctx context.Context, bid *models.Bid) {
	b.publish(ctx, Update{Type: UpdateBidUpdated, Bid: bid})
}

// SlotChanged publishes a slot rotation or status change.
func (b *Broadcaster) SlotChanged(ctx context.Context, slot *models.Slot) {
	b.publish(ctx, Update{Type: UpdateSlotChanged, Slot: slot})
}

// publish assigns the next version and fans out without ever blocking on a
// subscriber: a full channel gets the subscriber dropped.
func (b *Broadcaster) publish(ctx context.Context, update Update) {
	b.mu.Lock()
	b.version++
	update.Version = b.version

	for sub := range b.subs {
		select {
		case sub.ch <- update:
		default:
			log.Printf("[BROADCAST] Dropping slow subscriber at version %d", update.Version)
			delete(b.subs, sub)
			close(sub.ch)
		}
	}
	b.mu.Unlock()

	if b.redis != nil {
		// Mirror is best effort; a redis hiccup must not fail the mutation.
		go func() {
			payload, err := json.Marshal(update)
			if err != nil {
				return
			}
			if err := b.redis.Publish(context.Background(), b.channel, payload).Err(); err != nil {
				log.Printf("[BROADCAST] Redis mirror publish failed: %v", err)
			}
		}()
	}
}

// Version returns the current broadcast version.
func (b *Broadcaster) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// SubscriberCount returns the number of connected observers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
