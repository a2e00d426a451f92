// Package realtime watches nudge inserts and fans them out to connected
// clients. Delivery is at-most-once and best effort: the change stream is the
// reliable part, everything downstream may drop. Missed nudges stay
// queryable through the list endpoint.
package realtime

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Sage-GtHub/neurostate-sub005/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const toastDescriptionLimit = 120

var priorityLabels = map[models.NudgePriority]string{
	models.PriorityCritical: "Critical Alert",
	models.PriorityHigh:     "Important",
	models.PriorityMedium:   "Suggestion",
	models.PriorityLow:      "Tip",
}

// ToastEvent is the in-app notification shape. Always emitted for a
// qualifying insert.
type ToastEvent struct {
	NudgeID     string `json:"nudge_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Alerting    bool   `json:"alerting"` // destructive toast variant for high/critical
}

// PushEvent is the platform-notification shape. The Tag is stable per nudge
// so a redelivered event replaces the shown notification instead of stacking.
type PushEvent struct {
	Tag   string `json:"tag"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// DeliveryState mirrors the client facts that gate push delivery. The client
// reports changes (tab visibility, permission grants) over its connection.
type DeliveryState struct {
	Hidden      bool
	PushGranted bool
}

// Subscriber receives events for one user. Toast fires for every qualifying
// insert; Push only when the priority and delivery-state gates all pass.
type Subscriber struct {
	UserID string
	Toast  func(ToastEvent)
	Push   func(PushEvent) error

	mu    sync.Mutex
	state DeliveryState
}

func (s *Subscriber) SetState(state DeliveryState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Subscriber) State() DeliveryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Bridge owns the change-stream subscription. Explicit Start/Stop; no events
// are buffered before Start, a startup race loses them by design.
type Bridge struct {
	db *mongo.Database

	mu   sync.RWMutex
	subs map[string][]*Subscriber

	cancel       context.CancelFunc
	done         chan struct{}
	pushFailures atomic.Int64
}

func NewBridge(db *mongo.Database) *Bridge {
	return &Bridge{
		db:   db,
		subs: make(map[string][]*Subscriber),
	}
}

// Subscribe registers a subscriber and returns its teardown func.
func (b *Bridge) Subscribe(sub *Subscriber) func() {
	b.mu.Lock()
	b.subs[sub.UserID] = append(b.subs[sub.UserID], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[sub.UserID]
		for i, s := range list {
			if s == sub {
				b.subs[sub.UserID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(b.subs[sub.UserID]) == 0 {
			delete(b.subs, sub.UserID)
		}
	}
}

// Start opens the insert-only change stream on nudges and begins dispatching.
// Reconnection and resumption are the driver's concern.
func (b *Bridge) Start(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		bson.D{{"$match", bson.D{{"operationType", "insert"}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := b.db.Collection("nudges").Watch(ctx, pipeline, opts)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.done = make(chan struct{})

	go func() {
		defer close(b.done)
		defer stream.Close(context.Background())
		for stream.Next(runCtx) {
			var event struct {
				FullDocument models.Nudge `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Printf("realtime: decode change event: %v", err)
				continue
			}
			b.Dispatch(event.FullDocument)
		}
		if err := stream.Err(); err != nil && runCtx.Err() == nil {
			log.Printf("realtime: change stream closed: %v", err)
		}
	}()
	return nil
}

// Stop tears the stream down and waits for the dispatch loop to exit.
func (b *Bridge) Stop() {
	if b.cancel == nil {
		return
	}
	b.cancel()
	<-b.done
	b.cancel = nil
}

// PushFailures reports how many platform deliveries were swallowed. Exposed
// so permission-denial rates are observable rather than silently discarded.
func (b *Bridge) PushFailures() int64 {
	return b.pushFailures.Load()
}

// Dispatch routes one nudge insert to the user's subscribers. The stream is
// already insert-only, but user and status are re-checked here: a nudge can
// arrive already resolved, and trusting only the transport filter is how
// cross-user leaks happen.
func (b *Bridge) Dispatch(n models.Nudge) {
	if n.Status != models.NudgeActive {
		return
	}

	b.mu.RLock()
	subs := make([]*Subscriber, len(b.subs[n.UserID]))
	copy(subs, b.subs[n.UserID])
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	label, ok := priorityLabels[n.Priority]
	if !ok {
		label = priorityLabels[models.PriorityLow]
	}
	alerting := n.Priority == models.PriorityCritical || n.Priority == models.PriorityHigh

	toast := ToastEvent{
		NudgeID:     n.ID.Hex(),
		Title:       label + ": " + n.Title,
		Description: truncate(n.Description, toastDescriptionLimit),
		Alerting:    alerting,
	}

	for _, sub := range subs {
		if sub.UserID != n.UserID {
			continue
		}
		if sub.Toast != nil {
			sub.Toast(toast)
		}
		if !alerting || sub.Push == nil {
			continue
		}
		state := sub.State()
		if !state.Hidden || !state.PushGranted {
			continue
		}
		push := PushEvent{
			Tag:   n.ID.Hex(),
			Title: toast.Title,
			Body:  toast.Description,
		}
		if err := sub.Push(push); err != nil {
			// Permission can be revoked under us at any time. Swallow,
			// but keep the failure observable.
			b.pushFailures.Add(1)
			log.Printf("realtime: push delivery failed user=%s nudge=%s err=%v", n.UserID, toast.NudgeID, err)
		}
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
