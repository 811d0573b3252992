package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeVPAwarded       EventType = "vp_awarded"
	EventTypeVPDeducted      EventType = "vp_deducted"
	EventTypeBalanceCreated  EventType = "balance_created"
	EventTypeAccountVerified EventType = "account_verified"
	EventTypeAccountUnlinked EventType = "account_unlinked"
)

// AllEventTypes lists every event type the bot emits
var AllEventTypes = []EventType{
	EventTypeVPAwarded,
	EventTypeVPDeducted,
	EventTypeBalanceCreated,
	EventTypeAccountVerified,
	EventTypeAccountUnlinked,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AwardSource identifies what granted VP
type AwardSource string

const (
	AwardSourceVoice AwardSource = "voice"
	AwardSourceAdmin AwardSource = "admin"
)

// VPAwardedEvent is emitted after VP was credited to a balance
type VPAwardedEvent struct {
	DiscordID  int64       `json:"discord_id"`
	Amount     int64       `json:"amount"`
	Minutes    int64       `json:"minutes,omitempty"`
	NewBalance int64       `json:"new_balance"`
	Source     AwardSource `json:"source"`
}

func (e VPAwardedEvent) Type() EventType {
	return EventTypeVPAwarded
}

// VPDeductedEvent is emitted after VP was spent or removed
type VPDeductedEvent struct {
	DiscordID  int64  `json:"discord_id"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
	Reason     string `json:"reason"`
}

func (e VPDeductedEvent) Type() EventType {
	return EventTypeVPDeducted
}

// BalanceCreatedEvent is emitted the first time a user is seen
type BalanceCreatedEvent struct {
	DiscordID   int64  `json:"discord_id"`
	DiscordName string `json:"discord_name"`
}

func (e BalanceCreatedEvent) Type() EventType {
	return EventTypeBalanceCreated
}

// AccountVerifiedEvent is emitted when a code binds a GrowID to a Discord user
type AccountVerifiedEvent struct {
	DiscordID   int64  `json:"discord_id"`
	DiscordName string `json:"discord_name"`
	GrowID      string `json:"growid"`
}

func (e AccountVerifiedEvent) Type() EventType {
	return EventTypeAccountVerified
}

// AccountUnlinkedEvent is emitted when an administrator removes a link
type AccountUnlinkedEvent struct {
	DiscordID int64  `json:"discord_id"`
	GrowID    string `json:"growid"`
	Verified  bool   `json:"verified"`
}

func (e AccountUnlinkedEvent) Type() EventType {
	return EventTypeAccountUnlinked
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run on their
// own goroutines; a panicking handler is logged and does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits pending events to the real bus. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// The transaction context may already be cancelled by the caller once the
	// handler returns, so handlers get a fresh one.
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("count", len(b.pending)).Debug("Flushed pending events")
	b.pending = nil
}

// Discard drops pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
