package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vpbot/events"
	"vpbot/infrastructure/observability"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// StreamName is the JetStream stream the game server consumes
	StreamName    = "vp_events"
	subjectPrefix = "vp.events."
	sourceService = "vpbot"
	publishWait   = 5 * time.Second
)

// MessagePublisher is the transport the event publisher writes to
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope wraps every event sent to the game server
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// SubjectFor maps an event to its NATS subject
func SubjectFor(eventType events.EventType) string {
	return subjectPrefix + string(eventType)
}

// AllSubjects returns every subject this service publishes to
func AllSubjects() []string {
	subjects := make([]string, 0, len(events.AllEventTypes))
	for _, t := range events.AllEventTypes {
		subjects = append(subjects, SubjectFor(t))
	}
	return subjects
}

// NATSEventPublisher forwards committed bus events to NATS
type NATSEventPublisher struct {
	publisher MessagePublisher
	now       func() time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(publisher MessagePublisher) *NATSEventPublisher {
	return &NATSEventPublisher{
		publisher: publisher,
		now:       time.Now,
	}
}

// NewEnvelope serializes event into an envelope with a fresh id
func NewEnvelope(event events.Event, at time.Time) (*EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     at.UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}, nil
}

// Publish sends one event to its subject
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	envelope, err := NewEnvelope(event, p.now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := SubjectFor(event.Type())
	if err := p.publisher.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Published event to NATS")

	return nil
}

// SubscribeToBus forwards every event type from bus. Failures are logged and
// counted; the originating transaction has already committed.
func (p *NATSEventPublisher) SubscribeToBus(bus *events.Bus) {
	for _, eventType := range events.AllEventTypes {
		bus.Subscribe(eventType, p.handle)
	}
}

func (p *NATSEventPublisher) handle(ctx context.Context, event events.Event) {
	ctx, cancel := context.WithTimeout(ctx, publishWait)
	defer cancel()

	metrics := observability.GetMetrics()
	if err := p.Publish(ctx, event); err != nil {
		log.WithField("eventType", event.Type()).WithError(err).Error("Failed to forward event to game server")
		metrics.RecordEventPublished(string(event.Type()), false)
		return
	}
	metrics.RecordEventPublished(string(event.Type()), true)
}
