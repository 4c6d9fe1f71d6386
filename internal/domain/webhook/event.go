package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	ErrEventNotFound = errors.New("webhook: event not found")
	ErrEmptyPayload  = errors.New("webhook: empty payload")
	ErrInvalidTopic  = errors.New("webhook: invalid topic")
)

// ---------------------------------------------------------------------------
// Event Entity
// ---------------------------------------------------------------------------

// Status is the processing state of a received webhook event.
type Status string

const (
	// StatusPending means the payload is persisted but not yet consumed.
	StatusPending Status = "pending"
	// StatusProcessed means the consumer handled the event.
	StatusProcessed Status = "processed"
	// StatusFailed means the consumer gave up; the row keeps the error.
	StatusFailed Status = "failed"
)

// IsValid returns true if the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusFailed:
		return true
	default:
		return false
	}
}

// Event is one received webhook notification. The raw payload is persisted
// before the HTTP handler acknowledges, so a crash between ack and
// processing loses nothing; the consumer re-reads pending rows on startup.
// Delivery is therefore at-least-once and consumers must be idempotent.
type Event struct {
	ID uuid.UUID
	// Source identifies the sending platform ("storefront" or "marketplace").
	Source string
	// Topic is the platform's event topic (e.g. "products/update").
	Topic string
	// EntityID is the platform id extracted from the payload, when known.
	EntityID string
	// Payload is the raw request body as received.
	Payload []byte
	Status  Status
	// Attempts counts processing attempts, successful or not.
	Attempts int
	// LastError holds the most recent processing failure.
	LastError   string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEvent persist-stages a raw webhook payload.
func NewEvent(source, topic, entityID string, payload []byte) (*Event, error) {
	if topic == "" {
		return nil, ErrInvalidTopic
	}
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	now := time.Now()
	return &Event{
		ID:        uuid.New(),
		Source:    source,
		Topic:     topic,
		EntityID:  entityID,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkProcessed records a successful consumption.
func (e *Event) MarkProcessed() {
	now := time.Now()
	e.Status = StatusProcessed
	e.Attempts++
	e.LastError = ""
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed records a failed consumption attempt with its error detail.
func (e *Event) MarkFailed(detail string) {
	e.Status = StatusFailed
	e.Attempts++
	e.LastError = detail
	e.UpdatedAt = time.Now()
}

// ---------------------------------------------------------------------------
// Repository Interface
// ---------------------------------------------------------------------------

// Repository persists webhook events.
type Repository interface {
	// FindByID finds an event by id. Returns ErrEventNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)

	// FindPending returns pending events oldest first, used for replay
	// after a restart.
	FindPending(ctx context.Context, limit int) ([]Event, error)

	// Save creates or updates an event row.
	Save(ctx context.Context, event *Event) error

	// CountByStatus counts events per processing state.
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
