package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "KNOWLEDGE_REINDEXED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeKnowledgeInvalidated = "KNOWLEDGE_INVALIDATED"
	TypeKnowledgeReindexed   = "KNOWLEDGE_REINDEXED"
	TypeContentIngested      = "CONTENT_INGESTED"
)

// NewKnowledgeInvalidatedEvent signals that a tenant's cached retrieval
// state is stale; sibling instances drop their warm state on receipt.
func NewKnowledgeInvalidatedEvent(tenantID uuid.UUID, reason string) Event {
	return BaseEvent{
		Type: TypeKnowledgeInvalidated,
		Data: map[string]interface{}{
			"tenant_id": tenantID.String(),
			"reason":    reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewKnowledgeReindexedEvent signals that a full tenant rebuild finished.
func NewKnowledgeReindexedEvent(tenantID uuid.UUID, totalDocs int) Event {
	return BaseEvent{
		Type: TypeKnowledgeReindexed,
		Data: map[string]interface{}{
			"tenant_id":  tenantID.String(),
			"total_docs": totalDocs,
		},
		OccurredAt: time.Now(),
	}
}

// NewContentIngestedEvent signals that a single content unit's vector was
// refreshed.
func NewContentIngestedEvent(tenantID, contentID uuid.UUID) Event {
	return BaseEvent{
		Type: TypeContentIngested,
		Data: map[string]interface{}{
			"tenant_id":  tenantID.String(),
			"content_id": contentID.String(),
		},
		OccurredAt: time.Now(),
	}
}
