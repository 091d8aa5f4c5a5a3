package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContentState is the editorial lifecycle of a content unit.
type ContentState string

const (
	StateDraft     ContentState = "draft"
	StateReview    ContentState = "review"
	StatePublished ContentState = "published"
	StateActive    ContentState = "active"
	StateInactive  ContentState = "inactive"
	StateArchived  ContentState = "archived"
)

type ContentUnit struct {
	Id         uuid.UUID
	TenantId   uuid.UUID
	CategoryId uuid.UUID
	Title      string
	Body       string
	Keywords   string
	Priority   int // editorial priority, 1-10, default 5
	State      ContentState
	Deleted    bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Searchable reports whether the unit should be served by retrieval.
func (u *ContentUnit) Searchable() bool {
	return !u.Deleted && (u.State == StateActive || u.State == StatePublished)
}

// UnitState is the authoritative-store snapshot used by the staleness filter.
type UnitState struct {
	State   ContentState
	Deleted bool
}

func (s UnitState) Searchable() bool {
	return !s.Deleted && (s.State == StateActive || s.State == StatePublished)
}
