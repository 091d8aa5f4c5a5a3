package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is the short-lived conversational state of one chat widget
// session. It scopes the embedding cache and lets follow-up searches reuse
// the session's focus.
type ChatSession struct {
	Id              string
	TenantId        uuid.UUID
	LastQuery       string
	FocusCategoryId *uuid.UUID
	UpdatedAt       time.Time
}
