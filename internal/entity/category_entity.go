package entity

import (
	"time"

	"github.com/google/uuid"
)

// CategoryNode is one node of a tenant's category tree. ParentId is nil for
// root categories.
type CategoryNode struct {
	Id          uuid.UUID
	TenantId    uuid.UUID
	ParentId    *uuid.UUID
	Name        string
	Description string
	Active      bool
	Deleted     bool
	CreatedAt   time.Time
}
