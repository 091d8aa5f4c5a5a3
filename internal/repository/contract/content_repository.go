package contract

import (
	"context"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ContentRepository is the authoritative store of content units. The
// retrieval engine only reads from it; content-management workflows own the
// write side.
type ContentRepository interface {
	Create(ctx context.Context, unit *entity.ContentUnit) error
	Update(ctx context.Context, unit *entity.ContentUnit) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentUnit, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentUnit, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// GetUnitState fetches the current lifecycle state of a unit regardless
	// of its deleted flag. Returns nil when the row does not exist at all.
	GetUnitState(ctx context.Context, id uuid.UUID) (*entity.UnitState, error)

	// ListSearchable returns the active/published, non-deleted units of a
	// category, the set the indexer feeds into the vector index.
	ListSearchable(ctx context.Context, categoryID uuid.UUID) ([]*entity.ContentUnit, error)
}
