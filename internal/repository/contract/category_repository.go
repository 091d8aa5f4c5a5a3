package contract

import (
	"context"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.CategoryNode) error
	Update(ctx context.Context, category *entity.CategoryNode) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CategoryNode, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CategoryNode, error)

	// GetByID returns the category regardless of active/deleted flags, or
	// nil when missing. Used for path construction.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CategoryNode, error)

	// ListActive returns every active, non-deleted category of a tenant.
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*entity.CategoryNode, error)

	// ListTenants returns the distinct tenants that have at least one
	// active category. Drives the reindex-all admin path.
	ListTenants(ctx context.Context) ([]uuid.UUID, error)
}
