package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrDocumentExists is returned by Add when an id is already present.
	// Callers wanting overwrite semantics use Upsert or delete-then-add.
	ErrDocumentExists = errors.New("vector document already exists")

	// ErrUnsupportedFilter is returned for filter fields a backend cannot
	// translate.
	ErrUnsupportedFilter = errors.New("unsupported filter field")
)

const (
	TypeContentUnit = "content_unit"
	TypeCategory    = "category"
)

// Metadata is the structured payload stored alongside each vector. Active
// mirrors the authoritative store as of the last (re)index or cascade and is
// allowed to lag it until then; the retrieval engine re-validates against
// the content store at query time.
type Metadata struct {
	Type       string     `json:"type"`
	ContentID  *uuid.UUID `json:"content_id,omitempty"`
	CategoryID uuid.UUID  `json:"category_id"`
	Title      string     `json:"title"`
	Priority   int        `json:"priority"`
	Active     bool       `json:"active"`
}

type Document struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  Metadata
}

// Match is a query hit. Distance is cosine distance, smaller is closer.
type Match struct {
	Document
	Distance float64
}

// Filter is a conjunction of equality tests on metadata fields.
// Supported fields: "type" (string), "active" (bool), "category_id" (uuid).
type Filter map[string]interface{}

// Index is a per-tenant vector collection. Every operation is scoped to one
// tenant; tenants never share candidates.
type Index interface {
	// Create prepares the tenant's collection. Idempotent.
	Create(ctx context.Context, tenantID uuid.UUID) error

	// Drop removes the tenant's collection and every vector in it.
	Drop(ctx context.Context, tenantID uuid.UUID) error

	// Add inserts documents, failing with ErrDocumentExists on id collision.
	Add(ctx context.Context, tenantID uuid.UUID, docs []Document) error

	// Upsert inserts or replaces documents. Idempotent.
	Upsert(ctx context.Context, tenantID uuid.UUID, docs []Document) error

	// Delete removes documents by id. Missing ids are not an error.
	Delete(ctx context.Context, tenantID uuid.UUID, ids []string) error

	// Get fetches documents by id, skipping missing ones.
	Get(ctx context.Context, tenantID uuid.UUID, ids []string) ([]Document, error)

	// Query returns the limit nearest documents matching the filter,
	// ordered by ascending distance.
	Query(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int, filter Filter) ([]Match, error)

	// SetActiveByCategory flips the active metadata flag, without touching
	// embeddings, on every vector whose category_id is in the set. Category
	// vectors carry their own id as category_id, so one predicate covers
	// both the category entries and their member units. Returns the number
	// of affected vectors.
	SetActiveByCategory(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID, active bool) (int64, error)
}

// UnitDocID derives the deterministic vector id for a content unit, so
// re-ingestion overwrites instead of duplicating.
func UnitDocID(contentID uuid.UUID) string {
	return fmt.Sprintf("unit_%s", contentID)
}

// CategoryDocID derives the deterministic vector id for a category entry.
func CategoryDocID(categoryID uuid.UUID) string {
	return fmt.Sprintf("category_%s", categoryID)
}
