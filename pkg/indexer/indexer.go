package indexer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/pkg/logger"
	"agent-chatbot-be/internal/repository/contract"
	"agent-chatbot-be/pkg/embedding"
	"agent-chatbot-be/pkg/retrieval"
	"agent-chatbot-be/pkg/vectorindex"
)

// categoryPriority is the boost priority stored on category-level vectors.
// Categories have no priority of their own, so they sit at the bottom of
// the 1-10 scale and never outrank a boosted unit.
const categoryPriority = 1

// ReindexReport summarizes one tenant rebuild. Zero documents is a valid
// outcome, not an error: an empty knowledge base simply indexes nothing.
type ReindexReport struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	Categories int       `json:"categories"`
	Units      int       `json:"units"`
	Total      int       `json:"total"`
}

// Indexer owns the write side of the vector index: full tenant rebuilds,
// single-unit ingestion and metadata-only activation cascades. Every write
// path invalidates the tenant's result cache so searches never serve
// pre-mutation rankings past the invalidation.
type Indexer struct {
	index      vectorindex.Index
	embeddings embedding.Provider
	contents   contract.ContentRepository
	categories contract.CategoryRepository
	results    retrieval.ResultStore
	logger     logger.ILogger
}

func NewIndexer(
	index vectorindex.Index,
	embeddings embedding.Provider,
	contents contract.ContentRepository,
	categories contract.CategoryRepository,
	results retrieval.ResultStore,
	log logger.ILogger,
) *Indexer {
	return &Indexer{
		index:      index,
		embeddings: embeddings,
		contents:   contents,
		categories: categories,
		results:    results,
		logger:     log,
	}
}

// ReindexTenant drops and rebuilds the tenant's collection from scratch:
// every active category plus its searchable units, formatted, batch-embedded
// and bulk-inserted.
//
// The rebuild is destructive and unsynchronized: a concurrent search on the
// same tenant can observe an empty or partially filled collection until the
// rebuild finishes. Acceptable for the low-frequency admin path this serves.
func (ix *Indexer) ReindexTenant(ctx context.Context, tenantID uuid.UUID) (*ReindexReport, error) {
	ix.results.InvalidateTenant(ctx, tenantID)

	if err := ix.index.Drop(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("failed to drop collection: %w", err)
	}
	if err := ix.index.Create(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("failed to recreate collection: %w", err)
	}

	categories, err := ix.categories.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	// The active set doubles as the path lookup table: an inactive ancestor
	// simply truncates the path prefix.
	byID := make(map[uuid.UUID]*entity.CategoryNode, len(categories))
	for _, category := range categories {
		byID[category.Id] = category
	}

	report := &ReindexReport{TenantID: tenantID}
	var docs []vectorindex.Document
	var texts []string

	for _, category := range categories {
		text := FormatCategory(category)
		docs = append(docs, vectorindex.Document{
			ID:   vectorindex.CategoryDocID(category.Id),
			Text: text,
			Metadata: vectorindex.Metadata{
				Type:       vectorindex.TypeCategory,
				CategoryID: category.Id,
				Title:      category.Name,
				Priority:   categoryPriority,
				Active:     true,
			},
		})
		texts = append(texts, text)
		report.Categories++

		units, err := ix.contents.ListSearchable(ctx, category.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to list units of category %s: %w", category.Id, err)
		}

		path := pathFromSet(category, byID)
		for _, unit := range units {
			contentID := unit.Id
			text := FormatUnit(unit, path)
			docs = append(docs, vectorindex.Document{
				ID:   vectorindex.UnitDocID(unit.Id),
				Text: text,
				Metadata: vectorindex.Metadata{
					Type:       vectorindex.TypeContentUnit,
					ContentID:  &contentID,
					CategoryID: unit.CategoryId,
					Title:      unit.Title,
					Priority:   unit.Priority,
					Active:     true,
				},
			})
			texts = append(texts, text)
			report.Units++
		}
	}

	report.Total = len(docs)
	if len(docs) == 0 {
		ix.logger.Info("Indexer", "Reindex finished with empty knowledge base", map[string]interface{}{
			"tenant_id": tenantID.String(),
		})
		return report, nil
	}

	vectors, err := ix.embeddings.GenerateBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedding batch returned %d vectors for %d documents", len(vectors), len(docs))
	}
	for i := range docs {
		docs[i].Embedding = vectors[i]
	}

	if err := ix.index.Add(ctx, tenantID, docs); err != nil {
		return nil, fmt.Errorf("failed to insert documents: %w", err)
	}

	ix.logger.Info("Indexer", "Reindex completed", map[string]interface{}{
		"tenant_id":  tenantID.String(),
		"categories": report.Categories,
		"units":      report.Units,
	})
	return report, nil
}

// IngestUnit upserts one unit's vector after a create or update. The prior
// vector is deleted first (missing is fine) and the fresh metadata carries
// the unit's current searchability, so an inactive edit is immediately
// invisible to default searches even before the staleness filter runs.
func (ix *Indexer) IngestUnit(ctx context.Context, unit *entity.ContentUnit) error {
	category, err := ix.categories.GetByID(ctx, unit.CategoryId)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return fmt.Errorf("category %s not found for unit %s", unit.CategoryId, unit.Id)
	}

	path, err := ix.buildPath(ctx, category)
	if err != nil {
		return err
	}

	text := FormatUnit(unit, path)
	vector, err := ix.embeddings.Generate(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed unit: %w", err)
	}

	docID := vectorindex.UnitDocID(unit.Id)
	if err := ix.index.Delete(ctx, unit.TenantId, []string{docID}); err != nil {
		return fmt.Errorf("failed to delete prior vector: %w", err)
	}

	contentID := unit.Id
	doc := vectorindex.Document{
		ID:        docID,
		Text:      text,
		Embedding: vector,
		Metadata: vectorindex.Metadata{
			Type:       vectorindex.TypeContentUnit,
			ContentID:  &contentID,
			CategoryID: unit.CategoryId,
			Title:      unit.Title,
			Priority:   unit.Priority,
			Active:     unit.Searchable(),
		},
	}
	if err := ix.index.Upsert(ctx, unit.TenantId, []vectorindex.Document{doc}); err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	ix.results.InvalidateTenant(ctx, unit.TenantId)
	return nil
}

// IngestCategory upserts the category's own vector entry.
func (ix *Indexer) IngestCategory(ctx context.Context, category *entity.CategoryNode) error {
	text := FormatCategory(category)
	vector, err := ix.embeddings.Generate(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed category: %w", err)
	}

	doc := vectorindex.Document{
		ID:        vectorindex.CategoryDocID(category.Id),
		Text:      text,
		Embedding: vector,
		Metadata: vectorindex.Metadata{
			Type:       vectorindex.TypeCategory,
			CategoryID: category.Id,
			Title:      category.Name,
			Priority:   categoryPriority,
			Active:     category.Active && !category.Deleted,
		},
	}
	if err := ix.index.Upsert(ctx, category.TenantId, []vectorindex.Document{doc}); err != nil {
		return fmt.Errorf("failed to upsert category vector: %w", err)
	}

	ix.results.InvalidateTenant(ctx, category.TenantId)
	return nil
}

// CascadeToggle flips the active flag on the category vectors and every
// member unit vector, without recomputing embeddings. Bulk deactivation
// hides a whole subtree from search without paying for a reindex.
func (ix *Indexer) CascadeToggle(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID, active bool) (int64, error) {
	affected, err := ix.index.SetActiveByCategory(ctx, tenantID, categoryIDs, active)
	if err != nil {
		return 0, fmt.Errorf("failed to toggle vectors: %w", err)
	}

	ix.results.InvalidateTenant(ctx, tenantID)

	ix.logger.Info("Indexer", "Cascade toggle applied", map[string]interface{}{
		"tenant_id":  tenantID.String(),
		"categories": len(categoryIDs),
		"active":     active,
		"affected":   affected,
	})
	return affected, nil
}

// buildPath walks parent links through the repository, root first.
func (ix *Indexer) buildPath(ctx context.Context, category *entity.CategoryNode) ([]string, error) {
	path := []string{category.Name}
	current := category
	for depth := 0; current.ParentId != nil && depth < maxPathDepth; depth++ {
		parent, err := ix.categories.GetByID(ctx, *current.ParentId)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve category path: %w", err)
		}
		if parent == nil {
			break
		}
		path = append([]string{parent.Name}, path...)
		current = parent
	}
	return path, nil
}

// pathFromSet resolves the path using an already-loaded category set.
func pathFromSet(category *entity.CategoryNode, byID map[uuid.UUID]*entity.CategoryNode) []string {
	path := []string{category.Name}
	current := category
	for depth := 0; current.ParentId != nil && depth < maxPathDepth; depth++ {
		parent, ok := byID[*current.ParentId]
		if !ok {
			break
		}
		path = append([]string{parent.Name}, path...)
		current = parent
	}
	return path
}
