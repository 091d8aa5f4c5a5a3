package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/pkg/logger"
	"agent-chatbot-be/pkg/embedding"
	"agent-chatbot-be/pkg/rerank"
	"agent-chatbot-be/pkg/vectorindex"
)

const (
	DefaultNResults            = 4
	DefaultPriorityBoostFactor = 0.1

	// rerankOverFetchFactor sizes the candidate pool handed to the
	// reranker, giving it headroom to reorder before truncation.
	rerankOverFetchFactor = 3
)

// ContentStateStore answers "is this unit still searchable right now" for
// the staleness filter. A nil state means the unit no longer exists.
type ContentStateStore interface {
	GetUnitState(ctx context.Context, contentID uuid.UUID) (*entity.UnitState, error)
}

// Engine runs the retrieval pipeline: result cache, embedding resolution,
// vector query, optional rerank, priority blend, staleness filter.
//
// The result cache is authoritative inside its TTL window: a hit is returned
// as stored and the staleness filter is not re-run, trading a bounded
// freshness window for latency.
type Engine struct {
	embeddings *embedding.Cache
	index      vectorindex.Index
	reranker   rerank.Reranker // nil disables reranking regardless of params
	results    ResultStore
	states     ContentStateStore
	logger     logger.ILogger
}

func NewEngine(
	embeddings *embedding.Cache,
	index vectorindex.Index,
	reranker rerank.Reranker,
	results ResultStore,
	states ContentStateStore,
	log logger.ILogger,
) *Engine {
	return &Engine{
		embeddings: embeddings,
		index:      index,
		reranker:   reranker,
		results:    results,
		states:     states,
		logger:     log,
	}
}

// Search executes the full pipeline and returns at most NResults results,
// best first. Vector index and content store failures propagate; an empty
// result must mean "nothing relevant", never "something broke".
func (e *Engine) Search(ctx context.Context, params SearchParams) ([]RetrievalResult, error) {
	if params.NResults <= 0 {
		params.NResults = DefaultNResults
	}
	if params.UsePriorityBoost && params.PriorityBoostFactor <= 0 {
		params.PriorityBoostFactor = DefaultPriorityBoostFactor
	}
	useReranking := params.UseReranking && e.reranker != nil

	key := params.CacheKey()
	if cached, ok := e.results.Get(ctx, params.TenantID, key); ok {
		e.logger.Debug("RetrievalEngine", "Result cache hit", map[string]interface{}{
			"tenant_id": params.TenantID.String(),
			"results":   len(cached),
		})
		return cached, nil
	}

	queryVector, err := e.embeddings.GetOrCompute(ctx, params.SessionID, params.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	poolSize := params.NResults
	if useReranking {
		poolSize = params.NResults * rerankOverFetchFactor
	}

	filter := vectorindex.Filter{"type": vectorindex.TypeContentUnit}
	if !params.IncludeInactive {
		filter["active"] = true
	}

	matches, err := e.index.Query(ctx, params.TenantID, queryVector, poolSize, filter)
	if err != nil {
		return nil, fmt.Errorf("vector index query failed: %w", err)
	}

	candidates, err := e.score(ctx, params, useReranking, matches)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > params.NResults {
		candidates = candidates[:params.NResults]
	}

	// IncludeInactive deliberately surfaces inactive and deleted content,
	// so the staleness re-check only guards the default path.
	final := candidates
	if !params.IncludeInactive {
		final, err = e.filterStale(ctx, candidates)
		if err != nil {
			return nil, err
		}
	}

	e.results.Set(ctx, params.TenantID, key, final)

	e.logger.Debug("RetrievalEngine", "Search completed", map[string]interface{}{
		"tenant_id": params.TenantID.String(),
		"pool":      len(matches),
		"results":   len(final),
		"reranked":  useReranking,
	})
	return final, nil
}

// score turns raw matches into scored results. Without reranking the score
// is 1/(1+distance); with reranking it is the cross-encoder relevance. The
// priority boost is added on top in both modes.
func (e *Engine) score(ctx context.Context, params SearchParams, useReranking bool, matches []vectorindex.Match) ([]RetrievalResult, error) {
	results := make([]RetrievalResult, len(matches))
	for i, match := range matches {
		results[i] = RetrievalResult{
			ID:         match.ID,
			Document:   match.Text,
			ContentID:  match.Metadata.ContentID,
			CategoryID: match.Metadata.CategoryID,
			Title:      match.Metadata.Title,
			Priority:   match.Metadata.Priority,
			Distance:   match.Distance,
			Score:      1 / (1 + match.Distance),
			Reranked:   useReranking,
		}
	}

	if useReranking && len(matches) > 0 {
		documents := make([]string, len(matches))
		for i, match := range matches {
			documents[i] = match.Text
		}
		scores, err := e.reranker.Rerank(ctx, params.Query, documents)
		if err != nil {
			return nil, fmt.Errorf("reranking failed: %w", err)
		}
		if len(scores) != len(results) {
			return nil, fmt.Errorf("reranker returned %d scores for %d documents", len(scores), len(results))
		}
		for i := range results {
			raw := scores[i]
			results[i].Score = raw
			results[i].RerankScore = &raw
		}
	}

	if params.UsePriorityBoost {
		for i := range results {
			results[i].Score += float64(results[i].Priority) * params.PriorityBoostFactor
		}
	}
	return results, nil
}

// filterStale drops results whose unit is no longer searchable in the
// authoritative store. Entries without a content id (category-level docs)
// pass through. Store errors propagate rather than risking deleted content.
func (e *Engine) filterStale(ctx context.Context, results []RetrievalResult) ([]RetrievalResult, error) {
	kept := make([]RetrievalResult, 0, len(results))
	for _, result := range results {
		if result.ContentID == nil {
			kept = append(kept, result)
			continue
		}
		state, err := e.states.GetUnitState(ctx, *result.ContentID)
		if err != nil {
			return nil, fmt.Errorf("staleness check failed for %s: %w", result.ContentID, err)
		}
		if state == nil || !state.Searchable() {
			e.logger.Debug("RetrievalEngine", "Dropped stale result", map[string]interface{}{
				"content_id": result.ContentID.String(),
			})
			continue
		}
		kept = append(kept, result)
	}
	return kept, nil
}
