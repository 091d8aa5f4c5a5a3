package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/pkg/logger"
	"agent-chatbot-be/pkg/embedding"
	"agent-chatbot-be/pkg/vectorindex"
)

// fakeIndex returns a canned match list and records the last query.
type fakeIndex struct {
	matches    []vectorindex.Match
	err        error
	lastLimit  int
	lastFilter vectorindex.Filter
	queries    int
}

func (f *fakeIndex) Create(ctx context.Context, tenantID uuid.UUID) error { return nil }
func (f *fakeIndex) Drop(ctx context.Context, tenantID uuid.UUID) error   { return nil }
func (f *fakeIndex) Add(ctx context.Context, tenantID uuid.UUID, docs []vectorindex.Document) error {
	return nil
}
func (f *fakeIndex) Upsert(ctx context.Context, tenantID uuid.UUID, docs []vectorindex.Document) error {
	return nil
}
func (f *fakeIndex) Delete(ctx context.Context, tenantID uuid.UUID, ids []string) error { return nil }
func (f *fakeIndex) Get(ctx context.Context, tenantID uuid.UUID, ids []string) ([]vectorindex.Document, error) {
	return nil, nil
}
func (f *fakeIndex) SetActiveByCategory(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID, active bool) (int64, error) {
	return 0, nil
}

func (f *fakeIndex) Query(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int, filter vectorindex.Filter) ([]vectorindex.Match, error) {
	f.queries++
	f.lastLimit = limit
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	if len(f.matches) > limit {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

// fakeReranker scores by a fixed map keyed on document text.
type fakeReranker struct {
	scores map[string]float64
	calls  int
	err    error
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, documents []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(documents))
	for i, doc := range documents {
		out[i] = f.scores[doc]
	}
	return out, nil
}

func (f *fakeReranker) Probe(ctx context.Context) error { return nil }

// memoryResultStore is an in-process ResultStore.
type memoryResultStore struct {
	entries map[string][]RetrievalResult
	sets    int
}

func newMemoryResultStore() *memoryResultStore {
	return &memoryResultStore{entries: map[string][]RetrievalResult{}}
}

func (m *memoryResultStore) Get(ctx context.Context, tenantID uuid.UUID, key string) ([]RetrievalResult, bool) {
	results, ok := m.entries[tenantID.String()+key]
	return results, ok
}

func (m *memoryResultStore) Set(ctx context.Context, tenantID uuid.UUID, key string, results []RetrievalResult) {
	m.sets++
	m.entries[tenantID.String()+key] = results
}

func (m *memoryResultStore) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) {
	for key := range m.entries {
		if len(key) >= 36 && key[:36] == tenantID.String() {
			delete(m.entries, key)
		}
	}
}

// fakeStateStore reports unit states from a map; missing ids return nil.
type fakeStateStore struct {
	states map[uuid.UUID]*entity.UnitState
	err    error
}

func (f *fakeStateStore) GetUnitState(ctx context.Context, contentID uuid.UUID) (*entity.UnitState, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.states[contentID], nil
}

// stubProvider returns the same vector for any text.
type stubProvider struct{}

func (stubProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}
func (stubProvider) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}
func (stubProvider) Probe(ctx context.Context) error { return nil }

func unitMatch(contentID uuid.UUID, title string, priority int, distance float64) vectorindex.Match {
	id := contentID
	return vectorindex.Match{
		Document: vectorindex.Document{
			ID:   vectorindex.UnitDocID(contentID),
			Text: title,
			Metadata: vectorindex.Metadata{
				Type:      vectorindex.TypeContentUnit,
				ContentID: &id,
				Title:     title,
				Priority:  priority,
				Active:    true,
			},
		},
		Distance: distance,
	}
}

func activeStates(ids ...uuid.UUID) map[uuid.UUID]*entity.UnitState {
	states := make(map[uuid.UUID]*entity.UnitState, len(ids))
	for _, id := range ids {
		states[id] = &entity.UnitState{State: entity.StateActive, Deleted: false}
	}
	return states
}

type engineFixture struct {
	engine   *Engine
	index    *fakeIndex
	reranker *fakeReranker
	results  *memoryResultStore
	states   *fakeStateStore
}

func newEngineFixture(matches []vectorindex.Match, states map[uuid.UUID]*entity.UnitState) *engineFixture {
	f := &engineFixture{
		index:    &fakeIndex{matches: matches},
		reranker: &fakeReranker{scores: map[string]float64{}},
		results:  newMemoryResultStore(),
		states:   &fakeStateStore{states: states},
	}
	f.engine = NewEngine(
		embedding.NewCache(stubProvider{}, 10),
		f.index,
		f.reranker,
		f.results,
		f.states,
		logger.NewNopLogger(),
	)
	return f
}

func TestSearchPriorityBoostOrdersEqualRelevance(t *testing.T) {
	lowID, highID := uuid.New(), uuid.New()
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(lowID, "library hours", 2, 0.5),
		unitMatch(highID, "library hours extended", 9, 0.5),
	}, activeStates(lowID, highID))

	results, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID:            uuid.New(),
		Query:               "library hours",
		NResults:            2,
		UsePriorityBoost:    true,
		PriorityBoostFactor: 0.1,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, &highID, results[0].ContentID, "higher priority must not rank below equal relevance")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchWithoutBoostUsesDistanceOnly(t *testing.T) {
	nearID, farID := uuid.New(), uuid.New()
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(nearID, "opening times", 1, 0.1),
		unitMatch(farID, "closing times", 10, 0.9),
	}, activeStates(nearID, farID))

	results, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID: uuid.New(),
		Query:    "opening times",
		NResults: 2,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, &nearID, results[0].ContentID)
	assert.InDelta(t, 1/(1+0.1), results[0].Score, 1e-9)
}

func TestSearchRerankingOverFetchesAndTruncates(t *testing.T) {
	ids := make([]uuid.UUID, 6)
	matches := make([]vectorindex.Match, 6)
	states := map[uuid.UUID]*entity.UnitState{}
	for i := range ids {
		ids[i] = uuid.New()
		matches[i] = unitMatch(ids[i], "doc", 1, 0.2+float64(i)*0.1)
		states[ids[i]] = &entity.UnitState{State: entity.StatePublished}
	}
	fixture := newEngineFixture(matches, states)

	results, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID:     uuid.New(),
		Query:        "doc",
		NResults:     2,
		UseReranking: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 6, fixture.index.lastLimit, "rerank pool must over-fetch 3x")
	assert.LessOrEqual(t, len(results), 2)
	assert.Equal(t, 1, fixture.reranker.calls)
	for _, result := range results {
		assert.True(t, result.Reranked)
		require.NotNil(t, result.RerankScore)
	}
}

func TestSearchRerankerScoreWinsOverDistance(t *testing.T) {
	nearID, farID := uuid.New(), uuid.New()
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(nearID, "near but weak", 1, 0.1),
		unitMatch(farID, "far but strong", 1, 0.8),
	}, activeStates(nearID, farID))
	fixture.reranker.scores = map[string]float64{
		"near but weak":  0.2,
		"far but strong": 0.95,
	}

	results, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID:     uuid.New(),
		Query:        "strong",
		NResults:     2,
		UseReranking: true,
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, &farID, results[0].ContentID)
	assert.Equal(t, 0.95, *results[0].RerankScore)
}

func TestSearchStalenessFilterDropsUnsearchable(t *testing.T) {
	activeID, deletedID, archivedID := uuid.New(), uuid.New(), uuid.New()
	states := map[uuid.UUID]*entity.UnitState{
		activeID:   {State: entity.StateActive},
		deletedID:  {State: entity.StateActive, Deleted: true},
		archivedID: {State: entity.StateArchived},
	}
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(activeID, "keep", 1, 0.1),
		unitMatch(deletedID, "dropped deleted", 1, 0.2),
		unitMatch(archivedID, "dropped archived", 1, 0.3),
	}, states)

	results, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID: uuid.New(),
		Query:    "keep",
		NResults: 3,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, &activeID, results[0].ContentID)
}

func TestSearchMissingUnitRowIsDropped(t *testing.T) {
	ghostID := uuid.New()
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(ghostID, "ghost", 1, 0.1),
	}, map[uuid.UUID]*entity.UnitState{})

	results, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID: uuid.New(),
		Query:    "ghost",
		NResults: 1,
	})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchCategoryEntriesBypassStalenessFilter(t *testing.T) {
	categoryID := uuid.New()
	categoryDoc := vectorindex.Match{
		Document: vectorindex.Document{
			ID:   vectorindex.CategoryDocID(categoryID),
			Text: "Loans",
			Metadata: vectorindex.Metadata{
				Type:       vectorindex.TypeCategory,
				CategoryID: categoryID,
				Title:      "Loans",
				Priority:   1,
				Active:     true,
			},
		},
		Distance: 0.2,
	}
	fixture := newEngineFixture([]vectorindex.Match{categoryDoc}, map[uuid.UUID]*entity.UnitState{})

	results, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID: uuid.New(),
		Query:    "loans",
		NResults: 1,
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].ContentID)
}

func TestSearchIncludeInactiveSkipsFilters(t *testing.T) {
	inactiveID := uuid.New()
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(inactiveID, "old hours", 5, 0.2),
	}, map[uuid.UUID]*entity.UnitState{
		inactiveID: {State: entity.StateInactive},
	})

	params := SearchParams{
		TenantID:        uuid.New(),
		Query:           "old hours",
		NResults:        1,
		IncludeInactive: true,
	}
	results, err := fixture.engine.Search(context.Background(), params)

	require.NoError(t, err)
	require.Len(t, results, 1)
	_, hasActiveFilter := fixture.index.lastFilter["active"]
	assert.False(t, hasActiveFilter, "include_inactive must not constrain the vector filter")

	params.IncludeInactive = false
	excluded, err := fixture.engine.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, excluded)
}

func TestSearchCacheHitSkipsRerankerAndIndex(t *testing.T) {
	contentID := uuid.New()
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(contentID, "library hours", 3, 0.1),
	}, activeStates(contentID))
	fixture.reranker.scores["library hours"] = 0.9

	params := SearchParams{
		TenantID:     uuid.New(),
		Query:        "library hours",
		NResults:     1,
		UseReranking: true,
	}
	ctx := context.Background()

	first, err := fixture.engine.Search(ctx, params)
	require.NoError(t, err)
	second, err := fixture.engine.Search(ctx, params)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fixture.reranker.calls, "cache hit must not re-invoke the reranker")
	assert.Equal(t, 1, fixture.index.queries)
	assert.Equal(t, 1, fixture.results.sets)
}

func TestSearchIndexErrorPropagates(t *testing.T) {
	fixture := newEngineFixture(nil, nil)
	fixture.index.err = errors.New("collection unavailable")

	_, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID: uuid.New(),
		Query:    "anything",
		NResults: 1,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector index query failed")
}

func TestSearchStateStoreErrorPropagates(t *testing.T) {
	contentID := uuid.New()
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(contentID, "doc", 1, 0.1),
	}, nil)
	fixture.states.err = errors.New("database down")

	_, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID: uuid.New(),
		Query:    "doc",
		NResults: 1,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "staleness check failed")
}

func TestSearchRerankerErrorPropagates(t *testing.T) {
	contentID := uuid.New()
	fixture := newEngineFixture([]vectorindex.Match{
		unitMatch(contentID, "doc", 1, 0.1),
	}, activeStates(contentID))
	fixture.reranker.err = errors.New("model overloaded")

	_, err := fixture.engine.Search(context.Background(), SearchParams{
		TenantID:     uuid.New(),
		Query:        "doc",
		NResults:     1,
		UseReranking: true,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reranking failed")
}

func TestCacheKeyVariesByInputs(t *testing.T) {
	tenantID := uuid.New()
	base := SearchParams{TenantID: tenantID, Query: "q", NResults: 4}

	variants := []SearchParams{
		{TenantID: uuid.New(), Query: "q", NResults: 4},
		{TenantID: tenantID, Query: "other", NResults: 4},
		{TenantID: tenantID, Query: "q", NResults: 5},
		{TenantID: tenantID, Query: "q", NResults: 4, UseReranking: true},
		{TenantID: tenantID, Query: "q", NResults: 4, IncludeInactive: true},
		{TenantID: tenantID, Query: "q", NResults: 4, SessionID: "s1"},
	}
	for _, variant := range variants {
		assert.NotEqual(t, base.CacheKey(), variant.CacheKey())
	}

	same := SearchParams{TenantID: tenantID, Query: "q", NResults: 4, UsePriorityBoost: true, PriorityBoostFactor: 0.3}
	assert.Equal(t, base.CacheKey(), same.CacheKey(), "boost settings do not partition the cache")
}
