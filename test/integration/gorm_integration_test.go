package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/model"
	"agent-chatbot-be/internal/repository/implementation"
	"agent-chatbot-be/pkg/database"
	"agent-chatbot-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	require.NoError(t, gormDB.AutoMigrate(&model.Category{}, &model.ContentUnit{}))
	return gormDB
}

func TestContentRepositories(t *testing.T) {
	gormDB := openTestDB(t)
	ctx := context.Background()

	contentRepo := implementation.NewContentRepository(gormDB)
	categoryRepo := implementation.NewCategoryRepository(gormDB)

	tenantID := uuid.New()
	category := &entity.CategoryNode{
		Id:       uuid.New(),
		TenantId: tenantID,
		Name:     "Integration FAQ",
		Active:   true,
	}
	require.NoError(t, categoryRepo.Create(ctx, category))

	unit := &entity.ContentUnit{
		Id:         uuid.New(),
		TenantId:   tenantID,
		CategoryId: category.Id,
		Title:      "Integration hours",
		Body:       "Open from nine to five",
		Keywords:   "hours, opening",
		Priority:   7,
		State:      entity.StateActive,
	}
	require.NoError(t, contentRepo.Create(ctx, unit))

	t.Run("Check Unit State Lookup", func(t *testing.T) {
		state, err := contentRepo.GetUnitState(ctx, unit.Id)
		require.NoError(t, err)
		require.NotNil(t, state)
		assert.True(t, state.Searchable())

		missing, err := contentRepo.GetUnitState(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("Check Searchable Listing", func(t *testing.T) {
		units, err := contentRepo.ListSearchable(ctx, category.Id)
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, unit.Id, units[0].Id)

		// Archived unit must drop out of the searchable set.
		unit.State = entity.StateArchived
		require.NoError(t, contentRepo.Update(ctx, unit))

		units, err = contentRepo.ListSearchable(ctx, category.Id)
		require.NoError(t, err)
		assert.Empty(t, units)
	})

	t.Run("Check Tenant Listing", func(t *testing.T) {
		tenants, err := categoryRepo.ListTenants(ctx)
		require.NoError(t, err)
		assert.Contains(t, tenants, tenantID)
	})
}

func TestPgvectorIndexRoundTrip(t *testing.T) {
	gormDB := openTestDB(t)
	require.NoError(t, vectorindex.MigratePgvector(gormDB))

	ctx := context.Background()
	index := vectorindex.NewPgvectorIndex(gormDB)
	tenantID := uuid.New()
	t.Cleanup(func() {
		_ = index.Drop(context.Background(), tenantID)
	})

	contentID := uuid.New()
	categoryID := uuid.New()
	embeddingVec := make([]float32, 768)
	embeddingVec[0] = 1

	doc := vectorindex.Document{
		ID:        vectorindex.UnitDocID(contentID),
		Text:      "Title: Integration hours",
		Embedding: embeddingVec,
		Metadata: vectorindex.Metadata{
			Type:       vectorindex.TypeContentUnit,
			ContentID:  &contentID,
			CategoryID: categoryID,
			Title:      "Integration hours",
			Priority:   7,
			Active:     true,
		},
	}
	require.NoError(t, index.Upsert(ctx, tenantID, []vectorindex.Document{doc}))

	t.Run("Check Get By Deterministic Id", func(t *testing.T) {
		docs, err := index.Get(ctx, tenantID, []string{doc.ID})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, doc.Text, docs[0].Text)
		assert.Equal(t, 7, docs[0].Metadata.Priority)
	})

	t.Run("Check Add Rejects Duplicate", func(t *testing.T) {
		err := index.Add(ctx, tenantID, []vectorindex.Document{doc})
		assert.ErrorIs(t, err, vectorindex.ErrDocumentExists)
	})

	t.Run("Check Filtered Query", func(t *testing.T) {
		matches, err := index.Query(ctx, tenantID, embeddingVec, 5, vectorindex.Filter{
			"type":   vectorindex.TypeContentUnit,
			"active": true,
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.InDelta(t, 0, matches[0].Distance, 1e-6)
	})

	t.Run("Check Cascade Toggle", func(t *testing.T) {
		affected, err := index.SetActiveByCategory(ctx, tenantID, []uuid.UUID{categoryID}, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		matches, err := index.Query(ctx, tenantID, embeddingVec, 5, vectorindex.Filter{"active": true})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("Check Tenant Isolation", func(t *testing.T) {
		otherTenant := uuid.New()
		matches, err := index.Query(ctx, otherTenant, embeddingVec, 5, nil)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})
}
