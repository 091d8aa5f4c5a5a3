package service

import (
	"context"
	"testing"

	"agent-chatbot-be/internal/dto"
	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/pkg/serverutils"
	"agent-chatbot-be/internal/repository/specification"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContentStore records writes and serves unit states from a map.
type fakeContentStore struct {
	states  map[uuid.UUID]*entity.UnitState
	created []*entity.ContentUnit
	updated []*entity.ContentUnit
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{states: map[uuid.UUID]*entity.UnitState{}}
}

func (f *fakeContentStore) Create(ctx context.Context, unit *entity.ContentUnit) error {
	f.created = append(f.created, unit)
	return nil
}

func (f *fakeContentStore) Update(ctx context.Context, unit *entity.ContentUnit) error {
	f.updated = append(f.updated, unit)
	return nil
}

func (f *fakeContentStore) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContentUnit, error) {
	return nil, nil
}

func (f *fakeContentStore) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContentUnit, error) {
	return nil, nil
}

func (f *fakeContentStore) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (f *fakeContentStore) GetUnitState(ctx context.Context, id uuid.UUID) (*entity.UnitState, error) {
	return f.states[id], nil
}

func (f *fakeContentStore) ListSearchable(ctx context.Context, categoryID uuid.UUID) ([]*entity.ContentUnit, error) {
	return nil, nil
}

func TestResolveUnitDefaults(t *testing.T) {
	contents := newFakeContentStore()
	svc := &knowledgeService{contents: contents}
	tenantID := uuid.New()

	t.Run("Check Mid Range Priority Default", func(t *testing.T) {
		unit, err := svc.resolveUnit(context.Background(), tenantID, &dto.IngestContentRequest{
			CategoryId: uuid.New(),
			Title:      "Opening hours",
			Body:       "Open from nine to five",
		})
		require.NoError(t, err)
		assert.Equal(t, 5, unit.Priority)
		assert.Equal(t, entity.StateActive, unit.State)
		assert.NotEqual(t, uuid.Nil, unit.Id)
		require.Len(t, contents.created, 1)
	})

	t.Run("Check Explicit Priority And State Kept", func(t *testing.T) {
		unit, err := svc.resolveUnit(context.Background(), tenantID, &dto.IngestContentRequest{
			CategoryId: uuid.New(),
			Title:      "Refund policy",
			Body:       "Refunds within 30 days",
			Priority:   9,
			State:      string(entity.StateDraft),
		})
		require.NoError(t, err)
		assert.Equal(t, 9, unit.Priority)
		assert.Equal(t, entity.StateDraft, unit.State)
	})

	t.Run("Check Update Of Missing Unit Fails", func(t *testing.T) {
		missingID := uuid.New()
		_, err := svc.resolveUnit(context.Background(), tenantID, &dto.IngestContentRequest{
			Id:         &missingID,
			CategoryId: uuid.New(),
			Title:      "Ghost",
			Body:       "Does not exist",
		})
		require.Error(t, err)
		httpErr, ok := err.(*serverutils.HttpError)
		require.True(t, ok)
		assert.Equal(t, fiber.StatusNotFound, httpErr.Code)
	})

	t.Run("Check Update Path Persists", func(t *testing.T) {
		existingID := uuid.New()
		contents.states[existingID] = &entity.UnitState{State: entity.StateActive}

		unit, err := svc.resolveUnit(context.Background(), tenantID, &dto.IngestContentRequest{
			Id:         &existingID,
			CategoryId: uuid.New(),
			Title:      "Holiday closures",
			Body:       "Closed on holidays",
		})
		require.NoError(t, err)
		assert.Equal(t, existingID, unit.Id)
		assert.Equal(t, 5, unit.Priority)
		require.NotNil(t, unit.UpdatedAt)
		require.Len(t, contents.updated, 1)
	})
}
