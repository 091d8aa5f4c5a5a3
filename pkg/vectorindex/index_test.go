package vectorindex

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDocIDsAreDeterministic(t *testing.T) {
	id := uuid.MustParse("7d5a1a37-1f0a-4a34-9d29-2f8a0e2ecb11")

	assert.Equal(t, "unit_7d5a1a37-1f0a-4a34-9d29-2f8a0e2ecb11", UnitDocID(id))
	assert.Equal(t, "category_7d5a1a37-1f0a-4a34-9d29-2f8a0e2ecb11", CategoryDocID(id))
	assert.NotEqual(t, UnitDocID(id), CategoryDocID(id))
}

func TestPointIDStableAcrossCalls(t *testing.T) {
	docID := UnitDocID(uuid.New())

	first := pointID(docID)
	second := pointID(docID)

	assert.Equal(t, first.GetUuid(), second.GetUuid())
	assert.NotEqual(t, first.GetUuid(), pointID(CategoryDocID(uuid.New())).GetUuid())
}

func TestBuildConditionsRejectsUnknownField(t *testing.T) {
	_, err := buildConditions(Filter{"priority": 5})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFilter))
}

func TestBuildConditionsRejectsNonBoolActive(t *testing.T) {
	_, err := buildConditions(Filter{"active": "yes"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFilter))
}

func TestBuildConditionsTranslatesSupportedFields(t *testing.T) {
	conditions, err := buildConditions(Filter{
		"type":        TypeContentUnit,
		"active":      true,
		"category_id": uuid.New().String(),
	})

	assert.NoError(t, err)
	assert.Len(t, conditions, 3)
}

func TestCollectionNamePerTenant(t *testing.T) {
	tenantA := uuid.New()
	tenantB := uuid.New()

	assert.Equal(t, "agent_"+tenantA.String(), collectionName(tenantA))
	assert.NotEqual(t, collectionName(tenantA), collectionName(tenantB))
}
