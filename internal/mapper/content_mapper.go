package mapper

import (
	"time"

	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/model"
)

type ContentUnitMapper struct{}

func NewContentUnitMapper() *ContentUnitMapper {
	return &ContentUnitMapper{}
}

func (m *ContentUnitMapper) ToEntity(u *model.ContentUnit) *entity.ContentUnit {
	if u == nil {
		return nil
	}

	var updatedAt *time.Time
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		updatedAt = &t
	}

	return &entity.ContentUnit{
		Id:         u.Id,
		TenantId:   u.TenantId,
		CategoryId: u.CategoryId,
		Title:      u.Title,
		Body:       u.Body,
		Keywords:   u.Keywords,
		Priority:   u.Priority,
		State:      entity.ContentState(u.State),
		Deleted:    u.Deleted,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *ContentUnitMapper) ToModel(u *entity.ContentUnit) *model.ContentUnit {
	if u == nil {
		return nil
	}

	var updatedAt time.Time
	if u.UpdatedAt != nil {
		updatedAt = *u.UpdatedAt
	}

	return &model.ContentUnit{
		Id:         u.Id,
		TenantId:   u.TenantId,
		CategoryId: u.CategoryId,
		Title:      u.Title,
		Body:       u.Body,
		Keywords:   u.Keywords,
		Priority:   u.Priority,
		State:      string(u.State),
		Deleted:    u.Deleted,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *ContentUnitMapper) ToEntities(units []*model.ContentUnit) []*entity.ContentUnit {
	entities := make([]*entity.ContentUnit, len(units))
	for i, u := range units {
		entities[i] = m.ToEntity(u)
	}
	return entities
}
