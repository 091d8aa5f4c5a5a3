package mapper

import (
	"agent-chatbot-be/internal/entity"
	"agent-chatbot-be/internal/model"
)

type CategoryMapper struct{}

func NewCategoryMapper() *CategoryMapper {
	return &CategoryMapper{}
}

func (m *CategoryMapper) ToEntity(c *model.Category) *entity.CategoryNode {
	if c == nil {
		return nil
	}

	return &entity.CategoryNode{
		Id:          c.Id,
		TenantId:    c.TenantId,
		ParentId:    c.ParentId,
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		Deleted:     c.Deleted,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *CategoryMapper) ToModel(c *entity.CategoryNode) *model.Category {
	if c == nil {
		return nil
	}

	return &model.Category{
		Id:          c.Id,
		TenantId:    c.TenantId,
		ParentId:    c.ParentId,
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		Deleted:     c.Deleted,
		CreatedAt:   c.CreatedAt,
	}
}

func (m *CategoryMapper) ToEntities(categories []*model.Category) []*entity.CategoryNode {
	entities := make([]*entity.CategoryNode, len(categories))
	for i, c := range categories {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
