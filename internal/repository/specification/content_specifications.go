package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByCategory filters content units by their category
type ByCategory struct {
	CategoryID uuid.UUID
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category_id = ?", s.CategoryID)
}

// StateIn filters content units by lifecycle state
type StateIn struct {
	States []string
}

func (s StateIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state IN ?", s.States)
}

// ActiveOnly filters categories by their active flag
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

// ByParent filters categories by parent node. A nil parent selects roots.
type ByParent struct {
	ParentID *uuid.UUID
}

func (s ByParent) Apply(db *gorm.DB) *gorm.DB {
	if s.ParentID == nil {
		return db.Where("parent_id IS NULL")
	}
	return db.Where("parent_id = ?", *s.ParentID)
}
