package model

import (
	"time"

	"github.com/google/uuid"
)

type ContentUnit struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId   uuid.UUID `gorm:"type:uuid;not null;index:idx_tenant_state_priority"`
	CategoryId uuid.UUID `gorm:"type:uuid;not null;index"`
	Title      string    `gorm:"type:varchar(200);not null"`
	Body       string    `gorm:"type:text;not null"`
	Keywords   string    `gorm:"type:text"`
	Priority   int       `gorm:"default:5;index:idx_tenant_state_priority"`
	State      string    `gorm:"type:varchar(20);default:'draft';index:idx_tenant_state_priority"`
	// Soft delete is an explicit flag, not gorm.DeletedAt: the staleness
	// filter must still be able to read deleted rows.
	Deleted   bool      `gorm:"default:false;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ContentUnit) TableName() string {
	return "content_units"
}
