package model

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ParentId    *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Description string     `gorm:"type:text"`
	Active      bool       `gorm:"default:true;index"`
	Deleted     bool       `gorm:"default:false;index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
}

func (Category) TableName() string {
	return "categories"
}
