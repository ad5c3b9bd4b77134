package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProjectId    *uuid.UUID `gorm:"type:uuid;index"`
	Filename     string     `gorm:"type:varchar(255);not null"`
	Content      string     `gorm:"type:text"`
	VectorStatus string     `gorm:"type:varchar(16);not null;default:'pending'"`
	SizeBytes    int64      `gorm:"not null;default:0"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
