package model

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId  uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProjectId *uuid.UUID `gorm:"type:uuid;index"`
	Title     string     `gorm:"type:varchar(255)"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}
