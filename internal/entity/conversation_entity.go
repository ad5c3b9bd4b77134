package entity

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	Id        uuid.UUID
	TenantId  uuid.UUID
	UserId    uuid.UUID
	ProjectId *uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
