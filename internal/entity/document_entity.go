package entity

import (
	"time"

	"github.com/google/uuid"
)

type VectorStatus string

const (
	VectorStatusPending VectorStatus = "pending"
	VectorStatusReady   VectorStatus = "ready"
	VectorStatusError   VectorStatus = "error"
)

type Document struct {
	Id           uuid.UUID
	TenantId     uuid.UUID
	ProjectId    *uuid.UUID
	Filename     string
	Content      string
	VectorStatus VectorStatus
	SizeBytes    int64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
