package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalyticsSnapshot holds one denormalized rollup row per tenant. The unique
// index on tenant_id is what makes the lazy "ensure" operation idempotent
// under concurrent inserts.
type AnalyticsSnapshot struct {
	Id       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	TotalDocuments     int `gorm:"not null;default:0"`
	TotalConversations int `gorm:"not null;default:0"`
	TotalMessages      int `gorm:"not null;default:0"`
	TotalProjects      int `gorm:"not null;default:0"`
	TotalUsers         int `gorm:"not null;default:0"`

	DocsProcessing int `gorm:"not null;default:0"`
	DocsReady      int `gorm:"not null;default:0"`
	DocsError      int `gorm:"not null;default:0"`

	ProjectDocCounts    datatypes.JSON `gorm:"type:jsonb"`
	MessagesPerDay      datatypes.JSON `gorm:"type:jsonb"`
	RecentDocuments     datatypes.JSON `gorm:"type:jsonb"`
	RecentConversations datatypes.JSON `gorm:"type:jsonb"`

	ProcessingRate      int `gorm:"not null;default:0"`
	AvgMessagesPerConv  int `gorm:"not null;default:0"`
	AvgDocumentsPerProj int `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (AnalyticsSnapshot) TableName() string {
	return "analytics_snapshots"
}
