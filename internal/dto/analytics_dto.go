package dto

import (
	"time"

	"github.com/google/uuid"
)

type StatusCountsDTO struct {
	Processing int `json:"processing"`
	Ready      int `json:"ready"`
	Error      int `json:"error"`
}

type ProjectDocCountDTO struct {
	ProjectId   *uuid.UUID `json:"project_id"`
	ProjectName string     `json:"project_name"`
	Documents   int        `json:"documents"`
	Vectorized  int        `json:"vectorized"`
}

type DailyMessageCountDTO struct {
	Date     string `json:"date"`
	Messages int    `json:"messages"`
}

type RecentDocumentDTO struct {
	Filename   string    `json:"filename"`
	Vectorized bool      `json:"vectorized"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type RecentConversationDTO struct {
	Title     string    `json:"title"`
	Messages  int       `json:"messages"`
	StartedAt time.Time `json:"started_at"`
}

type AnalyticsSnapshotResponse struct {
	TotalDocuments      int                     `json:"total_documents"`
	TotalConversations  int                     `json:"total_conversations"`
	TotalMessages       int                     `json:"total_messages"`
	TotalProjects       int                     `json:"total_projects"`
	TotalUsers          int                     `json:"total_users"`
	DocumentsByStatus   StatusCountsDTO         `json:"documents_by_status"`
	ProjectDocCounts    []ProjectDocCountDTO    `json:"project_doc_counts"`
	MessagesPerDay      []DailyMessageCountDTO  `json:"messages_per_day"`
	RecentDocuments     []RecentDocumentDTO     `json:"recent_documents"`
	RecentConversations []RecentConversationDTO `json:"recent_conversations"`
	ProcessingRate      int                     `json:"processing_rate"`
	AvgMessagesPerConv  int                     `json:"avg_messages_per_conversation"`
	AvgDocumentsPerProj int                     `json:"avg_documents_per_project"`
	UpdatedAt           *time.Time              `json:"updated_at"`
}

type RecordUserRequest struct {
	TenantId uuid.UUID `json:"tenant_id" validate:"required"`
}
