package entity

import (
	"time"

	"github.com/google/uuid"
)

// Bounds for the embedded rollup lists. Small enough that linear scans over
// them stay cheap.
const (
	RecentDocumentsBound     = 10
	RecentConversationsBound = 10
	MessagesPerDayBound      = 14
)

// StatusCounts is the three-way vectorization histogram for a tenant's
// documents.
type StatusCounts struct {
	Processing int `json:"processing"`
	Ready      int `json:"ready"`
	Error      int `json:"error"`
}

// ProjectDocCount is the per-project document rollup. ProjectId is nil for
// the "unassigned" bucket.
type ProjectDocCount struct {
	ProjectId   *uuid.UUID `json:"project_id"`
	ProjectName string     `json:"project_name"`
	Documents   int        `json:"documents"`
	Vectorized  int        `json:"vectorized"`
}

// DailyMessageCount is one entry of the per-day message time series, keyed by
// calendar date in YYYY-MM-DD form.
type DailyMessageCount struct {
	Date     string `json:"date"`
	Messages int    `json:"messages"`
}

type RecentDocument struct {
	Filename   string    `json:"filename"`
	Vectorized bool      `json:"vectorized"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type RecentConversation struct {
	Title     string    `json:"title"`
	Messages  int       `json:"messages"`
	StartedAt time.Time `json:"started_at"`
}

// AnalyticsSnapshot is the single denormalized analytics record per tenant.
// Eventually consistent: mutated in place by every ingestion or chat event,
// never recomputed from the source collections.
type AnalyticsSnapshot struct {
	Id                  uuid.UUID
	TenantId            uuid.UUID
	TotalDocuments      int
	TotalConversations  int
	TotalMessages       int
	TotalProjects       int
	TotalUsers          int
	DocumentsByStatus   StatusCounts
	ProjectDocCounts    []ProjectDocCount
	MessagesPerDay      []DailyMessageCount
	RecentDocuments     []RecentDocument
	RecentConversations []RecentConversation

	// Derived ratios, recomputed from the raw counters on every mutation so
	// they can never drift from their inputs.
	ProcessingRate      int // percent of documents vectorized
	AvgMessagesPerConv  int
	AvgDocumentsPerProj int

	CreatedAt time.Time
	UpdatedAt *time.Time
}
