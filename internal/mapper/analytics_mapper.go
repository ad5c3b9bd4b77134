package mapper

import (
	"encoding/json"
	"time"

	"docpilot-be/internal/entity"
	"docpilot-be/internal/model"

	"gorm.io/datatypes"
)

// AnalyticsMapper converts between the snapshot entity and its storage row.
// The bounded rollup lists live in jsonb columns, so the mapper owns their
// (de)serialization.
type AnalyticsMapper struct{}

func NewAnalyticsMapper() *AnalyticsMapper {
	return &AnalyticsMapper{}
}

func (m *AnalyticsMapper) ToEntity(s *model.AnalyticsSnapshot) *entity.AnalyticsSnapshot {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	e := &entity.AnalyticsSnapshot{
		Id:                 s.Id,
		TenantId:           s.TenantId,
		TotalDocuments:     s.TotalDocuments,
		TotalConversations: s.TotalConversations,
		TotalMessages:      s.TotalMessages,
		TotalProjects:      s.TotalProjects,
		TotalUsers:         s.TotalUsers,
		DocumentsByStatus: entity.StatusCounts{
			Processing: s.DocsProcessing,
			Ready:      s.DocsReady,
			Error:      s.DocsError,
		},
		ProcessingRate:      s.ProcessingRate,
		AvgMessagesPerConv:  s.AvgMessagesPerConv,
		AvgDocumentsPerProj: s.AvgDocumentsPerProj,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           updatedAt,
	}

	// Corrupt or absent jsonb payloads decode to empty lists rather than
	// failing the read.
	_ = json.Unmarshal(s.ProjectDocCounts, &e.ProjectDocCounts)
	_ = json.Unmarshal(s.MessagesPerDay, &e.MessagesPerDay)
	_ = json.Unmarshal(s.RecentDocuments, &e.RecentDocuments)
	_ = json.Unmarshal(s.RecentConversations, &e.RecentConversations)

	return e
}

func (m *AnalyticsMapper) ToModel(e *entity.AnalyticsSnapshot) *model.AnalyticsSnapshot {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.AnalyticsSnapshot{
		Id:                  e.Id,
		TenantId:            e.TenantId,
		TotalDocuments:      e.TotalDocuments,
		TotalConversations:  e.TotalConversations,
		TotalMessages:       e.TotalMessages,
		TotalProjects:       e.TotalProjects,
		TotalUsers:          e.TotalUsers,
		DocsProcessing:      e.DocumentsByStatus.Processing,
		DocsReady:           e.DocumentsByStatus.Ready,
		DocsError:           e.DocumentsByStatus.Error,
		ProjectDocCounts:    mustJSON(e.ProjectDocCounts),
		MessagesPerDay:      mustJSON(e.MessagesPerDay),
		RecentDocuments:     mustJSON(e.RecentDocuments),
		RecentConversations: mustJSON(e.RecentConversations),
		ProcessingRate:      e.ProcessingRate,
		AvgMessagesPerConv:  e.AvgMessagesPerConv,
		AvgDocumentsPerProj: e.AvgDocumentsPerProj,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}
