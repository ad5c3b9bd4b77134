package service

import (
	"context"

	"docpilot-be/internal/dto"
	"docpilot-be/internal/entity"
	"docpilot-be/internal/pkg/metrics"
	"docpilot-be/pkg/analytics"

	"github.com/google/uuid"
)

type IAnalyticsService interface {
	GetSnapshot(ctx context.Context, tenantId uuid.UUID) (*dto.AnalyticsSnapshotResponse, error)
	RecordUser(ctx context.Context, tenantId uuid.UUID) error
}

type analyticsService struct {
	aggregator *analytics.Aggregator
	collector  metrics.Collector
}

func NewAnalyticsService(aggregator *analytics.Aggregator, collector metrics.Collector) IAnalyticsService {
	return &analyticsService{
		aggregator: aggregator,
		collector:  collector,
	}
}

func (s *analyticsService) GetSnapshot(ctx context.Context, tenantId uuid.UUID) (*dto.AnalyticsSnapshotResponse, error) {
	snap, err := s.aggregator.GetSnapshot(ctx, tenantId)
	if err != nil {
		return nil, err
	}
	return toSnapshotResponse(snap), nil
}

func (s *analyticsService) RecordUser(ctx context.Context, tenantId uuid.UUID) error {
	if err := s.aggregator.RecordUser(ctx, tenantId); err != nil {
		return err
	}
	s.collector.AnalyticsUpdate("record_user")
	return nil
}

func toSnapshotResponse(snap *entity.AnalyticsSnapshot) *dto.AnalyticsSnapshotResponse {
	res := &dto.AnalyticsSnapshotResponse{
		TotalDocuments:     snap.TotalDocuments,
		TotalConversations: snap.TotalConversations,
		TotalMessages:      snap.TotalMessages,
		TotalProjects:      snap.TotalProjects,
		TotalUsers:         snap.TotalUsers,
		DocumentsByStatus: dto.StatusCountsDTO{
			Processing: snap.DocumentsByStatus.Processing,
			Ready:      snap.DocumentsByStatus.Ready,
			Error:      snap.DocumentsByStatus.Error,
		},
		ProjectDocCounts:    make([]dto.ProjectDocCountDTO, len(snap.ProjectDocCounts)),
		MessagesPerDay:      make([]dto.DailyMessageCountDTO, len(snap.MessagesPerDay)),
		RecentDocuments:     make([]dto.RecentDocumentDTO, len(snap.RecentDocuments)),
		RecentConversations: make([]dto.RecentConversationDTO, len(snap.RecentConversations)),
		ProcessingRate:      snap.ProcessingRate,
		AvgMessagesPerConv:  snap.AvgMessagesPerConv,
		AvgDocumentsPerProj: snap.AvgDocumentsPerProj,
		UpdatedAt:           snap.UpdatedAt,
	}

	for i, p := range snap.ProjectDocCounts {
		res.ProjectDocCounts[i] = dto.ProjectDocCountDTO{
			ProjectId:   p.ProjectId,
			ProjectName: p.ProjectName,
			Documents:   p.Documents,
			Vectorized:  p.Vectorized,
		}
	}
	for i, d := range snap.MessagesPerDay {
		res.MessagesPerDay[i] = dto.DailyMessageCountDTO{Date: d.Date, Messages: d.Messages}
	}
	for i, d := range snap.RecentDocuments {
		res.RecentDocuments[i] = dto.RecentDocumentDTO{
			Filename:   d.Filename,
			Vectorized: d.Vectorized,
			UploadedAt: d.UploadedAt,
		}
	}
	for i, c := range snap.RecentConversations {
		res.RecentConversations[i] = dto.RecentConversationDTO{
			Title:     c.Title,
			Messages:  c.Messages,
			StartedAt: c.StartedAt,
		}
	}
	return res
}
