package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docpilot-be/internal/dto"
	"docpilot-be/internal/entity"
	"docpilot-be/internal/pkg/logger"
	"docpilot-be/internal/pkg/metrics"
	"docpilot-be/internal/repository/specification"
	"docpilot-be/internal/repository/unitofwork"
	"docpilot-be/pkg/analytics"
	"docpilot-be/pkg/events"
	pkgNats "docpilot-be/pkg/nats"
	"docpilot-be/pkg/vectorstore"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// listDocumentsLimit caps the unpaged document listing.
const listDocumentsLimit = 200

type IDocumentService interface {
	Create(ctx context.Context, tenantId, userId uuid.UUID, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	Show(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, tenantId uuid.UUID, projectId *uuid.UUID) ([]*dto.ListDocumentsResponse, error)
	Rename(ctx context.Context, tenantId uuid.UUID, req *dto.RenameDocumentRequest) error
	Delete(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.DeleteDocumentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	vectorStore      *vectorstore.Adapter
	aggregator       *analytics.Aggregator
	eventPublisher   *pkgNats.Publisher
	collector        metrics.Collector
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	vectorStore *vectorstore.Adapter,
	aggregator *analytics.Aggregator,
	eventPublisher *pkgNats.Publisher,
	collector metrics.Collector,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		vectorStore:      vectorStore,
		aggregator:       aggregator,
		eventPublisher:   eventPublisher,
		collector:        collector,
		logger:           log,
	}
}

func (s *documentService) Create(ctx context.Context, tenantId, userId uuid.UUID, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var projectName string
	if req.ProjectId != nil {
		project, err := uow.ProjectRepository().FindOne(ctx,
			specification.ByID{ID: *req.ProjectId},
			specification.TenantOwnedBy{TenantID: tenantId},
		)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, fiber.NewError(fiber.StatusNotFound, "Project not found")
		}
		projectName = project.Name
	}

	doc := entity.Document{
		Id:           uuid.New(),
		TenantId:     tenantId,
		ProjectId:    req.ProjectId,
		Filename:     req.Filename,
		Content:      req.Content,
		VectorStatus: entity.VectorStatusPending,
		SizeBytes:    int64(len(req.Content)),
		CreatedAt:    time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &doc); err != nil {
		return nil, err
	}

	msgJson, err := json.Marshal(dto.PublishEmbedDocumentMessage{
		DocumentId: doc.Id,
		TenantId:   tenantId,
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, fmt.Errorf("queue embed job: %w", err)
	}

	s.collector.DocumentIngested(tenantId.String())

	// Best effort from here on; the upload already succeeded.
	if err := s.aggregator.RecordDocument(ctx, tenantId, doc.Filename, false, req.ProjectId, projectName); err != nil {
		s.logger.Warn("DocumentService", "Analytics update skipped", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
	}
	s.publishAudit(ctx, userId, tenantId, "DOCUMENT_UPLOADED", doc.Id.String())

	return &dto.UploadDocumentResponse{
		Id:           doc.Id,
		VectorStatus: string(doc.VectorStatus),
	}, nil
}

func (s *documentService) Show(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	return &dto.ShowDocumentResponse{
		Id:           doc.Id,
		Filename:     doc.Filename,
		ProjectId:    doc.ProjectId,
		Size:         int(doc.SizeBytes),
		VectorStatus: string(doc.VectorStatus),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (s *documentService) List(ctx context.Context, tenantId uuid.UUID, projectId *uuid.UUID) ([]*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: listDocumentsLimit},
	}
	if projectId != nil {
		specs = append(specs, specification.ByProjectID{ProjectID: *projectId})
	}

	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ListDocumentsResponse, len(docs))
	for i, doc := range docs {
		res[i] = &dto.ListDocumentsResponse{
			Id:           doc.Id,
			Filename:     doc.Filename,
			ProjectId:    doc.ProjectId,
			Size:         int(doc.SizeBytes),
			VectorStatus: string(doc.VectorStatus),
			CreatedAt:    doc.CreatedAt,
		}
	}
	return res, nil
}

func (s *documentService) Rename(ctx context.Context, tenantId uuid.UUID, req *dto.RenameDocumentRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return err
	}
	if doc == nil {
		return fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	doc.Filename = req.Filename
	now := time.Now()
	doc.UpdatedAt = &now
	return uow.DocumentRepository().Update(ctx, doc)
}

// Delete removes the document record and its vectors. Vector cleanup is best
// effort: a vector store failure is warn-logged and the primary delete still
// goes through, so a sick vector store can never strand document records.
func (s *documentService) Delete(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.DeleteDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Document not found")
	}

	vectorsDeleted, err := s.vectorStore.DeleteByDocument(ctx, id, tenantId)
	if err != nil {
		s.logger.Warn("DocumentService", "Vector cleanup failed, chunks may be orphaned", map[string]interface{}{
			"document_id": id,
			"tenant_id":   tenantId,
			"error":       err.Error(),
		})
	}

	if err := uow.DocumentRepository().Delete(ctx, id, tenantId); err != nil {
		return nil, err
	}

	s.publishAudit(ctx, uuid.Nil, tenantId, "DOCUMENT_DELETED", id.String())

	return &dto.DeleteDocumentResponse{
		Id:             id,
		VectorsDeleted: vectorsDeleted,
	}, nil
}

func (s *documentService) publishAudit(ctx context.Context, actor, tenantId uuid.UUID, action, target string) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.NewAudit(action, actor.String(), tenantId.String(), target))
	if err != nil {
		s.logger.Warn("DocumentService", "Audit event not published", map[string]interface{}{
			"action": action,
			"target": target,
			"error":  err.Error(),
		})
	}
}
