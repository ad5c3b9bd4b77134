package service

import (
	"context"
	"time"

	"docpilot-be/internal/dto"
	"docpilot-be/internal/entity"
	"docpilot-be/internal/pkg/logger"
	"docpilot-be/internal/repository/specification"
	"docpilot-be/internal/repository/unitofwork"
	"docpilot-be/pkg/vectorstore"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProjectService interface {
	Create(ctx context.Context, tenantId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	List(ctx context.Context, tenantId uuid.UUID) ([]*dto.ListProjectsResponse, error)
	Delete(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.DeleteProjectResponse, error)
}

type projectService struct {
	uowFactory  unitofwork.RepositoryFactory
	vectorStore *vectorstore.Adapter
	logger      logger.ILogger
}

func NewProjectService(
	uowFactory unitofwork.RepositoryFactory,
	vectorStore *vectorstore.Adapter,
	log logger.ILogger,
) IProjectService {
	return &projectService{
		uowFactory:  uowFactory,
		vectorStore: vectorStore,
		logger:      log,
	}
}

func (s *projectService) Create(ctx context.Context, tenantId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project := entity.Project{
		Id:        uuid.New(),
		TenantId:  tenantId,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}
	if err := uow.ProjectRepository().Create(ctx, &project); err != nil {
		return nil, err
	}

	return &dto.CreateProjectResponse{Id: project.Id}, nil
}

func (s *projectService) List(ctx context.Context, tenantId uuid.UUID) ([]*dto.ListProjectsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ListProjectsResponse, len(projects))
	for i, p := range projects {
		res[i] = &dto.ListProjectsResponse{
			Id:        p.Id,
			Name:      p.Name,
			CreatedAt: p.CreatedAt,
		}
	}
	return res, nil
}

// Delete removes the project, its documents, and their vectors. Vector
// cleanup is best effort: the primary records always go, a vector store
// failure only leaves orphaned chunks behind a warning.
func (s *projectService) Delete(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.DeleteProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Project not found")
	}

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: id},
		specification.TenantOwnedBy{TenantID: tenantId},
	)
	if err != nil {
		return nil, err
	}

	documentIds := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		documentIds[i] = d.Id
	}

	var vectorsDeleted int64
	if len(documentIds) > 0 {
		vectorsDeleted, err = s.vectorStore.DeleteByProject(ctx, id, tenantId, documentIds)
		if err != nil {
			s.logger.Warn("ProjectService", "Vector cleanup failed, chunks may be orphaned", map[string]interface{}{
				"project_id": id,
				"tenant_id":  tenantId,
				"error":      err.Error(),
			})
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	for _, d := range docs {
		if err := uow.DocumentRepository().Delete(ctx, d.Id, tenantId); err != nil {
			return nil, err
		}
	}
	if err := uow.ProjectRepository().Delete(ctx, id, tenantId); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.DeleteProjectResponse{
		Id:               id,
		DocumentsDeleted: len(docs),
		VectorsDeleted:   vectorsDeleted,
	}, nil
}
