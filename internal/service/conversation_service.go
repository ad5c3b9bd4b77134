package service

import (
	"context"

	"docpilot-be/internal/dto"
	"docpilot-be/internal/repository/specification"
	"docpilot-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// listConversationsLimit caps the unpaged conversation listing.
const listConversationsLimit = 100

type IConversationService interface {
	List(ctx context.Context, tenantId, userId uuid.UUID) ([]*dto.GetConversationResponse, error)
	History(ctx context.Context, tenantId, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	Delete(ctx context.Context, tenantId, userId uuid.UUID, conversationId uuid.UUID) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory) IConversationService {
	return &conversationService{uowFactory: uowFactory}
}

func (s *conversationService) List(ctx context.Context, tenantId, userId uuid.UUID) ([]*dto.GetConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	convs, err := uow.ConversationRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: listConversationsLimit},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetConversationResponse, len(convs))
	for i, c := range convs {
		res[i] = &dto.GetConversationResponse{
			Id:        c.Id,
			Title:     c.Title,
			ProjectId: c.ProjectId,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	return res, nil
}

func (s *conversationService) History(ctx context.Context, tenantId, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Conversation not found")
	}

	msgs, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, len(msgs))
	for i, m := range msgs {
		res[i] = &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}
	return res, nil
}

func (s *conversationService) Delete(ctx context.Context, tenantId, userId uuid.UUID, conversationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conv, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.TenantOwnedBy{TenantID: tenantId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if conv == nil {
		return fiber.NewError(fiber.StatusNotFound, "Conversation not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByConversationId(ctx, conversationId); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversationId, tenantId); err != nil {
		return err
	}

	return uow.Commit()
}
