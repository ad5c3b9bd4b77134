package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docpilot-be/internal/dto"
	"docpilot-be/internal/entity"
	"docpilot-be/internal/pkg/logger"
	"docpilot-be/internal/pkg/metrics"
	"docpilot-be/internal/repository/specification"
	"docpilot-be/internal/repository/unitofwork"
	"docpilot-be/pkg/analytics"
	"docpilot-be/pkg/events"
	"docpilot-be/pkg/llm"
	pkgNats "docpilot-be/pkg/nats"
	"docpilot-be/pkg/retrieval"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const conversationTitleMax = 80

const systemPromptWithContext = `You are a document assistant for an organization. Answer using the provided document excerpts when they are relevant. If the excerpts do not cover the question, say so and answer from general knowledge.

Document excerpts:
%s`

const systemPromptNoContext = `You are a document assistant for an organization. No relevant document excerpts were found for this question; answer from general knowledge and mention that nothing in the uploaded documents covers it.`

// StreamEmitter delivers one event to the caller's transport. Returning an
// error means the caller is gone and generation should stop.
type StreamEmitter func(event dto.StreamEvent) error

// ContextBuilder is the slice of the retrieval engine the chat turn needs.
type ContextBuilder interface {
	BuildContext(ctx context.Context, query string, tenantId uuid.UUID, topK int) (string, error)
}

type IChatService interface {
	// StreamChat runs one chat turn: retrieve context, stream the answer
	// through emit, persist the finished exchange. The terminal sentinel is
	// the transport's job, not this method's.
	StreamChat(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SendChatRequest, emit StreamEmitter) error
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	retriever      ContextBuilder
	llmProvider    llm.Provider
	aggregator     *analytics.Aggregator
	eventPublisher *pkgNats.Publisher
	collector      metrics.Collector
	logger         logger.ILogger
	topK           int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	retriever ContextBuilder,
	llmProvider llm.Provider,
	aggregator *analytics.Aggregator,
	eventPublisher *pkgNats.Publisher,
	collector metrics.Collector,
	log logger.ILogger,
	topK int,
) IChatService {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	return &chatService{
		uowFactory:     uowFactory,
		retriever:      retriever,
		llmProvider:    llmProvider,
		aggregator:     aggregator,
		eventPublisher: eventPublisher,
		collector:      collector,
		logger:         log,
		topK:           topK,
	}
}

func (s *chatService) StreamChat(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SendChatRequest, emit StreamEmitter) error {
	started := time.Now()
	s.collector.ChatStreamStarted()

	outcome, err := s.streamChat(ctx, tenantId, userId, req, emit)
	s.collector.ChatStreamFinished(outcome, time.Since(started))
	return err
}

func (s *chatService) streamChat(ctx context.Context, tenantId, userId uuid.UUID, req *dto.SendChatRequest, emit StreamEmitter) (string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Resolve the target conversation up front so an invalid id fails before
	// any token is generated.
	var conversation *entity.Conversation
	var history []llm.Message
	if req.ConversationId != nil {
		var err error
		conversation, err = uow.ConversationRepository().FindOne(ctx,
			specification.ByID{ID: *req.ConversationId},
			specification.TenantOwnedBy{TenantID: tenantId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return "error", err
		}
		if conversation == nil {
			return "error", fiber.NewError(fiber.StatusNotFound, "Conversation not found")
		}

		prior, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conversation.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return "error", err
		}
		for _, m := range prior {
			history = append(history, llm.Message{Role: m.Role, Content: m.Content})
		}
	}

	contextBlock, err := s.retriever.BuildContext(ctx, req.Message, tenantId, s.topK)
	if err != nil {
		// Retrieval being down degrades to general knowledge; the user still
		// gets an answer.
		s.logger.Warn("ChatService", "Retrieval unavailable, answering without context", map[string]interface{}{
			"tenant_id": tenantId,
			"error":     err.Error(),
		})
		contextBlock = ""
	}

	systemPrompt := systemPromptNoContext
	if contextBlock != "" {
		systemPrompt = fmt.Sprintf(systemPromptWithContext, contextBlock)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	var fragments strings.Builder
	streamErr := s.llmProvider.ChatStream(ctx, messages, func(delta string) error {
		fragments.WriteString(delta)
		return emit(dto.ContentEvent(delta))
	})

	if streamErr != nil {
		// Caller disconnect: abort silently, persist nothing.
		if errors.Is(streamErr, context.Canceled) || ctx.Err() != nil {
			s.logger.Info("ChatService", "Chat stream cancelled by caller", map[string]interface{}{
				"tenant_id": tenantId,
			})
			return "cancelled", nil
		}
		s.logger.Error("ChatService", "Completion stream failed", map[string]interface{}{
			"tenant_id": tenantId,
			"error":     streamErr.Error(),
		})
		// Partial output is discarded; neither message is persisted.
		_ = emit(dto.ErrorEvent("The assistant could not finish this answer. Please try again."))
		return "error", nil
	}

	answer := fragments.String()
	newConversation := conversation == nil
	if newConversation {
		conversation = &entity.Conversation{
			Id:        uuid.New(),
			TenantId:  tenantId,
			UserId:    userId,
			ProjectId: req.ProjectId,
			Title:     deriveTitle(req.Message),
			CreatedAt: time.Now(),
		}
	}

	if err := s.persistExchange(ctx, uow, conversation, newConversation, req.Message, answer); err != nil {
		s.logger.Error("ChatService", "Exchange not persisted", map[string]interface{}{
			"conversation_id": conversation.Id,
			"error":           err.Error(),
		})
		_ = emit(dto.ErrorEvent("The answer could not be saved."))
		return "error", nil
	}

	if newConversation {
		if err := emit(dto.ConversationIdEvent(conversation.Id)); err != nil {
			return "cancelled", nil
		}
	}

	if err := s.aggregator.RecordConversation(ctx, tenantId, conversation.Title, 2, conversation.ProjectId, ""); err != nil {
		s.logger.Warn("ChatService", "Analytics update skipped", map[string]interface{}{
			"conversation_id": conversation.Id,
			"error":           err.Error(),
		})
	}
	s.publishAudit(ctx, userId, tenantId, "CHAT_COMPLETED", conversation.Id.String())

	return "ok", nil
}

// persistExchange writes the conversation (when new) and both messages in one
// transaction. The user message is not stored earlier: a failed
// or cancelled turn leaves the conversation exactly as it was.
func (s *chatService) persistExchange(ctx context.Context, uow unitofwork.UnitOfWork, conversation *entity.Conversation, isNew bool, userMessage, answer string) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if isNew {
		if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
			return err
		}
	} else {
		now := time.Now()
		conversation.UpdatedAt = &now
		if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
			return err
		}
	}

	now := time.Now()
	msgs := []*entity.ChatMessage{
		{
			Id:             uuid.New(),
			ConversationId: conversation.Id,
			Role:           entity.MessageRoleUser,
			Content:        userMessage,
			CreatedAt:      now,
		},
		{
			Id:             uuid.New(),
			ConversationId: conversation.Id,
			Role:           entity.MessageRoleAssistant,
			Content:        answer,
			CreatedAt:      now.Add(time.Millisecond),
		},
	}
	if err := uow.ChatMessageRepository().CreateBulk(ctx, msgs); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *chatService) publishAudit(ctx context.Context, actor, tenantId uuid.UUID, action, target string) {
	if s.eventPublisher == nil {
		return
	}
	err := s.eventPublisher.Publish(ctx, events.NewAudit(action, actor.String(), tenantId.String(), target))
	if err != nil {
		s.logger.Warn("ChatService", "Audit event not published", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
	}
}

// deriveTitle turns the first message into a conversation title, cut at a
// rune boundary.
func deriveTitle(message string) string {
	title := strings.TrimSpace(message)
	runes := []rune(title)
	if len(runes) > conversationTitleMax {
		return string(runes[:conversationTitleMax])
	}
	return title
}
