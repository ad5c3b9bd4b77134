package unitofwork

import (
	"context"

	"docpilot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
	ConversationRepository() contract.ConversationRepository
	ChatMessageRepository() contract.ChatMessageRepository
	ProjectRepository() contract.ProjectRepository
	AnalyticsSnapshotRepository() contract.AnalyticsSnapshotRepository
}
