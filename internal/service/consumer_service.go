package service

import (
	"context"
	"encoding/json"
	"time"

	"docpilot-be/internal/dto"
	"docpilot-be/internal/entity"
	"docpilot-be/internal/pkg/logger"
	"docpilot-be/internal/pkg/metrics"
	"docpilot-be/internal/repository/specification"
	"docpilot-be/internal/repository/unitofwork"
	"docpilot-be/pkg/analytics"
	"docpilot-be/pkg/textsplit"
	"docpilot-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	embedChunkSize    = 1000
	embedChunkOverlap = 200
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	uowFactory  unitofwork.RepositoryFactory
	vectorStore *vectorstore.Adapter
	aggregator  *analytics.Aggregator
	collector   metrics.Collector
	logger      logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	vectorStore *vectorstore.Adapter,
	aggregator *analytics.Aggregator,
	collector metrics.Collector,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		uowFactory:  uowFactory,
		vectorStore: vectorStore,
		aggregator:  aggregator,
		collector:   collector,
		logger:      log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage runs one embed job. Ack decides retry semantics: poison
// payloads and vanished documents are Acked so they never loop; database
// read failures are Nacked for redelivery; embed failures mark the document
// as errored and Ack, the user re-uploads to retry.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Unreadable embed message dropped", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	started := time.Now()
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: payload.DocumentId},
		specification.TenantOwnedBy{TenantID: payload.TenantId},
	)
	if err != nil {
		cs.logger.Error("Consumer", "Document lookup failed, will retry", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if doc == nil {
		// Deleted between upload and pickup.
		cs.logger.Info("Consumer", "Document gone before vectorization", map[string]interface{}{
			"document_id": payload.DocumentId,
		})
		msg.Ack()
		return
	}

	chunks := textsplit.Split(doc.Content, embedChunkSize, embedChunkOverlap)
	cs.logger.Info("Consumer", "Vectorizing document", map[string]interface{}{
		"document_id": doc.Id,
		"tenant_id":   doc.TenantId,
		"chunks":      len(chunks),
	})

	stored, err := cs.vectorStore.EmbedAndStore(ctx, chunks, doc.TenantId, doc.Id)
	if err != nil {
		cs.logger.Error("Consumer", "Vectorization failed", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
		if uerr := uow.DocumentRepository().UpdateVectorStatus(ctx, doc.Id, entity.VectorStatusError); uerr != nil {
			cs.logger.Error("Consumer", "Could not mark document as errored", map[string]interface{}{
				"document_id": doc.Id,
				"error":       uerr.Error(),
			})
		}
		cs.collector.VectorizationFailed(doc.TenantId.String())
		msg.Ack()
		return
	}

	if err := uow.DocumentRepository().UpdateVectorStatus(ctx, doc.Id, entity.VectorStatusReady); err != nil {
		cs.logger.Error("Consumer", "Status update failed, will retry", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}

	cs.collector.DocumentVectorized(doc.TenantId.String(), stored, time.Since(started))

	projectName := ""
	if doc.ProjectId != nil {
		if project, perr := uow.ProjectRepository().FindOne(ctx,
			specification.ByID{ID: *doc.ProjectId},
			specification.TenantOwnedBy{TenantID: doc.TenantId},
		); perr == nil && project != nil {
			projectName = project.Name
		}
	}
	if err := cs.aggregator.MarkVectorized(ctx, doc.TenantId, doc.ProjectId, projectName); err != nil {
		cs.logger.Warn("Consumer", "Analytics update skipped", map[string]interface{}{
			"document_id": doc.Id,
			"error":       err.Error(),
		})
	}

	cs.logger.Info("Consumer", "Document vectorized", map[string]interface{}{
		"document_id": doc.Id,
		"chunks":      stored,
		"elapsed_ms":  time.Since(started).Milliseconds(),
	})
	msg.Ack()
}
