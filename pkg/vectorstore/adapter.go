package vectorstore

import (
	"context"
	"fmt"
	"time"

	"docpilot-be/internal/entity"
	"docpilot-be/internal/pkg/logger"
	"docpilot-be/internal/repository/contract"
	"docpilot-be/pkg/embedding"

	"github.com/google/uuid"
)

// SearchResult is one retrieved chunk with its relevance score.
type SearchResult struct {
	Text  string
	Score float64
}

// Adapter is the single gateway to the shared vector store. Every operation
// takes the tenant id explicitly; the adapter, not its callers, is
// responsible for tenant scoping.
type Adapter struct {
	chunks   contract.DocumentChunkRepository
	embedder embedding.Provider
	logger   logger.ILogger
}

func NewAdapter(chunks contract.DocumentChunkRepository, embedder embedding.Provider, log logger.ILogger) *Adapter {
	return &Adapter{
		chunks:   chunks,
		embedder: embedder,
		logger:   log,
	}
}

// EmbedAndStore embeds every chunk text and replaces the document's chunk
// records. Each record carries both the tenant and the document tag. Partial
// failures are retried wholesale: any previously stored chunks for the
// document are removed first.
func (a *Adapter) EmbedAndStore(ctx context.Context, chunkTexts []string, tenantId, documentId uuid.UUID) (int, error) {
	records := make([]*entity.DocumentChunk, 0, len(chunkTexts))
	for i, text := range chunkTexts {
		res, err := a.embedder.Generate(text, embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d of document %s: %w", i, documentId, err)
		}
		records = append(records, &entity.DocumentChunk{
			Id:             uuid.New(),
			DocumentId:     documentId,
			TenantId:       tenantId,
			ChunkIndex:     i,
			Content:        text,
			EmbeddingValue: res.Embedding.Values,
			CreatedAt:      time.Now(),
		})
	}

	if _, err := a.chunks.DeleteByDocumentId(ctx, documentId, tenantId); err != nil {
		return 0, fmt.Errorf("clear previous chunks for document %s: %w", documentId, err)
	}

	if err := a.chunks.CreateBulk(ctx, records); err != nil {
		return 0, fmt.Errorf("store chunks for document %s: %w", documentId, err)
	}

	return len(records), nil
}

// DeleteByDocument removes all chunks for the given document and tenant and
// returns the number deleted. 0 when the document belongs to another tenant.
func (a *Adapter) DeleteByDocument(ctx context.Context, documentId, tenantId uuid.UUID) (int64, error) {
	return a.chunks.DeleteByDocumentId(ctx, documentId, tenantId)
}

// DeleteByProject removes all chunks belonging to the given document ids,
// scoped to the tenant. Used during cascading project deletion.
func (a *Adapter) DeleteByProject(ctx context.Context, projectId, tenantId uuid.UUID, documentIds []uuid.UUID) (int64, error) {
	deleted, err := a.chunks.DeleteByDocumentIds(ctx, documentIds, tenantId)
	if err != nil {
		a.logger.Warn("VectorStore", "Project vector cleanup failed", map[string]interface{}{
			"project_id": projectId,
			"tenant_id":  tenantId,
			"error":      err.Error(),
		})
		return deleted, err
	}
	return deleted, nil
}

// SimilaritySearch embeds the query and returns up to topK chunks ranked by
// relevance, drawn only from records tagged with tenantId.
func (a *Adapter) SimilaritySearch(ctx context.Context, query string, tenantId uuid.UUID, topK int) ([]SearchResult, error) {
	res, err := a.embedder.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := a.chunks.SearchSimilar(ctx, res.Embedding.Values, topK, tenantId)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	results := make([]SearchResult, len(scored))
	for i, s := range scored {
		results[i] = SearchResult{
			Text:  s.Chunk.Content,
			Score: s.Similarity,
		}
	}
	return results, nil
}
