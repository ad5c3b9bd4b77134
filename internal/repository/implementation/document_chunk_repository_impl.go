package implementation

import (
	"context"

	"docpilot-be/internal/mapper"
	"docpilot-be/internal/model"
	"docpilot-be/internal/repository/contract"

	"docpilot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentChunkMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentChunkMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID, tenantId uuid.UUID) (int64, error) {
	// The tenant predicate makes this a no-op when the document id belongs
	// to another tenant, even if the id values collide.
	res := r.db.WithContext(ctx).
		Where("document_id = ? AND tenant_id = ?", documentId, tenantId).
		Delete(&model.DocumentChunk{})
	return res.RowsAffected, res.Error
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentIds(ctx context.Context, documentIds []uuid.UUID, tenantId uuid.UUID) (int64, error) {
	if len(documentIds) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("document_id IN ? AND tenant_id = ?", documentIds, tenantId).
		Delete(&model.DocumentChunk{})
	return res.RowsAffected, res.Error
}

// SearchSimilar ranks the tenant's chunks by pgvector cosine distance
// (embedding_value <=> query) and converts to similarity = 1 - distance.
func (r *DocumentChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, tenantId uuid.UUID) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.DocumentChunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("document_chunks").
		Select("document_chunks.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("document_chunks.tenant_id = ?", tenantId).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&res.DocumentChunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
