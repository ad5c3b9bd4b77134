package contract

import (
	"context"

	"docpilot-be/internal/entity"

	"github.com/google/uuid"
)

// ScoredChunk wraps a DocumentChunk with its cosine similarity score
// (0.0 to 1.0, 1.0 = identical).
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

// DocumentChunkRepository is the persistence side of the vector store. Every
// read and delete takes the tenant id as an explicit argument; there is no
// unscoped variant.
type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	// DeleteByDocumentId removes all chunks for one document of one tenant
	// and reports how many rows went away. A document id belonging to a
	// different tenant deletes nothing.
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID, tenantId uuid.UUID) (int64, error)
	// DeleteByDocumentIds is the project-cascade bulk form.
	DeleteByDocumentIds(ctx context.Context, documentIds []uuid.UUID, tenantId uuid.UUID) (int64, error)
	// SearchSimilar returns up to limit chunks ranked by cosine similarity,
	// drawn only from rows tagged with tenantId.
	SearchSimilar(ctx context.Context, embedding []float32, limit int, tenantId uuid.UUID) ([]*ScoredChunk, error)
}
