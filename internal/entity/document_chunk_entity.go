package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is the unit of retrieval: a bounded fragment of a document's
// text with its embedding. TenantId is denormalized onto every chunk so the
// vector store can enforce tenant scoping without a join.
type DocumentChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	TenantId       uuid.UUID
	ChunkIndex     int
	Content        string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
