package vectorstore

import (
	"context"
	"fmt"
	"testing"

	"docpilot-be/internal/entity"
	"docpilot-be/internal/repository/contract"
	"docpilot-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// fakeEmbedder returns a fixed-size vector and records every text it saw.
type fakeEmbedder struct {
	calls    []string
	taskSeen string
	failOn   string
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.Response, error) {
	if f.failOn != "" && text == f.failOn {
		return nil, fmt.Errorf("embedding backend unavailable")
	}
	f.calls = append(f.calls, text)
	f.taskSeen = taskType
	return &embedding.Response{Embedding: embedding.ResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}}}, nil
}

// fakeChunkRepo keeps chunks in a slice keyed by tenant.
type fakeChunkRepo struct {
	stored     []*entity.DocumentChunk
	searchHits []*contract.ScoredChunk
	deleteErr  error
}

func (f *fakeChunkRepo) CreateBulk(_ context.Context, chunks []*entity.DocumentChunk) error {
	f.stored = append(f.stored, chunks...)
	return nil
}

func (f *fakeChunkRepo) DeleteByDocumentId(_ context.Context, documentId, tenantId uuid.UUID) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var kept []*entity.DocumentChunk
	var removed int64
	for _, c := range f.stored {
		if c.DocumentId == documentId && c.TenantId == tenantId {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	f.stored = kept
	return removed, nil
}

func (f *fakeChunkRepo) DeleteByDocumentIds(_ context.Context, documentIds []uuid.UUID, tenantId uuid.UUID) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	ids := make(map[uuid.UUID]bool, len(documentIds))
	for _, id := range documentIds {
		ids[id] = true
	}
	var kept []*entity.DocumentChunk
	var removed int64
	for _, c := range f.stored {
		if ids[c.DocumentId] && c.TenantId == tenantId {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	f.stored = kept
	return removed, nil
}

func (f *fakeChunkRepo) SearchSimilar(_ context.Context, _ []float32, limit int, _ uuid.UUID) ([]*contract.ScoredChunk, error) {
	if len(f.searchHits) > limit {
		return f.searchHits[:limit], nil
	}
	return f.searchHits, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func TestEmbedAndStoreTagsEveryChunk(t *testing.T) {
	repo := &fakeChunkRepo{}
	emb := &fakeEmbedder{}
	adapter := NewAdapter(repo, emb, nopLogger{})

	tenantId := uuid.New()
	documentId := uuid.New()

	n, err := adapter.EmbedAndStore(context.Background(), []string{"alpha", "beta", "gamma"}, tenantId, documentId)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, repo.stored, 3)
	assert.Equal(t, embedding.TaskRetrievalDocument, emb.taskSeen)

	for i, c := range repo.stored {
		assert.Equal(t, tenantId, c.TenantId)
		assert.Equal(t, documentId, c.DocumentId)
		assert.Equal(t, i, c.ChunkIndex)
		assert.NotEmpty(t, c.EmbeddingValue)
	}
}

func TestEmbedAndStoreReplacesPreviousChunks(t *testing.T) {
	repo := &fakeChunkRepo{}
	adapter := NewAdapter(repo, &fakeEmbedder{}, nopLogger{})

	tenantId := uuid.New()
	documentId := uuid.New()

	_, err := adapter.EmbedAndStore(context.Background(), []string{"a", "b"}, tenantId, documentId)
	assert.NoError(t, err)

	// Re-ingesting the same document must not accumulate chunks.
	n, err := adapter.EmbedAndStore(context.Background(), []string{"c", "d", "e"}, tenantId, documentId)
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, repo.stored, 3)
}

func TestEmbedAndStoreFailsBeforeTouchingStore(t *testing.T) {
	repo := &fakeChunkRepo{}
	emb := &fakeEmbedder{failOn: "bad"}
	adapter := NewAdapter(repo, emb, nopLogger{})

	_, err := adapter.EmbedAndStore(context.Background(), []string{"ok", "bad"}, uuid.New(), uuid.New())
	assert.Error(t, err)
	assert.Empty(t, repo.stored, "no chunks should be written when embedding fails")
}

func TestDeleteByDocumentScopedToTenant(t *testing.T) {
	repo := &fakeChunkRepo{}
	adapter := NewAdapter(repo, &fakeEmbedder{}, nopLogger{})

	tenantA := uuid.New()
	tenantB := uuid.New()
	docId := uuid.New()

	_, err := adapter.EmbedAndStore(context.Background(), []string{"a1", "a2"}, tenantA, docId)
	assert.NoError(t, err)

	// Another tenant asking to delete the same document id removes nothing.
	removed, err := adapter.DeleteByDocument(context.Background(), docId, tenantB)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), removed)
	assert.Len(t, repo.stored, 2)

	removed, err = adapter.DeleteByDocument(context.Background(), docId, tenantA)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Empty(t, repo.stored)
}

func TestSimilaritySearchUsesQueryTask(t *testing.T) {
	repo := &fakeChunkRepo{
		searchHits: []*contract.ScoredChunk{
			{Chunk: &entity.DocumentChunk{Content: "most relevant"}, Similarity: 0.91},
			{Chunk: &entity.DocumentChunk{Content: "less relevant"}, Similarity: 0.42},
		},
	}
	emb := &fakeEmbedder{}
	adapter := NewAdapter(repo, emb, nopLogger{})

	results, err := adapter.SimilaritySearch(context.Background(), "what is in the report?", uuid.New(), 3)
	assert.NoError(t, err)
	assert.Equal(t, embedding.TaskRetrievalQuery, emb.taskSeen)
	assert.Len(t, results, 2)
	assert.Equal(t, "most relevant", results[0].Text)
	assert.InDelta(t, 0.91, results[0].Score, 1e-9)
}
