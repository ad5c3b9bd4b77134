package retrieval

import (
	"context"
	"testing"

	"docpilot-be/pkg/vectorstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubSearcher struct {
	results []vectorstore.SearchResult
	calls   int
	lastTop int
}

func (s *stubSearcher) SimilaritySearch(_ context.Context, _ string, _ uuid.UUID, topK int) ([]vectorstore.SearchResult, error) {
	s.calls++
	s.lastTop = topK
	if len(s.results) > topK {
		return s.results[:topK], nil
	}
	return s.results, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func TestBuildContextJoinsWithSeparator(t *testing.T) {
	searcher := &stubSearcher{results: []vectorstore.SearchResult{
		{Text: "first chunk", Score: 0.9},
		{Text: "second chunk", Score: 0.7},
	}}
	engine := NewEngine(searcher, nopLogger{})

	block, err := engine.BuildContext(context.Background(), "query", uuid.New(), 3)
	assert.NoError(t, err)
	assert.Equal(t, "first chunk"+ContextSeparator+"second chunk", block)
}

func TestBuildContextEmptyWhenNothingFound(t *testing.T) {
	engine := NewEngine(&stubSearcher{}, nopLogger{})

	block, err := engine.BuildContext(context.Background(), "query", uuid.New(), 3)
	assert.NoError(t, err)
	assert.Empty(t, block)
}

func TestRetrieveDefaultsTopK(t *testing.T) {
	searcher := &stubSearcher{}
	engine := NewEngine(searcher, nopLogger{})

	_, err := engine.Retrieve(context.Background(), "query", uuid.New(), 0)
	assert.NoError(t, err)
	assert.Equal(t, DefaultTopK, searcher.lastTop)
}

func TestRetrieveCachesRepeatedQueries(t *testing.T) {
	searcher := &stubSearcher{results: []vectorstore.SearchResult{{Text: "hit", Score: 0.8}}}
	engine := NewEngine(searcher, nopLogger{})
	tenantId := uuid.New()

	for i := 0; i < 3; i++ {
		results, err := engine.Retrieve(context.Background(), "same question", tenantId, 3)
		assert.NoError(t, err)
		assert.Len(t, results, 1)
	}
	assert.Equal(t, 1, searcher.calls, "identical queries should hit the cache")
}

func TestRetrieveCacheIsTenantScoped(t *testing.T) {
	searcher := &stubSearcher{results: []vectorstore.SearchResult{{Text: "hit", Score: 0.8}}}
	engine := NewEngine(searcher, nopLogger{})

	_, err := engine.Retrieve(context.Background(), "same question", uuid.New(), 3)
	assert.NoError(t, err)
	_, err = engine.Retrieve(context.Background(), "same question", uuid.New(), 3)
	assert.NoError(t, err)

	assert.Equal(t, 2, searcher.calls, "different tenants must not share cache entries")
}
