package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docpilot-be/internal/pkg/logger"
	"docpilot-be/pkg/vectorstore"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultTopK is used when the caller passes topK <= 0.
	DefaultTopK = 3

	// ContextSeparator joins retrieved chunk texts in the assembled context
	// block.
	ContextSeparator = "\n\n---\n\n"

	cacheTTL     = 2 * time.Minute
	cacheCleanup = 5 * time.Minute
)

// Searcher is the slice of the vector store the engine needs.
type Searcher interface {
	SimilaritySearch(ctx context.Context, query string, tenantId uuid.UUID, topK int) ([]vectorstore.SearchResult, error)
}

// Engine turns a user query into a context block for the prompt. Repeated
// identical queries within a short window are served from an in-process
// cache so a user iterating on the same question does not re-embed it.
type Engine struct {
	searcher Searcher
	cache    *gocache.Cache
	logger   logger.ILogger
}

func NewEngine(searcher Searcher, log logger.ILogger) *Engine {
	return &Engine{
		searcher: searcher,
		cache:    gocache.New(cacheTTL, cacheCleanup),
		logger:   log,
	}
}

// Retrieve returns up to topK scored chunks for the query, restricted to the
// tenant. topK <= 0 falls back to DefaultTopK.
func (e *Engine) Retrieve(ctx context.Context, query string, tenantId uuid.UUID, topK int) ([]vectorstore.SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	key := cacheKey(tenantId, query, topK)
	if cached, ok := e.cache.Get(key); ok {
		return cached.([]vectorstore.SearchResult), nil
	}

	results, err := e.searcher.SimilaritySearch(ctx, query, tenantId, topK)
	if err != nil {
		return nil, err
	}

	e.cache.Set(key, results, gocache.DefaultExpiration)
	return results, nil
}

// BuildContext retrieves for the query and joins the chunk texts into one
// block. An empty string means nothing relevant was found; the caller decides
// how to prompt without context.
func (e *Engine) BuildContext(ctx context.Context, query string, tenantId uuid.UUID, topK int) (string, error) {
	results, err := e.Retrieve(ctx, query, tenantId, topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}

	e.logger.Debug("Retrieval", "Context assembled", map[string]interface{}{
		"tenant_id": tenantId,
		"chunks":    len(results),
		"top_score": results[0].Score,
	})

	return strings.Join(texts, ContextSeparator), nil
}

// The tenant id leads the key so entries can never collide across tenants.
func cacheKey(tenantId uuid.UUID, query string, topK int) string {
	return fmt.Sprintf("%s|%d|%s", tenantId, topK, query)
}
