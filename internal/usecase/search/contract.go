package search

import (
	"context"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/filter"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

// VectorIndex is the semantic candidate source.
type VectorIndex interface {
	Search(
		ctx context.Context, owner domain.UserID, vec []float32, f filter.Filter, limit int,
	) ([]result.Hit, error)
	FetchPayloads(ctx context.Context, chunkIDs []string) (map[string]result.Payload, error)
}

// LexicalIndex is the keyword candidate source.
type LexicalIndex interface {
	Search(
		ctx context.Context, owner domain.UserID, query string, f filter.Filter, limit int,
	) ([]result.Hit, error)
}

// Registry resolves chunk payloads from the system of record, used when the
// vector store cannot serve them.
type Registry interface {
	ResolveChunks(ctx context.Context, chunkIDs []string) (map[string]result.Payload, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
