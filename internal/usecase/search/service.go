// Package search implements hybrid retrieval: semantic KNN and lexical BM25
// candidates fused with Reciprocal Rank Fusion.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/filter"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
	"github.com/lodestar-search/lodestar/internal/logger"
	"github.com/lodestar-search/lodestar/internal/metrics"
)

// Config holds the fusion parameters.
type Config struct {
	RRFK           int // reciprocal rank constant
	CandidateLimit int // minimum per-retriever candidate pool
	MaxTopK        int
}

// Service is the fusion engine.
type Service struct {
	embed    Embedder
	vector   VectorIndex
	lexical  LexicalIndex
	registry Registry
	cfg      Config
}

// New creates a search service. Zero config fields get standard values.
func New(embed Embedder, vector VectorIndex, lexical LexicalIndex, registry Registry, cfg Config) *Service {
	if cfg.RRFK <= 0 {
		cfg.RRFK = 60
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 50
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 50
	}
	return &Service{embed: embed, vector: vector, lexical: lexical, registry: registry, cfg: cfg}
}

// Search runs both retrievers over the owner's chunks, fuses their rankings,
// and resolves the surviving hits to their stored text. If exactly one
// retriever fails the ranking is served from the other; both failing is an
// error. No matching chunks is an empty result, not an error.
func (s *Service) Search(
	ctx context.Context, owner domain.UserID, query string, topK int, f filter.Filter,
) ([]result.Resolved, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required: %w", domain.ErrInvalidArgument)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query must not be empty: %w", domain.ErrInvalidArgument)
	}
	if topK <= 0 || topK > s.cfg.MaxTopK {
		return nil, fmt.Errorf("top_k must be between 1 and %d: %w", s.cfg.MaxTopK, domain.ErrInvalidArgument)
	}

	// Both retrievers see a candidate pool wider than topK so fusion can
	// promote chunks ranked deep in one list by the other.
	limit := s.cfg.CandidateLimit
	if 3*topK > limit {
		limit = 3 * topK
	}

	semHits, semErr := s.searchSemantic(ctx, owner, query, f, limit)
	lexHits, lexErr := s.lexical.Search(ctx, owner, query, f, limit)

	log := logger.FromContext(ctx)

	var ranked []result.Ranked
	switch {
	case semErr != nil && lexErr != nil:
		return nil, fmt.Errorf("both retrievers failed: semantic: %v; lexical: %w", semErr, lexErr)
	case semErr != nil:
		log.Warn("semantic retriever failed, serving lexical ranking only", zap.Error(semErr))
		metrics.FusionDegradedTotal.WithLabelValues("lexical").Inc()
		ranked = fuseRRF(nil, lexHits, s.cfg.RRFK)
	case lexErr != nil:
		log.Warn("lexical retriever failed, serving semantic ranking only", zap.Error(lexErr))
		metrics.FusionDegradedTotal.WithLabelValues("semantic").Inc()
		ranked = fuseRRF(semHits, nil, s.cfg.RRFK)
	default:
		ranked = fuseRRF(semHits, lexHits, s.cfg.RRFK)
	}

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	return s.resolve(ctx, ranked)
}

func (s *Service) searchSemantic(
	ctx context.Context, owner domain.UserID, query string, f filter.Filter, limit int,
) ([]result.Hit, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.vector.Search(ctx, owner, emb.Embedding, f, limit)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return hits, nil
}

// resolve attaches stored payloads to the ranked hits, preferring the vector
// store (one pipelined fetch) and falling back to the registry when it is
// unreachable. Chunks deleted between ranking and resolution are dropped.
func (s *Service) resolve(ctx context.Context, ranked []result.Ranked) ([]result.Resolved, error) {
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ChunkID
	}

	payloads, err := s.vector.FetchPayloads(ctx, ids)
	if err != nil {
		logger.FromContext(ctx).Warn("payload fetch from vector store failed, using registry",
			zap.Error(err))
		payloads, err = s.registry.ResolveChunks(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve chunk payloads: %w", err)
		}
	}

	resolved := make([]result.Resolved, 0, len(ranked))
	for _, r := range ranked {
		p, ok := payloads[r.ChunkID]
		if !ok {
			continue
		}
		resolved = append(resolved, result.Resolved{
			ChunkID:    r.ChunkID,
			Score:      r.Score,
			Content:    p.Content,
			DocumentID: p.DocumentID,
			Filename:   p.Filename,
			Source:     p.Source,
			Category:   p.Category,
			Client:     p.Client,
			ChunkIndex: p.ChunkIndex,
		})
	}
	return resolved, nil
}
