// Package vector adapts the Redis FT index into the vector store contract used
// by the ingestion pipeline and the fusion engine.
package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/lodestar-search/lodestar/internal/db"
	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/filter"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

// store is the consumer interface for chunk vector operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchKeys(ctx context.Context, q *db.TagQuery) ([]string, error)
}

// HNSWConfig carries index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo is the vector store adapter.
type Repo struct {
	store     store
	keyPrefix string
	dim       int
	hnsw      HNSWConfig
}

// New creates a vector repository. keyPrefix namespaces every Redis key.
func New(s store, keyPrefix string, dim int) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, dim: dim}
}

// WithHNSW overrides the default index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

func (r *Repo) indexName() string {
	return r.keyPrefix + "chunks:idx"
}

func (r *Repo) chunkKey(chunkID string) string {
	return r.keyPrefix + "chunk:" + chunkID
}

func (r *Repo) chunkIDFromKey(key string) string {
	return strings.TrimPrefix(key, r.keyPrefix+"chunk:")
}

// EnsureIndex creates the chunk FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.indexName(),
		Prefixes: []string{r.keyPrefix + "chunk:"},
		Fields: []db.IndexField{
			{Name: fieldOwner, Type: db.IndexFieldTag},
			{Name: fieldDocument, Type: db.IndexFieldTag},
			{Name: fieldSource, Type: db.IndexFieldTag},
			{Name: fieldCategory, Type: db.IndexFieldTag},
			{Name: fieldClient, Type: db.IndexFieldTag},
			{Name: fieldIndex, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && err != db.ErrIndexExists {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert writes a chunk's vector and payload. Idempotent: re-writing the same
// chunk ID replaces the hash in place.
func (r *Repo) Upsert(ctx context.Context, chunk domain.Chunk, vec []float32, filename string) error {
	if len(vec) != r.dim {
		return fmt.Errorf("vector dimension %d, index expects %d", len(vec), r.dim)
	}
	key := r.chunkKey(chunk.ID)
	if err := r.store.HSet(ctx, key, buildHashFields(chunk, vec, filename)); err != nil {
		return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// DeleteByDocument removes every vector entry tagged with the document.
// Returns the number of entries removed.
func (r *Repo) DeleteByDocument(ctx context.Context, owner domain.UserID, documentID string) (int, error) {
	keys, err := r.store.SearchKeys(ctx, &db.TagQuery{
		IndexName: r.indexName(),
		Owner:     owner,
		Document:  documentID,
	})
	if err != nil {
		return 0, fmt.Errorf("list chunk keys for document %s: %w", documentID, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return 0, fmt.Errorf("delete chunks for document %s: %w", documentID, err)
	}
	return len(keys), nil
}

// Search runs a KNN query restricted to the owner and filter, highest
// similarity first.
func (r *Repo) Search(
	ctx context.Context, owner domain.UserID, vec []float32, f filter.Filter, limit int,
) ([]result.Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Owner:        owner,
		Filter:       f,
		Vector:       vec,
		K:            limit,
		ReturnFields: []string{"__vector_score"},
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	hits := make([]result.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, result.Hit{
			ChunkID: r.chunkIDFromKey(entry.Key),
			Score:   entry.Score,
		})
	}
	return hits, nil
}

// FetchPayloads resolves chunk IDs to their stored payloads. Missing chunks
// (deleted between ranking and resolution) are silently absent from the map.
func (r *Repo) FetchPayloads(ctx context.Context, chunkIDs []string) (map[string]result.Payload, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(chunkIDs))
	for i, id := range chunkIDs {
		keys[i] = r.chunkKey(id)
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch chunk payloads: %w", err)
	}

	out := make(map[string]result.Payload, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		out[chunkIDs[i]] = parsePayload(m)
	}
	return out, nil
}
