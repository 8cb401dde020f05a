// Package db defines the storage facade over Redis. Consumers depend on the
// narrow sub-interfaces, not on Store.
package db

import (
	"context"
	"time"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/filter"
)

// Store is the full database facade.
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
}

// KVStore provides simple key-value operations, used by the embedding cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// KNNQuery is the input for vector similarity search. Owner is mandatory: the
// tag pre-filter it produces is what enforces tenant isolation at the store.
type KNNQuery struct {
	IndexName    string
	Owner        domain.UserID
	Filter       filter.Filter
	Vector       []float32
	K            int
	ReturnFields []string
}

// TagQuery selects hash keys by exact tag values, used to enumerate a
// document's chunk keys before deletion.
type TagQuery struct {
	IndexName string
	Owner     domain.UserID
	Document  string
	Limit     int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// Searcher provides search operations over the FT index.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchKeys(ctx context.Context, q *TagQuery) ([]string, error)
}
