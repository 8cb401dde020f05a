package ingest

import (
	"context"

	"github.com/lodestar-search/lodestar/internal/chunker"
	"github.com/lodestar-search/lodestar/internal/domain"
)

// Splitter cuts normalized text into overlapping word windows.
type Splitter interface {
	Split(text string) []chunker.Chunk
}

// Embedder vectorizes chunk text (document-instruction decorated).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorIndex receives chunk vectors and supports whole-document removal for
// rollback and deletion.
type VectorIndex interface {
	Upsert(ctx context.Context, chunk domain.Chunk, vec []float32, filename string) error
	DeleteByDocument(ctx context.Context, owner domain.UserID, documentID string) (int, error)
}

// LexicalIndex receives chunk postings and supports whole-document removal.
type LexicalIndex interface {
	AddChunk(chunk domain.Chunk)
	RemoveDocument(documentID string)
}

// Registry is the durable system of record for documents and chunk text.
type Registry interface {
	CreateDocument(ctx context.Context, doc domain.Document) error
	InsertChunks(ctx context.Context, chunks []domain.Chunk) error
	DeleteDocument(ctx context.Context, owner domain.UserID, id string) error
}
