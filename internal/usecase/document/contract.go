package document

import (
	"context"

	"github.com/lodestar-search/lodestar/internal/domain"
)

// Registry is the durable document catalogue.
type Registry interface {
	GetDocument(ctx context.Context, owner domain.UserID, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, owner domain.UserID) ([]domain.Document, error)
	DeleteDocument(ctx context.Context, owner domain.UserID, id string) error
}

// VectorIndex removes all chunk vectors belonging to a document.
type VectorIndex interface {
	DeleteByDocument(ctx context.Context, owner domain.UserID, documentID string) (int, error)
}

// LexicalIndex removes all postings belonging to a document.
type LexicalIndex interface {
	RemoveDocument(documentID string)
}
