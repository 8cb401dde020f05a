// Package document implements catalogue operations over ingested documents:
// listing a user's corpus and cascaded deletion across every index.
package document

import (
	"context"
	"fmt"

	"github.com/lodestar-search/lodestar/internal/domain"
)

// Service handles document listing and deletion.
type Service struct {
	registry Registry
	vector   VectorIndex
	lexical  LexicalIndex
}

// New creates a document service.
func New(registry Registry, vector VectorIndex, lexical LexicalIndex) *Service {
	return &Service{registry: registry, vector: vector, lexical: lexical}
}

// List returns the owner's documents, newest first.
func (s *Service) List(ctx context.Context, owner domain.UserID) ([]domain.Document, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required: %w", domain.ErrInvalidArgument)
	}
	docs, err := s.registry.ListDocuments(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Get returns one document if the owner holds it.
func (s *Service) Get(ctx context.Context, owner domain.UserID, id string) (*domain.Document, error) {
	if owner == "" || id == "" {
		return nil, fmt.Errorf("owner and document id are required: %w", domain.ErrInvalidArgument)
	}
	return s.registry.GetDocument(ctx, owner, id)
}

// Delete removes a document and every trace of its chunks. The vector store
// goes first: if it cannot be reached the deletion aborts before touching the
// registry, so a retry still finds the document and can finish the cascade.
// Returns the number of chunk vectors removed.
func (s *Service) Delete(ctx context.Context, owner domain.UserID, id string) (int, error) {
	if owner == "" || id == "" {
		return 0, fmt.Errorf("owner and document id are required: %w", domain.ErrInvalidArgument)
	}

	if _, err := s.registry.GetDocument(ctx, owner, id); err != nil {
		return 0, err
	}

	removed, err := s.vector.DeleteByDocument(ctx, owner, id)
	if err != nil {
		return 0, fmt.Errorf("delete vectors: %v: %w", err, domain.ErrIndexWrite)
	}

	s.lexical.RemoveDocument(id)

	if err := s.registry.DeleteDocument(ctx, owner, id); err != nil {
		return removed, fmt.Errorf("delete document: %v: %w", err, domain.ErrIndexWrite)
	}
	return removed, nil
}
