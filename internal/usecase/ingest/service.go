// Package ingest implements the document ingestion pipeline: normalize, chunk,
// embed, and index into every store, with compensation on partial failure so a
// document is either fully searchable or fully absent.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lodestar-search/lodestar/internal/chunker"
	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/logger"
	"github.com/lodestar-search/lodestar/internal/metrics"
)

// embedConcurrency bounds parallel embedding calls per ingestion.
const embedConcurrency = 4

// Request is one document to ingest.
type Request struct {
	Filename string
	FileType string
	Text     string
	Meta     domain.Metadata
}

// Result reports what an ingestion produced.
type Result struct {
	DocumentID    string
	ChunksCreated int
}

// Service is the ingestion pipeline.
type Service struct {
	splitter Splitter
	embed    Embedder
	vector   VectorIndex
	lexical  LexicalIndex
	registry Registry
}

// New creates an ingest service.
func New(splitter Splitter, embed Embedder, vector VectorIndex, lexical LexicalIndex, registry Registry) *Service {
	return &Service{splitter: splitter, embed: embed, vector: vector, lexical: lexical, registry: registry}
}

// Ingest validates, chunks, embeds and indexes one document. Every step after
// the document row is created is compensated on failure: by the time an error
// returns, no store holds any trace of the document.
func (s *Service) Ingest(ctx context.Context, owner domain.UserID, req Request) (Result, error) {
	if owner == "" {
		return Result{}, fmt.Errorf("owner is required: %w", domain.ErrInvalidArgument)
	}
	if req.Filename == "" {
		return Result{}, fmt.Errorf("filename is required: %w", domain.ErrInvalidArgument)
	}

	fileType := strings.ToLower(strings.TrimPrefix(req.FileType, "."))
	if !domain.SupportedFileTypes[fileType] {
		return Result{}, fmt.Errorf("file type %q: %w", req.FileType, domain.ErrUnsupportedFileType)
	}

	text := chunker.Normalize(req.Text)
	if text == "" {
		return Result{}, domain.ErrEmptyDocument
	}

	pieces := s.splitter.Split(text)
	if len(pieces) == 0 {
		return Result{}, domain.ErrEmptyDocument
	}

	doc := domain.Document{
		ID:         uuid.NewString(),
		OwnerID:    owner,
		Filename:   req.Filename,
		FileType:   fileType,
		Meta:       req.Meta,
		ChunkCount: len(pieces),
		UploadTime: time.Now().UTC(),
	}

	chunks := make([]domain.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			OwnerID:    owner,
			Index:      p.Index,
			Text:       p.Text,
			Meta:       req.Meta,
		}
	}

	if err := s.registry.CreateDocument(ctx, doc); err != nil {
		return Result{}, fmt.Errorf("create document: %v: %w", err, domain.ErrIndexWrite)
	}

	if err := s.indexChunks(ctx, doc, chunks); err != nil {
		s.rollback(ctx, doc)
		return Result{}, err
	}

	metrics.IngestChunksTotal.Add(float64(len(chunks)))
	return Result{DocumentID: doc.ID, ChunksCreated: len(chunks)}, nil
}

// indexChunks embeds and upserts all chunks in parallel, then records them in
// the registry and the lexical index. The lexical index is written last so it
// never lists a chunk the registry does not hold.
func (s *Service) indexChunks(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for _, c := range chunks {
		c := c
		g.Go(func() error {
			emb, err := s.embed.Embed(gctx, c.Text)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", c.Index, err)
			}
			if err := s.vector.Upsert(gctx, c, emb.Embedding, doc.Filename); err != nil {
				return fmt.Errorf("index chunk %d: %v: %w", c.Index, err, domain.ErrIndexWrite)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.registry.InsertChunks(ctx, chunks); err != nil {
		return fmt.Errorf("store chunks: %v: %w", err, domain.ErrIndexWrite)
	}

	for _, c := range chunks {
		s.lexical.AddChunk(c)
	}
	return nil
}

// rollback removes every trace of a partially ingested document. Compensation
// failures are logged, not returned: the original error is what the caller
// needs, and deletion is idempotent on retry.
func (s *Service) rollback(ctx context.Context, doc domain.Document) {
	log := logger.FromContext(ctx)

	if _, err := s.vector.DeleteByDocument(ctx, doc.OwnerID, doc.ID); err != nil {
		log.Error("rollback: vector cleanup failed",
			zap.String("document_id", doc.ID), zap.Error(err))
	}
	s.lexical.RemoveDocument(doc.ID)
	if err := s.registry.DeleteDocument(ctx, doc.OwnerID, doc.ID); err != nil {
		log.Error("rollback: registry cleanup failed",
			zap.String("document_id", doc.ID), zap.Error(err))
	}

	metrics.IngestRollbacksTotal.Inc()
}
