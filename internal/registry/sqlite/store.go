// Package sqlite implements the durable document registry. It is the system
// of record for document ownership and chunk text; the lexical index is
// rehydrated from it at startup.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	filename    TEXT NOT NULL,
	file_type   TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	client      TEXT NOT NULL DEFAULT '',
	chunk_count INTEGER NOT NULL DEFAULT 0,
	upload_time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id, upload_time DESC);

CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	owner_id    TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	content     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
`

// Store is the SQLite-backed document registry.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the registry database at path. Use ":memory:" for
// an ephemeral registry in tests.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports registry availability.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateDocument inserts a new document row.
func (s *Store) CreateDocument(ctx context.Context, doc domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, filename, file_type, source, category, client, chunk_count, upload_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, string(doc.OwnerID), doc.Filename, doc.FileType,
		doc.Meta.Source, doc.Meta.Category, doc.Meta.Client, doc.ChunkCount, doc.UploadTime)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

// GetDocument retrieves an owner's document. A document belonging to another
// owner is indistinguishable from one that does not exist.
func (s *Store) GetDocument(ctx context.Context, owner domain.UserID, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, filename, file_type, source, category, client, chunk_count, upload_time
		FROM documents WHERE id = ? AND owner_id = ?
	`, id, string(owner))

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns an owner's documents, newest first.
func (s *Store) ListDocuments(ctx context.Context, owner domain.UserID) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, filename, file_type, source, category, client, chunk_count, upload_time
		FROM documents WHERE owner_id = ?
		ORDER BY upload_time DESC, id
	`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes an owner's document; chunks go with it via the
// foreign key cascade. Returns domain.ErrNotFound when the owner has no such
// document.
func (s *Store) DeleteDocument(ctx context.Context, owner domain.UserID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ? AND owner_id = ?", id, string(owner))
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InsertChunks stores a document's chunks in one transaction.
func (s *Store) InsertChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, owner_id, chunk_index, content)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, string(c.OwnerID), c.Index, c.Text); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// AllChunks streams every stored chunk, joined with its document's metadata,
// to the callback. Used to rebuild the lexical index at startup.
func (s *Store) AllChunks(ctx context.Context, fn func(domain.Chunk) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.owner_id, c.chunk_index, c.content,
		       d.source, d.category, d.client
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.document_id, c.chunk_index
	`)
	if err != nil {
		return fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c     domain.Chunk
			owner string
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &owner, &c.Index, &c.Text,
			&c.Meta.Source, &c.Meta.Category, &c.Meta.Client); err != nil {
			return fmt.Errorf("scanning chunk: %w", err)
		}
		c.OwnerID = domain.UserID(owner)
		if err := fn(c); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating chunks: %w", err)
	}
	return nil
}

// ResolveChunks resolves chunk IDs to response payloads, joining each chunk
// with its document's filename and metadata. Fallback resolution path when the
// vector store cannot serve payloads. Unknown IDs are absent from the map.
func (s *Store) ResolveChunks(ctx context.Context, chunkIDs []string) (map[string]result.Payload, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(chunkIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.chunk_index, c.content,
		       d.filename, d.source, d.category, d.client
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("resolving chunks: %w", err)
	}
	defer rows.Close()

	out := make(map[string]result.Payload, len(chunkIDs))
	for rows.Next() {
		var (
			id string
			p  result.Payload
		)
		if err := rows.Scan(&id, &p.DocumentID, &p.ChunkIndex, &p.Content,
			&p.Filename, &p.Source, &p.Category, &p.Client); err != nil {
			return nil, fmt.Errorf("scanning chunk payload: %w", err)
		}
		out[id] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk payloads: %w", err)
	}
	return out, nil
}

// scanDocument reads a document row through either *sql.Row.Scan or
// *sql.Rows.Scan.
func scanDocument(scan func(dest ...any) error) (*domain.Document, error) {
	var (
		doc   domain.Document
		owner string
	)
	if err := scan(&doc.ID, &owner, &doc.Filename, &doc.FileType,
		&doc.Meta.Source, &doc.Meta.Category, &doc.Meta.Client,
		&doc.ChunkCount, &doc.UploadTime); err != nil {
		return nil, err
	}
	doc.OwnerID = domain.UserID(owner)
	return &doc, nil
}
