package domain

import "errors"

var (
	// ErrNotFound signals a missing resource. Ownership violations surface as
	// ErrNotFound as well, so callers cannot probe for other tenants' documents.
	ErrNotFound = errors.New("not found")
	// ErrEmptyDocument signals a document whose text is empty after normalization.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrUnsupportedFileType signals a file type outside pdf/docx/txt/md.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrInvalidArgument signals a malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmbedding signals an embedding provider failure. Retryable.
	ErrEmbedding = errors.New("embedding provider error")
	// ErrIndexWrite signals a vector store or lexical index write failure. Retryable
	// after the ingestion saga has rolled back.
	ErrIndexWrite = errors.New("index write failed")
)
