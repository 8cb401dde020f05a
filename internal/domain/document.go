package domain

import "time"

// SupportedFileTypes are the declared types the ingest boundary accepts. Text
// extraction happens upstream; the type is still validated and recorded.
var SupportedFileTypes = map[string]bool{
	"pdf":  true,
	"docx": true,
	"txt":  true,
	"md":   true,
}

// Metadata carries the optional exact-match filter fields denormalized onto
// every chunk. An empty string means the field is unset.
type Metadata struct {
	Source   string
	Category string
	Client   string
}

// Document is a registry record. Documents are immutable once ingested and are
// deleted as a unit together with all of their chunks.
type Document struct {
	ID         string
	OwnerID    UserID
	Filename   string
	FileType   string
	Meta       Metadata
	ChunkCount int
	UploadTime time.Time
}

// Chunk is the unit of indexing and retrieval: one contiguous slice of a
// document's text. Owner and metadata are copied from the parent document so
// both indexes can filter without a registry join.
type Chunk struct {
	ID         string
	DocumentID string
	OwnerID    UserID
	Index      int
	Text       string
	Meta       Metadata
}
