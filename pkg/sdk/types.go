package lodestar

import "time"

// IngestRequest is one document to ingest. Text is the already extracted
// plain text; FileType records the declared source format (pdf, docx, txt, md).
type IngestRequest struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	Text     string `json:"text"`
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
	Client   string `json:"client,omitempty"`
}

// IngestResult reports what an ingestion produced.
type IngestResult struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
}

// Document is a catalogue entry.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	Source     string    `json:"source,omitempty"`
	Category   string    `json:"category,omitempty"`
	Client     string    `json:"client,omitempty"`
	ChunkCount int       `json:"chunk_count"`
	UploadTime time.Time `json:"upload_time"`
}

// DeleteResult reports a completed document deletion.
type DeleteResult struct {
	DocumentID    string `json:"document_id"`
	ChunksRemoved int    `json:"chunks_removed"`
}

// SearchRequest is a hybrid retrieval query. TopK defaults to 10 server-side;
// Source, Category and Client are optional exact-match filters.
type SearchRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k,omitempty"`
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
	Client   string `json:"client,omitempty"`
}

// SearchResult holds one ranked chunk.
type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
	Source     string  `json:"source,omitempty"`
	Category   string  `json:"category,omitempty"`
	Client     string  `json:"client,omitempty"`
}

// SearchResponse is the full search reply.
type SearchResponse struct {
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}

type documentListResponse struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}
