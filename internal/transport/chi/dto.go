package chi

import (
	"time"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ingestRequest struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	Text     string `json:"text"`
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
	Client   string `json:"client,omitempty"`
}

type ingestResponse struct {
	DocumentID    string `json:"document_id"`
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
}

type documentResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	Source     string    `json:"source,omitempty"`
	Category   string    `json:"category,omitempty"`
	Client     string    `json:"client,omitempty"`
	ChunkCount int       `json:"chunk_count"`
	UploadTime time.Time `json:"upload_time"`
}

type documentListResponse struct {
	Documents []documentResponse `json:"documents"`
	Total     int                `json:"total"`
}

type deleteResponse struct {
	DocumentID    string `json:"document_id"`
	ChunksRemoved int    `json:"chunks_removed"`
}

type searchRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k,omitempty"`
	Source   string `json:"source,omitempty"`
	Category string `json:"category,omitempty"`
	Client   string `json:"client,omitempty"`
}

type searchResultItem struct {
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

type searchResponse struct {
	Query        string             `json:"query"`
	TotalResults int                `json:"total_results"`
	Results      []searchResultItem `json:"results"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func documentToDTO(d domain.Document) documentResponse {
	return documentResponse{
		ID:         d.ID,
		Filename:   d.Filename,
		FileType:   d.FileType,
		Source:     d.Meta.Source,
		Category:   d.Meta.Category,
		Client:     d.Meta.Client,
		ChunkCount: d.ChunkCount,
		UploadTime: d.UploadTime,
	}
}

func resolvedToDTO(r result.Resolved) searchResultItem {
	return searchResultItem{
		ChunkID:    r.ChunkID,
		DocumentID: r.DocumentID,
		Filename:   r.Filename,
		Content:    r.Content,
		Score:      r.Score,
		ChunkIndex: r.ChunkIndex,
		Source:     r.Source,
		Category:   r.Category,
		Client:     r.Client,
	}
}
