// Package chi is the HTTP boundary: JSON encoding, routing, API-key auth and
// the mapping from domain sentinel errors to status codes.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/filter"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
	healthuc "github.com/lodestar-search/lodestar/internal/usecase/health"
	ingestuc "github.com/lodestar-search/lodestar/internal/usecase/ingest"
)

const defaultTopK = 10

// IngestService runs the document ingestion pipeline.
type IngestService interface {
	Ingest(ctx context.Context, owner domain.UserID, req ingestuc.Request) (ingestuc.Result, error)
}

// DocumentService lists and deletes documents.
type DocumentService interface {
	List(ctx context.Context, owner domain.UserID) ([]domain.Document, error)
	Delete(ctx context.Context, owner domain.UserID, id string) (int, error)
}

// SearchService runs hybrid retrieval.
type SearchService interface {
	Search(
		ctx context.Context, owner domain.UserID, query string, topK int, f filter.Filter,
	) ([]result.Resolved, error)
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server implements the HTTP API.
type Server struct {
	ingest    IngestService
	documents DocumentService
	search    SearchService
	health    HealthService
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest IngestService,
	documents DocumentService,
	search SearchService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	return &Server{
		ingest:    ingest,
		documents: documents,
		search:    search,
		health:    health,
		logger:    logger,
	}
}

// Mount registers all API routes on the router.
func (s *Server) Mount(r chirouter.Router) {
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chirouter.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Get("/documents", s.handleListDocuments)
		r.Delete("/documents/{id}", s.handleDeleteDocument)
		r.Post("/search", s.handleSearch)
		r.Get("/search", s.handleSearchGet)
	})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}

	res, err := s.ingest.Ingest(r.Context(), domain.UserFromContext(r.Context()), ingestuc.Request{
		Filename: req.Filename,
		FileType: req.FileType,
		Text:     req.Text,
		Meta: domain.Metadata{
			Source:   req.Source,
			Category: req.Category,
			Client:   req.Client,
		},
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ingestResponse{
		DocumentID:    res.DocumentID,
		Filename:      req.Filename,
		ChunksCreated: res.ChunksCreated,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context(), domain.UserFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i, d := range docs {
		items[i] = documentToDTO(d)
	}
	writeJSON(w, http.StatusOK, documentListResponse{Documents: items, Total: len(items)})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chirouter.URLParam(r, "id")

	removed, err := s.documents.Delete(r.Context(), domain.UserFromContext(r.Context()), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{DocumentID: id, ChunksRemoved: removed})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}
	s.runSearch(w, r, req)
}

// handleSearchGet is the query-string variant of search.
func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := searchRequest{
		Query:    q.Get("q"),
		Source:   q.Get("source"),
		Category: q.Get("category"),
		Client:   q.Get("client"),
	}
	if raw := q.Get("top_k"); raw != "" {
		topK, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "top_k must be an integer")
			return
		}
		req.TopK = topK
	}
	s.runSearch(w, r, req)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req searchRequest) {
	topK := req.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	results, err := s.search.Search(
		r.Context(),
		domain.UserFromContext(r.Context()),
		req.Query,
		topK,
		filter.New(req.Source, req.Category, req.Client),
	)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i, res := range results {
		items[i] = resolvedToDTO(res)
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Query:        req.Query,
		TotalResults: len(items),
		Results:      items,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// statusMapping pairs a sentinel error with its HTTP representation.
type statusMapping struct {
	sentinel error
	status   int
	code     string
}

var statusMappings = []statusMapping{
	{domain.ErrInvalidArgument, http.StatusBadRequest, "validation_failed"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrEmptyDocument, http.StatusUnprocessableEntity, "empty_document"},
	{domain.ErrUnsupportedFileType, http.StatusUnprocessableEntity, "unsupported_file_type"},
	{domain.ErrEmbedding, http.StatusBadGateway, "embedding_provider_error"},
	{domain.ErrIndexWrite, http.StatusServiceUnavailable, "index_write_failed"},
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range statusMappings {
		if errors.Is(err, m.sentinel) {
			s.logger.Warn("domain error",
				zap.String("path", r.URL.Path), zap.Error(err))
			// Sentinel text only: internals stay out of the response body
			writeError(w, m.status, m.code, m.sentinel.Error())
			return
		}
	}
	s.logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
