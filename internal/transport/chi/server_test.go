package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/filter"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
	healthuc "github.com/lodestar-search/lodestar/internal/usecase/health"
	ingestuc "github.com/lodestar-search/lodestar/internal/usecase/ingest"
)

type mockIngest struct {
	res       ingestuc.Result
	err       error
	lastOwner domain.UserID
	lastReq   ingestuc.Request
}

func (m *mockIngest) Ingest(
	_ context.Context, owner domain.UserID, req ingestuc.Request,
) (ingestuc.Result, error) {
	m.lastOwner = owner
	m.lastReq = req
	return m.res, m.err
}

type mockDocuments struct {
	docs    []domain.Document
	listErr error
	removed int
	delErr  error
	lastID  string
}

func (m *mockDocuments) List(_ context.Context, _ domain.UserID) ([]domain.Document, error) {
	return m.docs, m.listErr
}

func (m *mockDocuments) Delete(_ context.Context, _ domain.UserID, id string) (int, error) {
	m.lastID = id
	return m.removed, m.delErr
}

type mockSearch struct {
	results    []result.Resolved
	err        error
	lastQuery  string
	lastTopK   int
	lastFilter filter.Filter
	lastOwner  domain.UserID
}

func (m *mockSearch) Search(
	_ context.Context, owner domain.UserID, query string, topK int, f filter.Filter,
) ([]result.Resolved, error) {
	m.lastOwner = owner
	m.lastQuery = query
	m.lastTopK = topK
	m.lastFilter = f
	return m.results, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(ing *mockIngest, docs *mockDocuments, srch *mockSearch, h *mockHealth) http.Handler {
	if h == nil {
		h = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	srv := NewServer(ing, docs, srch, h, zap.NewNop())
	r := chirouter.NewRouter()
	r.Use(BearerAuthMiddleware(map[string]string{"key-1": "alice"}))
	srv.Mount(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer key-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIngestEndpoint(t *testing.T) {
	ing := &mockIngest{res: ingestuc.Result{DocumentID: "d1", ChunksCreated: 3}}
	h := newTestRouter(ing, &mockDocuments{}, &mockSearch{}, nil)

	rec := doJSON(t, h, http.MethodPost, "/v1/ingest", ingestRequest{
		Filename: "brief.pdf",
		FileType: "pdf",
		Text:     "body",
		Source:   "legal",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ingestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DocumentID != "d1" || resp.ChunksCreated != 3 || resp.Filename != "brief.pdf" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if ing.lastOwner != "alice" {
		t.Errorf("authenticated user not threaded: %q", ing.lastOwner)
	}
	if ing.lastReq.Meta.Source != "legal" {
		t.Errorf("metadata not threaded: %+v", ing.lastReq.Meta)
	}
}

func TestIngestEndpoint_BadBody(t *testing.T) {
	h := newTestRouter(&mockIngest{}, &mockDocuments{}, &mockSearch{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/ingest", bytes.NewBufferString("{nope"))
	req.Header.Set("Authorization", "Bearer key-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid argument", domain.ErrInvalidArgument, http.StatusBadRequest, "validation_failed"},
		{"empty document", domain.ErrEmptyDocument, http.StatusUnprocessableEntity, "empty_document"},
		{"unsupported type", domain.ErrUnsupportedFileType, http.StatusUnprocessableEntity, "unsupported_file_type"},
		{"embedding down", domain.ErrEmbedding, http.StatusBadGateway, "embedding_provider_error"},
		{"index write", domain.ErrIndexWrite, http.StatusServiceUnavailable, "index_write_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ing := &mockIngest{err: tc.err}
			h := newTestRouter(ing, &mockDocuments{}, &mockSearch{}, nil)

			rec := doJSON(t, h, http.MethodPost, "/v1/ingest", ingestRequest{
				Filename: "a.txt", FileType: "txt", Text: "x",
			})
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, resp.Code)
			}
			if tc.code == "internal_error" && resp.Message != "internal error" {
				t.Errorf("internal details leaked: %q", resp.Message)
			}
		})
	}
}

func TestListDocumentsEndpoint(t *testing.T) {
	docs := &mockDocuments{docs: []domain.Document{
		{ID: "d1", OwnerID: "alice", Filename: "a.pdf", FileType: "pdf", ChunkCount: 2},
	}}
	h := newTestRouter(&mockIngest{}, docs, &mockSearch{}, nil)

	rec := doJSON(t, h, http.MethodGet, "/v1/documents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp documentListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 1 || resp.Documents[0].Filename != "a.pdf" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestDeleteDocumentEndpoint(t *testing.T) {
	docs := &mockDocuments{removed: 4}
	h := newTestRouter(&mockIngest{}, docs, &mockSearch{}, nil)

	rec := doJSON(t, h, http.MethodDelete, "/v1/documents/d1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if docs.lastID != "d1" {
		t.Errorf("document id not threaded: %q", docs.lastID)
	}
	var resp deleteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ChunksRemoved != 4 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestDeleteDocumentEndpoint_NotFound(t *testing.T) {
	docs := &mockDocuments{delErr: domain.ErrNotFound}
	h := newTestRouter(&mockIngest{}, docs, &mockSearch{}, nil)

	rec := doJSON(t, h, http.MethodDelete, "/v1/documents/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSearchEndpoint_Post(t *testing.T) {
	srch := &mockSearch{results: []result.Resolved{
		{ChunkID: "c1", DocumentID: "d1", Filename: "a.pdf", Content: "hit", Score: 0.03, ChunkIndex: 1},
	}}
	h := newTestRouter(&mockIngest{}, &mockDocuments{}, srch, nil)

	rec := doJSON(t, h, http.MethodPost, "/v1/search", searchRequest{
		Query: "contract term", TopK: 5, Source: "legal",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Query != "contract term" || resp.TotalResults != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Results[0].ChunkID != "c1" || resp.Results[0].Content != "hit" {
		t.Errorf("unexpected result item: %+v", resp.Results[0])
	}
	if srch.lastTopK != 5 || srch.lastOwner != "alice" {
		t.Errorf("parameters not threaded: topK=%d owner=%q", srch.lastTopK, srch.lastOwner)
	}
	if srch.lastFilter != filter.New("legal", "", "") {
		t.Errorf("filter not threaded: %+v", srch.lastFilter)
	}
}

func TestSearchEndpoint_DefaultTopK(t *testing.T) {
	srch := &mockSearch{}
	h := newTestRouter(&mockIngest{}, &mockDocuments{}, srch, nil)

	rec := doJSON(t, h, http.MethodPost, "/v1/search", searchRequest{Query: "q"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if srch.lastTopK != defaultTopK {
		t.Errorf("expected default top_k %d, got %d", defaultTopK, srch.lastTopK)
	}
}

func TestSearchEndpoint_Get(t *testing.T) {
	srch := &mockSearch{}
	h := newTestRouter(&mockIngest{}, &mockDocuments{}, srch, nil)

	rec := doJSON(t, h, http.MethodGet, "/v1/search?q=hello&top_k=7&category=fin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if srch.lastQuery != "hello" || srch.lastTopK != 7 {
		t.Errorf("query params not threaded: %q %d", srch.lastQuery, srch.lastTopK)
	}
	if srch.lastFilter != filter.New("", "fin", "") {
		t.Errorf("filter not threaded: %+v", srch.lastFilter)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/search?q=hello&top_k=x", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-integer top_k, got %d", rec.Code)
	}
}

func TestSearchEndpoint_BlankQuery(t *testing.T) {
	srch := &mockSearch{err: domain.ErrInvalidArgument}
	h := newTestRouter(&mockIngest{}, &mockDocuments{}, srch, nil)

	rec := doJSON(t, h, http.MethodPost, "/v1/search", searchRequest{Query: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	healthy := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"vector_store": healthuc.CheckOK},
	}}
	h := newTestRouter(&mockIngest{}, &mockDocuments{}, &mockSearch{}, healthy)

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["vector_store"] != "ok" {
		t.Errorf("unexpected response: %+v", resp)
	}

	degraded := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"vector_store": healthuc.CheckError},
	}}
	h = newTestRouter(&mockIngest{}, &mockDocuments{}, &mockSearch{}, degraded)
	rec = doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when degraded, got %d", rec.Code)
	}
}
