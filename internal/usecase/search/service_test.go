package search

import (
	"context"
	"errors"
	"testing"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/filter"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 3}, nil
}

type mockVector struct {
	hits      []result.Hit
	searchErr error
	payloads  map[string]result.Payload
	fetchErr  error
	lastLimit int
	lastOwner domain.UserID
}

func (m *mockVector) Search(
	_ context.Context, owner domain.UserID, _ []float32, _ filter.Filter, limit int,
) ([]result.Hit, error) {
	m.lastOwner = owner
	m.lastLimit = limit
	return m.hits, m.searchErr
}

func (m *mockVector) FetchPayloads(_ context.Context, _ []string) (map[string]result.Payload, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.payloads, nil
}

type mockLexical struct {
	hits      []result.Hit
	err       error
	lastLimit int
}

func (m *mockLexical) Search(
	_ context.Context, _ domain.UserID, _ string, _ filter.Filter, limit int,
) ([]result.Hit, error) {
	m.lastLimit = limit
	return m.hits, m.err
}

type mockRegistry struct {
	payloads map[string]result.Payload
	err      error
	called   bool
}

func (m *mockRegistry) ResolveChunks(_ context.Context, _ []string) (map[string]result.Payload, error) {
	m.called = true
	return m.payloads, m.err
}

func payloadsFor(ids ...string) map[string]result.Payload {
	out := make(map[string]result.Payload, len(ids))
	for _, id := range ids {
		out[id] = result.Payload{Content: "text of " + id, DocumentID: "d1", Filename: "doc.pdf"}
	}
	return out
}

func newService(emb *mockEmbedder, vec *mockVector, lex *mockLexical, reg *mockRegistry) *Service {
	return New(emb, vec, lex, reg, Config{})
}

func noFilter() filter.Filter { return filter.New("", "", "") }

func TestSearch_Validation(t *testing.T) {
	svc := newService(&mockEmbedder{}, &mockVector{}, &mockLexical{}, &mockRegistry{})
	ctx := context.Background()

	cases := []struct {
		name  string
		owner domain.UserID
		query string
		topK  int
	}{
		{"empty owner", "", "q", 5},
		{"empty query", "alice", "   ", 5},
		{"zero topK", "alice", "q", 0},
		{"topK above max", "alice", "q", 51},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Search(ctx, tc.owner, tc.query, tc.topK, noFilter())
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
}

func TestSearch_FusesAndResolves(t *testing.T) {
	vec := &mockVector{
		hits:     []result.Hit{{ChunkID: "c1", Score: 0.9}, {ChunkID: "c2", Score: 0.8}},
		payloads: payloadsFor("c1", "c2", "c3"),
	}
	lex := &mockLexical{hits: []result.Hit{{ChunkID: "c3", Score: 4.2}, {ChunkID: "c1", Score: 2.0}}}
	svc := newService(&mockEmbedder{vec: []float32{1}}, vec, lex, &mockRegistry{})

	got, err := svc.Search(context.Background(), "alice", "query", 10, noFilter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ChunkID != "c1" {
		t.Errorf("expected c1 first (in both lists), got %s", got[0].ChunkID)
	}
	if got[0].Content != "text of c1" || got[0].Filename != "doc.pdf" {
		t.Errorf("payload not attached: %+v", got[0])
	}
	if vec.lastOwner != "alice" {
		t.Error("owner not threaded to vector search")
	}
}

func TestSearch_CandidatePoolWiderThanTopK(t *testing.T) {
	vec := &mockVector{payloads: map[string]result.Payload{}}
	lex := &mockLexical{}
	svc := newService(&mockEmbedder{vec: []float32{1}}, vec, lex, &mockRegistry{})

	// topK 5 -> pool is the 50 floor
	if _, err := svc.Search(context.Background(), "alice", "q", 5, noFilter()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec.lastLimit != 50 || lex.lastLimit != 50 {
		t.Errorf("expected candidate pool 50, got vec=%d lex=%d", vec.lastLimit, lex.lastLimit)
	}

	// topK 20 -> 3*topK wins
	if _, err := svc.Search(context.Background(), "alice", "q", 20, noFilter()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vec.lastLimit != 60 || lex.lastLimit != 60 {
		t.Errorf("expected candidate pool 60, got vec=%d lex=%d", vec.lastLimit, lex.lastLimit)
	}
}

func TestSearch_DegradesToLexicalWhenEmbeddingFails(t *testing.T) {
	// Semantic side is down entirely: embedding fails and the vector store
	// cannot serve payloads, so resolution falls back to the registry.
	vec := &mockVector{fetchErr: errors.New("connection refused")}
	lex := &mockLexical{hits: []result.Hit{{ChunkID: "c7", Score: 3.0}}}
	reg := &mockRegistry{payloads: payloadsFor("c7")}
	svc := newService(&mockEmbedder{err: errors.New("provider down")}, vec, lex, reg)

	got, err := svc.Search(context.Background(), "alice", "query", 10, noFilter())
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}
	if len(got) != 1 || got[0].ChunkID != "c7" {
		t.Fatalf("expected lexical-only result, got %v", got)
	}
	if !reg.called {
		t.Error("expected registry fallback for payload resolution")
	}
	if got[0].Content != "text of c7" {
		t.Errorf("payload not attached from registry: %+v", got[0])
	}
}

func TestSearch_DegradesToSemanticWhenLexicalFails(t *testing.T) {
	vec := &mockVector{
		hits:     []result.Hit{{ChunkID: "c1", Score: 0.9}},
		payloads: payloadsFor("c1"),
	}
	lex := &mockLexical{err: errors.New("index corrupted")}
	svc := newService(&mockEmbedder{vec: []float32{1}}, vec, lex, &mockRegistry{})

	got, err := svc.Search(context.Background(), "alice", "query", 10, noFilter())
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}
	if len(got) != 1 || got[0].ChunkID != "c1" {
		t.Fatalf("expected semantic-only result, got %v", got)
	}
}

func TestSearch_BothSourcesFailing(t *testing.T) {
	vec := &mockVector{searchErr: errors.New("redis down")}
	lex := &mockLexical{err: errors.New("also down")}
	svc := newService(&mockEmbedder{vec: []float32{1}}, vec, lex, &mockRegistry{})

	if _, err := svc.Search(context.Background(), "alice", "query", 10, noFilter()); err == nil {
		t.Fatal("expected error when both retrievers fail")
	}
}

func TestSearch_EmptyCandidates(t *testing.T) {
	svc := newService(&mockEmbedder{vec: []float32{1}}, &mockVector{}, &mockLexical{}, &mockRegistry{})

	got, err := svc.Search(context.Background(), "alice", "no matches anywhere", 10, noFilter())
	if err != nil {
		t.Fatalf("empty candidate set must not be an error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestSearch_TruncatesToTopK(t *testing.T) {
	vec := &mockVector{
		hits: []result.Hit{
			{ChunkID: "c1"}, {ChunkID: "c2"}, {ChunkID: "c3"}, {ChunkID: "c4"},
		},
		payloads: payloadsFor("c1", "c2", "c3", "c4"),
	}
	svc := newService(&mockEmbedder{vec: []float32{1}}, vec, &mockLexical{}, &mockRegistry{})

	got, err := svc.Search(context.Background(), "alice", "query", 2, noFilter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestSearch_DropsChunksDeletedDuringRanking(t *testing.T) {
	vec := &mockVector{
		hits:     []result.Hit{{ChunkID: "c1"}, {ChunkID: "gone"}},
		payloads: payloadsFor("c1"),
	}
	svc := newService(&mockEmbedder{vec: []float32{1}}, vec, &mockLexical{}, &mockRegistry{})

	got, err := svc.Search(context.Background(), "alice", "query", 10, noFilter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ChunkID != "c1" {
		t.Errorf("expected unresolvable chunk dropped, got %v", got)
	}
}
