package search

import (
	"math"
	"testing"

	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

func hits(ids ...string) []result.Hit {
	out := make([]result.Hit, len(ids))
	for i, id := range ids {
		out[i] = result.Hit{ChunkID: id, Score: 1 / float64(i+1)}
	}
	return out
}

func TestFuseRRF_BothLists(t *testing.T) {
	// c1: sem rank 1, lex rank 2 -> 1/61 + 1/62
	// c2: sem rank 2, lex absent -> 1/62
	// c3: sem absent, lex rank 1 -> 1/61
	ranked := fuseRRF(hits("c1", "c2"), hits("c3", "c1"), 60)

	if len(ranked) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(ranked))
	}
	if ranked[0].ChunkID != "c1" {
		t.Errorf("expected c1 first, got %s", ranked[0].ChunkID)
	}

	want := 1.0/61 + 1.0/62
	if math.Abs(ranked[0].Score-want) > 1e-12 {
		t.Errorf("c1 score = %v, want %v", ranked[0].Score, want)
	}
	if ranked[0].SemRank != 1 || ranked[0].LexRank != 2 {
		t.Errorf("c1 ranks = (%d, %d), want (1, 2)", ranked[0].SemRank, ranked[0].LexRank)
	}

	// c3 (lex rank 1, 1/61) beats c2 (sem rank 2, 1/62)
	if ranked[1].ChunkID != "c3" || ranked[2].ChunkID != "c2" {
		t.Errorf("tail order wrong: %s, %s", ranked[1].ChunkID, ranked[2].ChunkID)
	}
}

func TestFuseRRF_ExactTieBrokenByChunkID(t *testing.T) {
	// Mirror-image rankings: c1 gets 1/61 + 1/62 and c2 gets 1/62 + 1/61.
	// Scores and min ranks are identical, so the lower chunk ID wins.
	ranked := fuseRRF(hits("c1", "c2"), hits("c2", "c1"), 60)

	if len(ranked) != 2 {
		t.Fatalf("expected 2 fused hits, got %d", len(ranked))
	}
	if ranked[0].Score != ranked[1].Score {
		t.Fatalf("expected an exact tie, got %v vs %v", ranked[0].Score, ranked[1].Score)
	}
	if ranked[0].ChunkID != "c1" || ranked[1].ChunkID != "c2" {
		t.Errorf("tie not broken by chunk ID: %s, %s", ranked[0].ChunkID, ranked[1].ChunkID)
	}
}

func TestFuseRRF_TieBrokenByMinRankFirst(t *testing.T) {
	// z: sem rank 1 only; a: lex rank 1 only with same score.
	// Same score and same min rank -> chunk ID decides.
	ranked := fuseRRF(hits("z"), hits("a"), 60)
	if ranked[0].ChunkID != "a" {
		t.Errorf("expected a first on equal score and min rank, got %s", ranked[0].ChunkID)
	}

	// b at sem rank 1 vs deep: lex... construct score tie with differing min
	// rank is impossible with single-entry lists, so assert MinRank directly.
	r := result.Ranked{ChunkID: "x", SemRank: 3, LexRank: 1}
	if r.MinRank() != 1 {
		t.Errorf("MinRank = %d, want 1", r.MinRank())
	}
	r = result.Ranked{ChunkID: "y", SemRank: 2}
	if r.MinRank() != 2 {
		t.Errorf("MinRank with absent lexical = %d, want 2", r.MinRank())
	}
}

func TestFuseRRF_SingleList(t *testing.T) {
	ranked := fuseRRF(nil, hits("c1", "c2", "c3"), 60)

	if len(ranked) != 3 {
		t.Fatalf("expected 3, got %d", len(ranked))
	}
	for i, r := range ranked {
		if r.SemRank != 0 {
			t.Errorf("SemRank must be 0 for absent source, got %d", r.SemRank)
		}
		want := 1 / float64(60+i+1)
		if math.Abs(r.Score-want) > 1e-12 {
			t.Errorf("rank %d score = %v, want %v", i+1, r.Score, want)
		}
	}
}

func TestFuseRRF_Empty(t *testing.T) {
	if ranked := fuseRRF(nil, nil, 60); len(ranked) != 0 {
		t.Errorf("expected empty fusion, got %v", ranked)
	}
}

func TestFuseRRF_Deterministic(t *testing.T) {
	sem := hits("c1", "c2", "c3", "c4", "c5")
	lex := hits("c5", "c3", "c6", "c1")

	first := fuseRRF(sem, lex, 60)
	for i := 0; i < 10; i++ {
		again := fuseRRF(sem, lex, 60)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("fusion not deterministic at position %d: %+v vs %+v", j, first[j], again[j])
			}
		}
	}
}
