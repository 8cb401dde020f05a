package search

import (
	"sort"

	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

// fuseRRF merges the two candidate lists via Reciprocal Rank Fusion:
// score(c) = sum over lists containing c of 1/(k + rank), ranks 1-based.
// A chunk absent from one list gets no contribution from it.
// The returned order is fully deterministic: fused score descending, then the
// better (lower) single-list rank, then ascending chunk ID.
func fuseRRF(sem, lex []result.Hit, k int) []result.Ranked {
	merged := make(map[string]*result.Ranked, len(sem)+len(lex))

	for i, h := range sem {
		rank := i + 1
		merged[h.ChunkID] = &result.Ranked{
			ChunkID: h.ChunkID,
			Score:   1 / float64(k+rank),
			SemRank: rank,
		}
	}

	for i, h := range lex {
		rank := i + 1
		if e, ok := merged[h.ChunkID]; ok {
			e.Score += 1 / float64(k+rank)
			e.LexRank = rank
			continue
		}
		merged[h.ChunkID] = &result.Ranked{
			ChunkID: h.ChunkID,
			Score:   1 / float64(k+rank),
			LexRank: rank,
		}
	}

	ranked := make([]result.Ranked, 0, len(merged))
	for _, e := range merged {
		ranked = append(ranked, *e)
	}

	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		if ra, rb := ranked[a].MinRank(), ranked[b].MinRank(); ra != rb {
			return ra < rb
		}
		return ranked[a].ChunkID < ranked[b].ChunkID
	})

	return ranked
}
