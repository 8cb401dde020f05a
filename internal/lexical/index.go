// Package lexical maintains the per-user inverted term index used for keyword
// scoring. The index lives in memory and is rehydrated from the document
// registry on startup; every write is mirrored by registry state.
package lexical

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/filter"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

// BM25 parameters (standard Robertson/Spärck Jones defaults).
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

type chunkEntry struct {
	docID  string
	meta   domain.Metadata
	length int
	terms  map[string]int // term -> frequency within the chunk
}

// userIndex holds one tenant's postings and length statistics. The counter
// pair (totalLength, len(chunks)) is updated on both add and remove so the
// average never drifts.
type userIndex struct {
	postings    map[string]map[string]int // term -> chunkID -> tf
	chunks      map[string]*chunkEntry
	totalLength int
}

type docRef struct {
	owner    domain.UserID
	chunkIDs map[string]struct{}
}

// Index is the in-memory lexical index. Safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	users map[domain.UserID]*userIndex
	docs  map[string]docRef
}

// NewIndex creates an empty lexical index.
func NewIndex() *Index {
	return &Index{
		users: make(map[domain.UserID]*userIndex),
		docs:  make(map[string]docRef),
	}
}

// AddChunk tokenizes the chunk text and records its postings and length. A
// second add with the same chunk ID replaces the first; term frequencies are
// never double-counted.
func (i *Index) AddChunk(chunk domain.Chunk) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.addLocked(chunk)
}

// Rehydrate bulk-loads chunks under a single lock, used at startup to rebuild
// the index from registry rows.
func (i *Index) Rehydrate(chunks []domain.Chunk) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, c := range chunks {
		i.addLocked(c)
	}
}

func (i *Index) addLocked(chunk domain.Chunk) {
	// Replace semantics: drop any prior contribution under this chunk ID so a
	// duplicate add never double-counts term frequencies.
	i.removeChunkLocked(chunk.OwnerID, chunk.ID)

	ui := i.users[chunk.OwnerID]
	if ui == nil {
		ui = &userIndex{
			postings: make(map[string]map[string]int),
			chunks:   make(map[string]*chunkEntry),
		}
		i.users[chunk.OwnerID] = ui
	}

	tokens := Tokenize(chunk.Text)
	terms := make(map[string]int, len(tokens))
	for _, t := range tokens {
		terms[t]++
	}

	ui.chunks[chunk.ID] = &chunkEntry{
		docID:  chunk.DocumentID,
		meta:   chunk.Meta,
		length: len(tokens),
		terms:  terms,
	}
	ui.totalLength += len(tokens)

	for term, tf := range terms {
		posting := ui.postings[term]
		if posting == nil {
			posting = make(map[string]int)
			ui.postings[term] = posting
		}
		posting[chunk.ID] = tf
	}

	ref, ok := i.docs[chunk.DocumentID]
	if !ok {
		ref = docRef{owner: chunk.OwnerID, chunkIDs: make(map[string]struct{})}
		i.docs[chunk.DocumentID] = ref
	}
	ref.chunkIDs[chunk.ID] = struct{}{}
}

// RemoveDocument reverses every statistical contribution made by the
// document's chunks. Removing an unknown document is a no-op.
func (i *Index) RemoveDocument(docID string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	ref, ok := i.docs[docID]
	if !ok {
		return
	}
	for chunkID := range ref.chunkIDs {
		i.removeChunkLocked(ref.owner, chunkID)
	}
	delete(i.docs, docID)
}

func (i *Index) removeChunkLocked(owner domain.UserID, chunkID string) {
	ui := i.users[owner]
	if ui == nil {
		return
	}
	entry, ok := ui.chunks[chunkID]
	if !ok {
		return
	}

	for term := range entry.terms {
		delete(ui.postings[term], chunkID)
		if len(ui.postings[term]) == 0 {
			delete(ui.postings, term)
		}
	}
	ui.totalLength -= entry.length
	delete(ui.chunks, chunkID)

	if ref, ok := i.docs[entry.docID]; ok {
		delete(ref.chunkIDs, chunkID)
	}
	if len(ui.chunks) == 0 {
		delete(i.users, owner)
	}
}

// Search scores every chunk of the owner containing at least one query term
// with BM25, restricted to chunks matching the filter, and returns the top
// limit by descending score. Ties break by ascending chunk ID so repeated
// searches are reproducible.
func (i *Index) Search(
	ctx context.Context, owner domain.UserID, query string, f filter.Filter, limit int,
) ([]result.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 || limit <= 0 {
		return nil, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	ui := i.users[owner]
	if ui == nil || len(ui.chunks) == 0 {
		return nil, nil
	}

	n := float64(len(ui.chunks))
	avgLen := float64(ui.totalLength) / n

	scores := make(map[string]float64)
	for _, term := range tokens {
		posting := ui.postings[term]
		if len(posting) == 0 {
			continue
		}
		df := float64(len(posting))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))

		for chunkID, tf := range posting {
			entry := ui.chunks[chunkID]
			if !f.Matches(entry.meta.Source, entry.meta.Category, entry.meta.Client) {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(entry.length)/avgLen
			scores[chunkID] += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
		}
	}

	hits := make([]result.Hit, 0, len(scores))
	for chunkID, score := range scores {
		hits = append(hits, result.Hit{ChunkID: chunkID, Score: score})
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Stats returns the owner's chunk count and total token length. Used by tests
// and the health endpoint.
func (i *Index) Stats(owner domain.UserID) (chunks, totalLength int) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	ui := i.users[owner]
	if ui == nil {
		return 0, 0
	}
	return len(ui.chunks), ui.totalLength
}
