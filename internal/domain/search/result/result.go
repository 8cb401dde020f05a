// Package result holds the search hit types shared between the fusion engine,
// its two candidate sources, and the transport layer.
package result

// Hit is a ranked candidate from a single source. Score scales differ between
// sources (cosine similarity vs BM25) and are never compared directly.
type Hit struct {
	ChunkID string
	Score   float64
}

// Ranked is a fused hit. SemRank and LexRank are 1-based positions in the
// semantic and lexical candidate lists; 0 means absent from that list.
type Ranked struct {
	ChunkID string
	Score   float64
	SemRank int
	LexRank int
}

// MinRank returns the better (lower) of the two source ranks, ignoring absent
// sources. Used for deterministic tie-breaking.
func (r Ranked) MinRank() int {
	switch {
	case r.SemRank == 0:
		return r.LexRank
	case r.LexRank == 0:
		return r.SemRank
	case r.SemRank < r.LexRank:
		return r.SemRank
	default:
		return r.LexRank
	}
}

// Payload is the stored chunk state needed to turn a ranked hit into a
// response. Both the vector store and the registry can produce one.
type Payload struct {
	Content    string
	DocumentID string
	Filename   string
	Source     string
	Category   string
	Client     string
	ChunkIndex int
}

// Resolved is a fused hit with its stored payload attached, ready for the
// response.
type Resolved struct {
	ChunkID    string
	Score      float64
	Content    string
	DocumentID string
	Filename   string
	Source     string
	Category   string
	Client     string
	ChunkIndex int
}
