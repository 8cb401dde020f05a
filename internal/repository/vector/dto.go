package vector

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/lodestar-search/lodestar/internal/domain"
	"github.com/lodestar-search/lodestar/internal/domain/search/result"
)

// Hash field names for chunk entries. owner/document/source/category/client are
// TAG-indexed, chunk_index is NUMERIC, vector carries the embedding; content
// and filename are stored but not indexed.
const (
	fieldVector   = "vector"
	fieldOwner    = "owner"
	fieldDocument = "document"
	fieldIndex    = "chunk_index"
	fieldSource   = "source"
	fieldCategory = "category"
	fieldClient   = "client"
	fieldContent  = "content"
	fieldFilename = "filename"
)

// buildHashFields flattens a chunk and its embedding into HSET fields. Unset
// metadata fields are omitted entirely so tag filters never match empties.
func buildHashFields(chunk domain.Chunk, vec []float32, filename string) map[string]string {
	m := map[string]string{
		fieldVector:   vectorToBytes(vec),
		fieldOwner:    string(chunk.OwnerID),
		fieldDocument: chunk.DocumentID,
		fieldIndex:    strconv.Itoa(chunk.Index),
		fieldContent:  chunk.Text,
		fieldFilename: filename,
	}
	if chunk.Meta.Source != "" {
		m[fieldSource] = chunk.Meta.Source
	}
	if chunk.Meta.Category != "" {
		m[fieldCategory] = chunk.Meta.Category
	}
	if chunk.Meta.Client != "" {
		m[fieldClient] = chunk.Meta.Client
	}
	return m
}

// parsePayload reconstructs a payload from flat hash fields.
func parsePayload(fields map[string]string) result.Payload {
	idx, _ := strconv.Atoi(fields[fieldIndex])
	return result.Payload{
		Content:    fields[fieldContent],
		DocumentID: fields[fieldDocument],
		Filename:   fields[fieldFilename],
		ChunkIndex: idx,
		Source:     fields[fieldSource],
		Category:   fields[fieldCategory],
		Client:     fields[fieldClient],
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float,
// little-endian), the layout FT.SEARCH expects for $BLOB params.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
