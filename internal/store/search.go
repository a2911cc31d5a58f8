package store

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/personakit/memory/internal/quantize"
)

// LexicalSearch runs an FTS5 MATCH over the persona's memories ranked by
// bm25. Returned scores are negated bm25 ranks, so higher means more
// relevant.
func (s *SQLiteStore) LexicalSearch(ctx context.Context, personaID, query string, limit int) ([]LexicalHit, error) {
	if limit <= 0 {
		limit = 20
	}

	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, bm25(memories_fts) AS rank
		FROM memories_fts f
		JOIN memories m ON m.rowid = f.rowid
		WHERE memories_fts MATCH ? AND m.persona_id = ?
		ORDER BY rank
		LIMIT ?`, match, personaID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []LexicalHit
	for rows.Next() {
		var h LexicalHit
		var rank float64
		if err := rows.Scan(&h.MemoryID, &rank); err != nil {
			return nil, err
		}
		// bm25() reports better matches as more negative.
		h.Score = -rank
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ftsQuery turns free text into an OR match expression of quoted terms, so
// user punctuation can never leak into FTS5 syntax.
func ftsQuery(query string) string {
	var terms []string
	for _, w := range strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if len(w) < 2 {
			continue
		}
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " OR ")
}

// VectorScan linearly scans the persona's quantized vectors and returns the
// top-limit by cosine similarity. Linear scan is a known scalability limit;
// at the per-persona row counts this store sees it beats maintaining an
// approximate index.
func (s *SQLiteStore) VectorScan(ctx context.Context, personaID string, query quantize.Vector, limit int) ([]VectorHit, error) {
	if limit <= 0 {
		limit = 20
	}
	if query.Dim() == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.memory_id, v.data, v.scale
		FROM memory_vectors v
		JOIN memories m ON m.id = v.memory_id
		WHERE m.persona_id = ? AND v.dim = ?`, personaID, query.Dim())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []VectorHit
	for rows.Next() {
		var id string
		var data []byte
		var scale float64
		if err := rows.Scan(&id, &data, &scale); err != nil {
			return nil, err
		}
		stored := quantize.Vector{Data: data, Scale: float32(scale)}
		hits = append(hits, VectorHit{MemoryID: id, Score: quantize.Cosine(query, stored)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].MemoryID < hits[j].MemoryID
		}
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
