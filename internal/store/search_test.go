package store

import (
	"context"
	"testing"
	"time"

	"github.com/personakit/memory/internal/model"
	"github.com/personakit/memory/internal/quantize"
)

func insertWithVector(t *testing.T, s *SQLiteStore, personaID, text string, v []float32) model.Memory {
	t.Helper()
	mem := model.Memory{
		ID:         s.NewID(),
		PersonaID:  personaID,
		Text:       text,
		Kind:       model.KindOther,
		Emotion:    model.EmotionNeutral,
		Importance: 0.5,
		CreatedAt:  time.Now().UTC(),
	}
	vec, err := quantize.Quantize(v)
	if err != nil {
		t.Fatalf("quantize: %v", err)
	}
	if err := s.InsertMemory(context.Background(), mem, vec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return mem
}

func TestLexicalSearchRanksMatches(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	hiking := insertWithVector(t, s, "p1", "the user loves hiking in the mountains", []float32{1, 0, 0})
	insertWithVector(t, s, "p1", "the user works as a data engineer", []float32{0, 1, 0})

	hits, err := s.LexicalSearch(ctx, "p1", "hiking mountains", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	if hits[0].MemoryID != hiking.ID {
		t.Errorf("expected hiking memory first, got %s", hits[0].MemoryID)
	}
	if hits[0].Score <= 0 {
		t.Errorf("expected positive score, got %g", hits[0].Score)
	}
}

func TestLexicalSearchPersonaIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	insertWithVector(t, s, "p1", "confidential secret project alpha", []float32{1, 0, 0})

	hits, err := s.LexicalSearch(ctx, "p2", "secret project", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no cross-persona hits, got %v", hits)
	}
}

func TestLexicalSearchHandlesPunctuation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	insertWithVector(t, s, "p1", "the user likes coffee in the morning", []float32{1, 0, 0})

	// FTS5 operators and quotes in the raw query must not break MATCH.
	for _, q := range []string{`coffee AND "morning"`, `coffee OR (NEAR`, `"co"ffee`, `***`, ``} {
		if _, err := s.LexicalSearch(ctx, "p1", q, 10); err != nil {
			t.Errorf("query %q errored: %v", q, err)
		}
	}
}

func TestVectorScanOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	near := insertWithVector(t, s, "p1", "almost parallel vector", []float32{0.9, 0.1, 0})
	insertWithVector(t, s, "p1", "orthogonal vector", []float32{0, 0, 1})

	q, _ := quantize.Quantize([]float32{1, 0, 0})
	hits, err := s.VectorScan(ctx, "p1", q, 10)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].MemoryID != near.ID {
		t.Errorf("expected near vector first")
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("expected descending scores: %g then %g", hits[0].Score, hits[1].Score)
	}
}

func TestVectorScanPersonaIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	insertWithVector(t, s, "p1", "p1 owned vector", []float32{1, 0, 0})

	q, _ := quantize.Quantize([]float32{1, 0, 0})
	hits, err := s.VectorScan(ctx, "p2", q, 10)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no cross-persona hits, got %v", hits)
	}
}

func TestVectorScanLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		insertWithVector(t, s, "p1", "vector row", []float32{1, float32(i) * 0.1, 0})
	}

	q, _ := quantize.Quantize([]float32{1, 0, 0})
	hits, err := s.VectorScan(ctx, "p1", q, 3)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("expected 3 hits, got %d", len(hits))
	}
}

func TestVectorScanSkipsMismatchedDims(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	insertWithVector(t, s, "p1", "three dim vector", []float32{1, 0, 0})

	q, _ := quantize.Quantize([]float32{1, 0, 0, 0})
	hits, err := s.VectorScan(ctx, "p1", q, 10)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected mismatched dims filtered out, got %v", hits)
	}
}
