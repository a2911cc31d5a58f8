package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/personakit/memory/internal/model"
	"github.com/personakit/memory/internal/quantize"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"), nil)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testMemory(s *SQLiteStore, personaID, text string) (model.Memory, quantize.Vector) {
	mem := model.Memory{
		ID:         s.NewID(),
		PersonaID:  personaID,
		Text:       text,
		Kind:       model.KindOther,
		Emotion:    model.EmotionNeutral,
		Importance: 0.5,
		CreatedAt:  time.Now().UTC(),
	}
	vec, _ := quantize.Quantize([]float32{0.1, 0.2, 0.3, 0.4})
	return mem, vec
}

func TestInsertAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, vec := testMemory(s, "p1", "the user enjoys gardening")
	if err := s.InsertMemory(ctx, mem, vec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.GetMemory(ctx, "p1", mem.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != mem.Text {
		t.Errorf("expected %q, got %q", mem.Text, got.Text)
	}
	if got.Kind != model.KindOther || got.Emotion != model.EmotionNeutral {
		t.Errorf("kind/emotion not persisted: %+v", got)
	}
}

func TestGetWrongPersona(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, vec := testMemory(s, "p1", "belongs to p1")
	s.InsertMemory(ctx, mem, vec)

	_, err := s.GetMemory(ctx, "p2", mem.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound across personas, got %v", err)
	}
}

func TestInsertRequiresVector(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, _ := testMemory(s, "p1", "text")
	if err := s.InsertMemory(ctx, mem, quantize.Vector{}); err == nil {
		t.Error("expected error inserting memory without vector")
	}

	n, _ := s.CountMemories(ctx, "p1")
	if n != 0 {
		t.Errorf("expected no rows after failed insert, got %d", n)
	}
}

func TestDeleteRemovesTriplet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, vec := testMemory(s, "p1", "soon deleted memory text")
	s.InsertMemory(ctx, mem, vec)

	if err := s.DeleteMemory(ctx, "p1", mem.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.GetMemory(ctx, "p1", mem.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	hits, err := s.LexicalSearch(ctx, "p1", "deleted memory", 10)
	if err != nil {
		t.Fatalf("lexical search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected lexical index cleaned up, got %v", hits)
	}

	qv, _ := quantize.Quantize([]float32{0.1, 0.2, 0.3, 0.4})
	vhits, err := s.VectorScan(ctx, "p1", qv, 10)
	if err != nil {
		t.Fatalf("vector scan: %v", err)
	}
	if len(vhits) != 0 {
		t.Errorf("expected vector index cleaned up, got %v", vhits)
	}
}

func TestDeleteWrongPersona(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, vec := testMemory(s, "p1", "protected row")
	s.InsertMemory(ctx, mem, vec)

	if err := s.DeleteMemory(ctx, "p2", mem.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting across personas, got %v", err)
	}
	if n, _ := s.CountMemories(ctx, "p1"); n != 1 {
		t.Errorf("expected row to survive, count = %d", n)
	}
}

func TestRecentMemoriesOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, text := range []string{"oldest entry text", "middle entry text", "newest entry text"} {
		mem, vec := testMemory(s, "p1", text)
		mem.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		s.InsertMemory(ctx, mem, vec)
	}

	got, err := s.RecentMemories(ctx, "p1", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].Text != "newest entry text" {
		t.Errorf("expected newest first, got %q", got[0].Text)
	}
}

func TestUpdateImportanceNeverLowers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, vec := testMemory(s, "p1", "importance test")
	mem.Importance = 0.8
	s.InsertMemory(ctx, mem, vec)

	if err := s.UpdateImportance(ctx, "p1", mem.ID, 0.3); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetMemory(ctx, "p1", mem.ID)
	if got.Importance != 0.8 {
		t.Errorf("importance lowered to %g", got.Importance)
	}

	s.UpdateImportance(ctx, "p1", mem.ID, 0.9)
	got, _ = s.GetMemory(ctx, "p1", mem.ID)
	if got.Importance != 0.9 {
		t.Errorf("importance not raised, got %g", got.Importance)
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, kind := range []model.MemoryKind{model.KindFact, model.KindFact, model.KindPreference} {
		mem, vec := testMemory(s, "p1", "some text for "+string(kind))
		mem.Kind = kind
		s.InsertMemory(ctx, mem, vec)
	}
	otherMem, otherVec := testMemory(s, "p2", "other persona row")
	s.InsertMemory(ctx, otherMem, otherVec)

	if n, _ := s.CountMemories(ctx, "p1"); n != 3 {
		t.Errorf("expected 3 for p1, got %d", n)
	}
	if n, _ := s.CountMemoriesByKind(ctx, "p1", model.KindFact); n != 2 {
		t.Errorf("expected 2 facts, got %d", n)
	}
	if n, _ := s.CountMemories(ctx, "p2"); n != 1 {
		t.Errorf("expected 1 for p2, got %d", n)
	}
}

func TestEnabledFlag(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Missing flag defaults to enabled.
	on, err := s.Enabled(ctx, "p1")
	if err != nil {
		t.Fatalf("enabled: %v", err)
	}
	if !on {
		t.Error("expected default enabled")
	}

	s.SetEnabled(ctx, "p1", false)
	if on, _ := s.Enabled(ctx, "p1"); on {
		t.Error("expected disabled after SetEnabled(false)")
	}

	s.SetEnabled(ctx, "p1", true)
	if on, _ := s.Enabled(ctx, "p1"); !on {
		t.Error("expected enabled after SetEnabled(true)")
	}

	// Other personas are untouched.
	if on, _ := s.Enabled(ctx, "p2"); !on {
		t.Error("expected p2 unaffected")
	}
}

func TestGetMemoriesSubset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m1, v1 := testMemory(s, "p1", "first row")
	m2, v2 := testMemory(s, "p1", "second row")
	s.InsertMemory(ctx, m1, v1)
	s.InsertMemory(ctx, m2, v2)

	got, err := s.GetMemories(ctx, "p1", []string{m1.ID, m2.ID, "missing"})
	if err != nil {
		t.Fatalf("get memories: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2, got %d", len(got))
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath, nil)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
