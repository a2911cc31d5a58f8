// Package store provides the persona-scoped memory storage interface and
// its SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/personakit/memory/internal/model"
	"github.com/personakit/memory/internal/quantize"
)

// ErrNotFound is returned when a memory does not exist for the persona.
var ErrNotFound = errors.New("memory not found")

// LexicalHit is one ranked result from full-text search. Higher score means
// more relevant.
type LexicalHit struct {
	MemoryID string
	Score    float64
}

// VectorHit is one ranked result from the vector scan. Score is cosine
// similarity in [-1, 1].
type VectorHit struct {
	MemoryID string
	Score    float64
}

// Store is the durable memory store. Every operation is scoped by persona:
// no call can read or write another persona's rows.
type Store interface {
	// InsertMemory atomically writes the memory together with its quantized
	// vector and lexical index entry. No reader ever observes a partial
	// triplet.
	InsertMemory(ctx context.Context, mem model.Memory, vec quantize.Vector) error

	// GetMemory returns one memory by id, or ErrNotFound.
	GetMemory(ctx context.Context, personaID, id string) (model.Memory, error)

	// GetMemories returns the subset of ids that exist for the persona.
	GetMemories(ctx context.Context, personaID string, ids []string) ([]model.Memory, error)

	// DeleteMemory removes the memory, its vector, and its lexical entry.
	DeleteMemory(ctx context.Context, personaID, id string) error

	// RecentMemories returns up to n newest memories for dedup comparison.
	RecentMemories(ctx context.Context, personaID string, n int) ([]model.Memory, error)

	// UpdateImportance raises a memory's importance; it never lowers it.
	UpdateImportance(ctx context.Context, personaID, id string, importance float64) error

	// CountMemories returns the persona's total memory count.
	CountMemories(ctx context.Context, personaID string) (int, error)

	// CountMemoriesByKind returns the persona's count for one kind.
	CountMemoriesByKind(ctx context.Context, personaID string, kind model.MemoryKind) (int, error)

	// LexicalSearch runs ranked full-text search over the persona's
	// memories.
	LexicalSearch(ctx context.Context, personaID, query string, limit int) ([]LexicalHit, error)

	// VectorScan returns the top-limit memories by quantized cosine
	// similarity to the query vector.
	VectorScan(ctx context.Context, personaID string, query quantize.Vector, limit int) ([]VectorHit, error)

	// Enabled reads the persona's enable flag. Missing flag means enabled.
	Enabled(ctx context.Context, personaID string) (bool, error)

	// SetEnabled writes the persona's enable flag.
	SetEnabled(ctx context.Context, personaID string, enabled bool) error

	// Close closes the store.
	Close() error
}
