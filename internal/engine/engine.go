// Package engine exposes the memory engine facade: the single entry point
// external collaborators use to ingest turns, query memories, and build
// context bundles.
package engine

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/personakit/memory/internal/config"
	"github.com/personakit/memory/internal/embed"
	"github.com/personakit/memory/internal/ingest"
	"github.com/personakit/memory/internal/model"
	"github.com/personakit/memory/internal/retrieve"
	"github.com/personakit/memory/internal/store"
	"github.com/personakit/memory/internal/tokens"
)

// maxBufferedTurns bounds the per-chat short-term ring buffer.
const maxBufferedTurns = 32

// Engine gates every operation on the persona's enable flag and delegates
// to the Ingestor and Retriever, which never see the flag themselves.
type Engine struct {
	store     store.Store
	ingestor  *ingest.Ingestor
	retriever *retrieve.Retriever
	counter   tokens.Counter
	cfg       config.Config
	logger    *zap.Logger

	// Short-term conversation window, per chat. In-memory only: turns are
	// never persisted.
	mu    sync.Mutex
	turns map[string][]model.ChatTurn

	ownedStore *store.SQLiteStore
}

// New wires an Engine from its parts. A nil counter falls back to the
// chars/4 heuristic; a nil logger disables logging.
func New(st store.Store, ids ingest.IDSource, embedder embed.Embedder, cfg config.Config, counter tokens.Counter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if counter == nil {
		counter = tokens.Heuristic{}
	}
	return &Engine{
		store:     st,
		ingestor:  ingest.New(st, ids, embedder, cfg, logger),
		retriever: retrieve.New(st, embedder, cfg, logger),
		counter:   counter,
		cfg:       cfg,
		logger:    logger.With(zap.String("component", "engine")),
		turns:     make(map[string][]model.ChatTurn),
	}
}

// Open creates a SQLite-backed engine at dbPath. Close releases the store.
func Open(dbPath string, embedder embed.Embedder, cfg config.Config, logger *zap.Logger) (*Engine, error) {
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return nil, err
	}
	e := New(st, st, embedder, cfg, nil, logger)
	e.ownedStore = st
	return e, nil
}

// Close releases the underlying store if the engine opened it.
func (e *Engine) Close() error {
	if e.ownedStore != nil {
		return e.ownedStore.Close()
	}
	return nil
}

// SetEnabled flips the persona's memory gate.
func (e *Engine) SetEnabled(ctx context.Context, personaID string, enabled bool) error {
	if strings.TrimSpace(personaID) == "" {
		return model.ErrInvalidInput
	}
	if err := e.store.SetEnabled(ctx, personaID, enabled); err != nil {
		return &model.StorageError{Op: "set enabled", Err: err}
	}
	return nil
}

// Enabled reports the persona's memory gate. The flag is read from storage
// on every call so separate engine instances stay consistent.
func (e *Engine) Enabled(ctx context.Context, personaID string) (bool, error) {
	on, err := e.store.Enabled(ctx, personaID)
	if err != nil {
		return false, &model.StorageError{Op: "read enabled", Err: err}
	}
	return on, nil
}

// Ingest extracts memories from the turn. Disabled personas get a no-op
// outcome; incognito suppresses all persistence including the short-term
// window.
func (e *Engine) Ingest(ctx context.Context, personaID string, turn model.ChatTurn, incognito bool) (model.IngestResult, error) {
	if strings.TrimSpace(personaID) == "" || turn.Empty() {
		return model.IngestResult{}, model.ErrInvalidInput
	}

	on, err := e.Enabled(ctx, personaID)
	if err != nil {
		return model.IngestResult{}, err
	}
	if !on {
		return model.IngestResult{Status: model.StatusSkippedDisabled}, nil
	}

	if incognito {
		return model.IngestResult{Status: model.StatusSkippedIncognito}, nil
	}

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	e.recordTurn(turn)

	return e.ingestor.Ingest(ctx, personaID, turn, false)
}

// Retrieve returns up to k ranked memories, or an empty result when the
// persona is disabled.
func (e *Engine) Retrieve(ctx context.Context, personaID, queryText string, k int) ([]model.MemoryHit, error) {
	on, err := e.Enabled(ctx, personaID)
	if err != nil {
		return nil, err
	}
	if !on {
		return nil, nil
	}
	return e.retriever.Retrieve(ctx, personaID, queryText, k)
}

// DeleteMemory removes one memory and its vector/lexical entries.
func (e *Engine) DeleteMemory(ctx context.Context, personaID, id string) error {
	return e.store.DeleteMemory(ctx, personaID, id)
}

// CountMemories returns the persona's total memory count.
func (e *Engine) CountMemories(ctx context.Context, personaID string) (int, error) {
	return e.store.CountMemories(ctx, personaID)
}

// CountMemoriesByKind returns the persona's count for one kind.
func (e *Engine) CountMemoriesByKind(ctx context.Context, personaID string, kind model.MemoryKind) (int, error) {
	return e.store.CountMemoriesByKind(ctx, personaID, kind)
}

func (e *Engine) recordTurn(turn model.ChatTurn) {
	if turn.ChatID == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	buf := append(e.turns[turn.ChatID], turn)
	if len(buf) > maxBufferedTurns {
		buf = buf[len(buf)-maxBufferedTurns:]
	}
	e.turns[turn.ChatID] = buf
}

func (e *Engine) recentTurns(chatID string, n int) []model.ChatTurn {
	e.mu.Lock()
	defer e.mu.Unlock()

	buf := e.turns[chatID]
	if n <= 0 || n > len(buf) {
		n = len(buf)
	}
	out := make([]model.ChatTurn, n)
	copy(out, buf[len(buf)-n:])
	return out
}
