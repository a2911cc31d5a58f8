// Package ingest turns conversation turns into persisted memories.
package ingest

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/personakit/memory/internal/classify"
	"github.com/personakit/memory/internal/config"
	"github.com/personakit/memory/internal/embed"
	"github.com/personakit/memory/internal/extract"
	"github.com/personakit/memory/internal/model"
	"github.com/personakit/memory/internal/quantize"
	"github.com/personakit/memory/internal/store"
)

// IDSource mints memory ids. *store.SQLiteStore satisfies it.
type IDSource interface {
	NewID() string
}

// Ingestor orchestrates turn -> candidates -> classification ->
// normalization -> dedup -> embedding -> atomic storage.
type Ingestor struct {
	store    store.Store
	ids      IDSource
	embedder embed.Embedder
	cfg      config.Config
	logger   *zap.Logger
}

// New creates an Ingestor. A nil logger disables logging.
func New(st store.Store, ids IDSource, embedder embed.Embedder, cfg config.Config, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		store:    st,
		ids:      ids,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "ingest")),
	}
}

// Ingest extracts and persists memories from one turn.
//
// Incognito is a hard privacy contract: nothing is read or written. An
// embedding failure drops only the affected candidate; a storage failure
// aborts and propagates, leaving no partial triplet behind.
func (in *Ingestor) Ingest(ctx context.Context, personaID string, turn model.ChatTurn, incognito bool) (model.IngestResult, error) {
	if strings.TrimSpace(personaID) == "" {
		return model.IngestResult{}, model.ErrInvalidInput
	}
	if turn.Empty() {
		return model.IngestResult{}, model.ErrInvalidInput
	}

	if incognito {
		return model.IngestResult{Status: model.StatusSkippedIncognito}, nil
	}

	candidates := extract.Extract(turn, extract.Options{
		MinUserWords:      in.cfg.MinUserWords,
		MinAssistantWords: in.cfg.MinAssistantWords,
	})
	if len(candidates) == 0 {
		return model.IngestResult{Status: model.StatusNoCandidates}, nil
	}

	// One dedup window read serves all candidates of the turn.
	recent, err := in.store.RecentMemories(ctx, personaID, in.cfg.DedupWindow)
	if err != nil {
		return model.IngestResult{}, &model.StorageError{Op: "recent", Err: err}
	}

	result := model.IngestResult{Status: model.StatusNoCandidates}
	for _, cand := range candidates {
		text := extract.Normalize(cand.Text, in.cfg.MaxTextLen)
		if text == "" {
			continue
		}

		if dup := in.findDuplicate(text, recent); dup != nil {
			// Merge policy: the existing row absorbs the candidate's
			// importance; no new row is created.
			cls := classify.Classify(text)
			if err := in.store.UpdateImportance(ctx, personaID, dup.ID, cls.Importance); err != nil {
				return result, &model.StorageError{Op: "merge", Err: err}
			}
			result.Merged++
			result.Status = model.StatusSaved
			continue
		}

		mem, err := in.buildMemory(ctx, personaID, turn, text)
		if err != nil {
			// Embedding failure drops this candidate only.
			in.logger.Warn("candidate dropped",
				zap.String("persona_id", personaID),
				zap.Error(err))
			result.Dropped++
			continue
		}

		vec, err := quantize.Quantize(mem.vector)
		if err != nil {
			in.logger.Warn("candidate dropped", zap.String("persona_id", personaID), zap.Error(err))
			result.Dropped++
			continue
		}

		if err := in.store.InsertMemory(ctx, mem.memory, vec); err != nil {
			return result, &model.StorageError{Op: "insert", Err: err}
		}

		result.Created++
		result.Status = model.StatusSaved
		result.MemoryIDs = append(result.MemoryIDs, mem.memory.ID)
		recent = append([]model.Memory{mem.memory}, recent...)
	}

	return result, nil
}

type builtMemory struct {
	memory model.Memory
	vector embed.Vector
}

func (in *Ingestor) buildMemory(ctx context.Context, personaID string, turn model.ChatTurn, text string) (builtMemory, error) {
	cls := classify.Classify(text)

	vector, err := in.embedder.Embed(ctx, text)
	if err != nil {
		return builtMemory{}, &model.EmbeddingError{Err: err}
	}

	createdAt := turn.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return builtMemory{
		memory: model.Memory{
			ID:              in.ids.NewID(),
			PersonaID:       personaID,
			Text:            text,
			Kind:            cls.Kind,
			Emotion:         cls.Emotion,
			Importance:      cls.Importance,
			CreatedAt:       createdAt.UTC(),
			SourceChatID:    turn.ChatID,
			SourceMessageID: turn.ID,
		},
		vector: vector,
	}, nil
}

func (in *Ingestor) findDuplicate(text string, recent []model.Memory) *model.Memory {
	for i := range recent {
		if extract.Similarity(text, recent[i].Text) >= in.cfg.DedupThreshold {
			return &recent[i]
		}
	}
	return nil
}
