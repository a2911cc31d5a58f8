// Package retrieve executes hybrid lexical+vector queries and blends the
// results into one ranking.
package retrieve

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/personakit/memory/internal/config"
	"github.com/personakit/memory/internal/embed"
	"github.com/personakit/memory/internal/model"
	"github.com/personakit/memory/internal/quantize"
	"github.com/personakit/memory/internal/store"
)

// Retriever merges lexical search and vector scan into a blended ranking:
//
//	score = w1*normalizedLexical + w2*cosine + w3*recency + w4*importance
type Retriever struct {
	store    store.Store
	embedder embed.Embedder
	cfg      config.Config
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Retriever. A nil logger disables logging.
func New(st store.Store, embedder embed.Embedder, cfg config.Config, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		store:    st,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger.With(zap.String("component", "retrieve")),
		now:      time.Now,
	}
}

// Retrieve returns up to k memories ranked by blended score. With fewer
// than k memories it returns what exists; an empty store yields an empty
// result, never an error. An embedding failure degrades to lexical-only.
func (r *Retriever) Retrieve(ctx context.Context, personaID, queryText string, k int) ([]model.MemoryHit, error) {
	if strings.TrimSpace(personaID) == "" {
		return nil, model.ErrInvalidInput
	}
	if k <= 0 {
		k = r.cfg.MaxHits
	}
	fetch := k * r.cfg.CandidateMultiplier
	if fetch < k {
		fetch = k
	}

	var (
		lexical []store.LexicalHit
		vector  []store.VectorHit
	)

	// The two paths are independent; the slow one (embedding) must not
	// block the lexical path.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := r.store.LexicalSearch(gctx, personaID, queryText, fetch)
		if err != nil {
			return &model.StorageError{Op: "lexical search", Err: err}
		}
		lexical = hits
		return nil
	})
	g.Go(func() error {
		qv, err := r.embedder.Embed(gctx, queryText)
		if err != nil {
			// Recoverable: fall back to lexical-only ranking.
			r.logger.Warn("query embedding failed, lexical-only retrieval",
				zap.String("persona_id", personaID), zap.Error(err))
			return nil
		}
		q, err := quantize.Quantize(qv)
		if err != nil {
			r.logger.Warn("query quantization failed", zap.Error(err))
			return nil
		}
		hits, err := r.store.VectorScan(gctx, personaID, q, fetch)
		if err != nil {
			return &model.StorageError{Op: "vector scan", Err: err}
		}
		vector = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return r.blend(ctx, personaID, lexical, vector, k)
}

type blended struct {
	lexical float64
	cosine  float64
}

func (r *Retriever) blend(ctx context.Context, personaID string, lexical []store.LexicalHit, vector []store.VectorHit, k int) ([]model.MemoryHit, error) {
	merged := make(map[string]*blended)
	var maxLexical float64
	for _, h := range lexical {
		merged[h.MemoryID] = &blended{lexical: h.Score}
		if h.Score > maxLexical {
			maxLexical = h.Score
		}
	}
	for _, h := range vector {
		if b, ok := merged[h.MemoryID]; ok {
			b.cosine = h.Score
		} else {
			merged[h.MemoryID] = &blended{cosine: h.Score}
		}
	}
	if len(merged) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	memories, err := r.store.GetMemories(ctx, personaID, ids)
	if err != nil {
		return nil, &model.StorageError{Op: "load hits", Err: err}
	}

	now := r.now()
	hits := make([]model.MemoryHit, 0, len(memories))
	for _, m := range memories {
		b := merged[m.ID]

		lexNorm := 0.0
		if maxLexical > 0 {
			lexNorm = b.lexical / maxLexical
		}
		cosine := b.cosine
		if cosine < 0 {
			cosine = 0
		}

		score := r.cfg.LexicalWeight*lexNorm +
			r.cfg.VectorWeight*cosine +
			r.cfg.RecencyWeight*r.recency(now, m.CreatedAt) +
			r.cfg.ImportanceWeight*m.Importance

		hits = append(hits, model.MemoryHit{Memory: m, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		// Deterministic ties: newer first, then id.
		ti, tj := hits[i].Memory.CreatedAt, hits[j].Memory.CreatedAt
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return hits[i].Memory.ID < hits[j].Memory.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// recency decays exponentially with the configured half-life: 1.0 now, 0.5
// after one half-life, and so on.
func (r *Retriever) recency(now, createdAt time.Time) float64 {
	age := now.Sub(createdAt)
	if age <= 0 {
		return 1
	}
	halfLife := r.cfg.RecencyHalfLife.Std()
	if halfLife <= 0 {
		return 1
	}
	return math.Exp(-math.Ln2 * age.Seconds() / halfLife.Seconds())
}
