package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/personakit/memory/internal/model"
)

// BuildContext assembles the prompt payload for a message: the last window
// turns of the chat verbatim, plus ranked long-term memories for the
// message, deduplicated against the short-term section and truncated to the
// configured hit and token budgets.
//
// A failed retrieval degrades to an empty long-term section; it never
// blocks message sending.
func (e *Engine) BuildContext(ctx context.Context, personaID, chatID, message string, window int) (model.ContextBundle, error) {
	if window <= 0 {
		window = e.cfg.ShortTermWindow
	}

	bundle := model.ContextBundle{
		ShortTerm: e.recentTurns(chatID, window),
	}

	hits, err := e.Retrieve(ctx, personaID, message, e.cfg.MaxHits)
	if err != nil {
		e.logger.Warn("retrieval failed, empty long-term context",
			zap.String("persona_id", personaID), zap.Error(err))
		return bundle, nil
	}

	bundle.LongTerm = e.budgetHits(e.excludeShortTermSources(bundle.ShortTerm, hits))
	return bundle, nil
}

// excludeShortTermSources drops memories extracted from turns that already
// appear verbatim in the short-term section.
func (e *Engine) excludeShortTermSources(shortTerm []model.ChatTurn, hits []model.MemoryHit) []model.MemoryHit {
	if len(shortTerm) == 0 || len(hits) == 0 {
		return hits
	}
	seen := make(map[string]struct{}, len(shortTerm))
	for _, t := range shortTerm {
		if t.ID != "" {
			seen[t.ID] = struct{}{}
		}
	}

	out := hits[:0]
	for _, h := range hits {
		if _, dup := seen[h.Memory.SourceMessageID]; dup {
			continue
		}
		out = append(out, h)
	}
	return out
}

// budgetHits truncates from the bottom: hits arrive ordered by descending
// score, so the lowest-scored entries fall off first.
func (e *Engine) budgetHits(hits []model.MemoryHit) []model.MemoryHit {
	if len(hits) > e.cfg.MaxHits {
		hits = hits[:e.cfg.MaxHits]
	}
	if e.cfg.MaxContextTokens <= 0 {
		return hits
	}

	used := 0
	for i, h := range hits {
		cost := e.counter.Count(h.Memory.Text)
		if used+cost > e.cfg.MaxContextTokens {
			return hits[:i]
		}
		used += cost
	}
	return hits
}
