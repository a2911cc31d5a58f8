package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string         `json:"db_path"`
	DBSizeBytes   int64          `json:"db_size_bytes"`
	TotalMemories int            `json:"total_memories"`
	TotalVectors  int            `json:"total_vectors"`
	Personas      []PersonaStats `json:"personas"`
}

// PersonaStats holds per-persona counts.
type PersonaStats struct {
	PersonaID string `json:"persona_id"`
	Count     int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.TotalMemories)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_vectors`).Scan(&st.TotalVectors)

	rows, err := s.db.QueryContext(ctx, `
		SELECT persona_id, COUNT(*) AS cnt
		FROM memories
		GROUP BY persona_id ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var p PersonaStats
		rows.Scan(&p.PersonaID, &p.Count)
		st.Personas = append(st.Personas, p)
	}

	return st, nil
}
