package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/personakit/memory/internal/model"
	"github.com/personakit/memory/internal/quantize"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// A nil logger disables logging.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		logger:  logger.With(zap.String("component", "store")),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// NewID returns a fresh ULID for a memory row.
func (s *SQLiteStore) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id                TEXT PRIMARY KEY,
		persona_id        TEXT NOT NULL,
		text              TEXT NOT NULL,
		kind              TEXT NOT NULL DEFAULT 'other',
		emotion           TEXT NOT NULL DEFAULT 'neutral',
		importance        REAL NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		source_chat_id    TEXT NOT NULL DEFAULT '',
		source_message_id TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_memories_persona_created ON memories(persona_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_persona_kind ON memories(persona_id, kind);

	CREATE TABLE IF NOT EXISTS memory_vectors (
		memory_id TEXT PRIMARY KEY REFERENCES memories(id) ON DELETE CASCADE,
		dim       INTEGER NOT NULL,
		data      BLOB NOT NULL,
		scale     REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
		text,
		content=memories,
		content_rowid=rowid,
		tokenize='unicode61 remove_diacritics 2'
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers keep the lexical index in lockstep with memories.
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
			INSERT INTO memories_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
			INSERT INTO memories_fts(memories_fts, rowid, text) VALUES('delete', old.rowid, old.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE OF text ON memories BEGIN
			INSERT INTO memories_fts(memories_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			INSERT INTO memories_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
	}
	for _, t := range triggers {
		if _, err := s.db.Exec(t); err != nil {
			return err
		}
	}

	return nil
}

// InsertMemory writes the memory row and its quantized vector in a single
// transaction; the FTS trigger adds the lexical entry within the same
// transaction, so the triplet commits or rolls back as one unit.
func (s *SQLiteStore) InsertMemory(ctx context.Context, mem model.Memory, vec quantize.Vector) error {
	if mem.ID == "" || mem.PersonaID == "" {
		return fmt.Errorf("insert memory: id and persona id are required")
	}
	if vec.Dim() == 0 {
		return fmt.Errorf("insert memory: vector is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memories (id, persona_id, text, kind, emotion, importance, created_at, source_chat_id, source_message_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mem.ID, mem.PersonaID, mem.Text, string(mem.Kind), string(mem.Emotion),
		mem.Importance, mem.CreatedAt.UTC().Format(time.RFC3339Nano),
		mem.SourceChatID, mem.SourceMessageID)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memory_vectors (memory_id, dim, data, scale) VALUES (?, ?, ?, ?)`,
		mem.ID, vec.Dim(), vec.Data, vec.Scale)
	if err != nil {
		return fmt.Errorf("insert vector: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetMemory(ctx context.Context, personaID, id string) (model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, persona_id, text, kind, emotion, importance, created_at, source_chat_id, source_message_id
		 FROM memories WHERE persona_id = ? AND id = ?`, personaID, id)

	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return model.Memory{}, ErrNotFound
	}
	if err != nil {
		return model.Memory{}, err
	}
	return m, nil
}

func (s *SQLiteStore) GetMemories(ctx context.Context, personaID string, ids []string) ([]model.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, personaID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, persona_id, text, kind, emotion, importance, created_at, source_chat_id, source_message_id
		 FROM memories WHERE persona_id = ? AND id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (s *SQLiteStore) DeleteMemory(ctx context.Context, personaID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The persona filter is part of the delete itself so one persona can
	// never delete another's row by id.
	res, err := tx.ExecContext(ctx,
		`DELETE FROM memories WHERE persona_id = ? AND id = ?`, personaID, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM memory_vectors WHERE memory_id = ?`, id); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) RecentMemories(ctx context.Context, personaID string, n int) ([]model.Memory, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, persona_id, text, kind, emotion, importance, created_at, source_chat_id, source_message_id
		 FROM memories WHERE persona_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, personaID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

func (s *SQLiteStore) UpdateImportance(ctx context.Context, personaID, id string, importance float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET importance = MAX(importance, ?) WHERE persona_id = ? AND id = ?`,
		importance, personaID, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CountMemories(ctx context.Context, personaID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE persona_id = ?`, personaID).Scan(&n)
	return n, err
}

func (s *SQLiteStore) CountMemoriesByKind(ctx context.Context, personaID string, kind model.MemoryKind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE persona_id = ? AND kind = ?`,
		personaID, string(kind)).Scan(&n)
	return n, err
}

const enabledKeyPrefix = "persona_enabled:"

// Enabled reads the persona's flag from settings. A missing key means
// enabled; the flag is read fresh on every call, never cached.
func (s *SQLiteStore) Enabled(ctx context.Context, personaID string) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, enabledKeyPrefix+personaID).Scan(&value)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

func (s *SQLiteStore) SetEnabled(ctx context.Context, personaID string, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		enabledKeyPrefix+personaID, value)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var kind, emotion, createdAt string

	err := row.Scan(&m.ID, &m.PersonaID, &m.Text, &kind, &emotion,
		&m.Importance, &createdAt, &m.SourceChatID, &m.SourceMessageID)
	if err != nil {
		return m, err
	}

	m.Kind = model.MemoryKind(kind)
	m.Emotion = model.Emotion(emotion)
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return m, nil
}

func scanMemories(rows *sql.Rows) ([]model.Memory, error) {
	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}
