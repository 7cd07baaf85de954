// Package cache keeps finished translations in SQLite so repeated chunks,
// which are common across article revisions and language pairs, are not
// sent to the backend twice.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a translation memory backed by a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translations (
		key TEXT PRIMARY KEY,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		translated TEXT NOT NULL,
		hits INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		used_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_translations_used_at ON translations(used_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate cache: %w", err)
	}
	return nil
}

// Key derives the lookup key for a text and language pair.
func Key(text, targetLang, sourceLang string) string {
	h := sha256.New()
	h.Write([]byte(sourceLang))
	h.Write([]byte{0})
	h.Write([]byte(targetLang))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Lookup returns a remembered translation.
func (s *Store) Lookup(ctx context.Context, text, targetLang, sourceLang string) (string, bool, error) {
	key := Key(text, targetLang, sourceLang)
	var translated string
	err := s.db.QueryRowContext(ctx, `SELECT translated FROM translations WHERE key = ?`, key).Scan(&translated)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup translation: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE translations SET hits = hits + 1, used_at = CURRENT_TIMESTAMP WHERE key = ?`, key); err != nil {
		return translated, true, fmt.Errorf("touch translation: %w", err)
	}
	return translated, true, nil
}

// Remember stores a finished translation, replacing any previous one.
func (s *Store) Remember(ctx context.Context, text, targetLang, sourceLang, translated string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translations (key, source_lang, target_lang, translated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET translated = excluded.translated, used_at = CURRENT_TIMESTAMP`,
		Key(text, targetLang, sourceLang), sourceLang, targetLang, translated)
	if err != nil {
		return fmt.Errorf("remember translation: %w", err)
	}
	return nil
}

// Stats summarizes the store contents.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(hits), 0) FROM translations`).Scan(&st.Entries, &st.Hits)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}

// Prune deletes entries not used within maxAge and returns how many went.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).Format("2006-01-02 15:04:05")
	res, err := s.db.ExecContext(ctx, `DELETE FROM translations WHERE used_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
