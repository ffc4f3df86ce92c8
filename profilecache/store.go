// Package profilecache persists the page's extracted user identity across
// restarts. The page only exposes its chrome intermittently (collapsed
// menus, lazy headers), so whatever was extracted last time is a better
// starting point than "unknown".
//
// The cache is advisory: every failure degrades to the zero Profile and is
// logged, never surfaced.
package profilecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/feedloom/content"
)

const schema = `
CREATE TABLE IF NOT EXISTS profile (
    key         TEXT PRIMARY KEY,
    id          TEXT NOT NULL DEFAULT '',
    email       TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    profile_url TEXT NOT NULL DEFAULT '',
    updated_at  TEXT NOT NULL
);`

// selfKey is the single row: the cache stores one identity, the session's
// logged-in user.
const selfKey = "self"

// Store is an SQLite-backed profile cache. Callers must blank-import a
// database/sql driver registered as "sqlite" (modernc.org/sqlite).
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the cache database at path. Parent
// directories are created. ":memory:" is accepted for tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("profilecache: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("profilecache: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("profilecache: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("profilecache: schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the cached identity, or the zero Profile when nothing has been
// cached yet (or the read fails).
func (s *Store) Get(ctx context.Context) content.Profile {
	var p content.Profile
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, profile_url FROM profile WHERE key = ?`, selfKey)
	if err := row.Scan(&p.ID, &p.Email, &p.Name, &p.ProfileURL); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("profilecache: read failed", "error", err)
		}
		return content.Profile{}
	}
	return p
}

// Put upserts the identity. Empty incoming fields never clobber previously
// cached non-empty ones: extraction is partial by nature and a header that
// only showed the name must not erase the profile URL learned yesterday.
func (s *Store) Put(ctx context.Context, p content.Profile) error {
	prev := s.Get(ctx)
	merged := merge(prev, p)
	if merged == (content.Profile{}) {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO profile (key, id, email, name, profile_url, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    id = excluded.id,
    email = excluded.email,
    name = excluded.name,
    profile_url = excluded.profile_url,
    updated_at = excluded.updated_at`,
		selfKey, merged.ID, merged.Email, merged.Name, merged.ProfileURL,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("profilecache: write: %w", err)
	}
	return nil
}

func merge(prev, next content.Profile) content.Profile {
	out := prev
	if next.ID != "" {
		out.ID = next.ID
	}
	if next.Email != "" {
		out.Email = next.Email
	}
	if next.Name != "" {
		out.Name = next.Name
	}
	if next.ProfileURL != "" {
		out.ProfileURL = next.ProfileURL
	}
	return out
}
