// Package cache persists probe results (component name, version, roles)
// keyed by plugin path and mtime, so a re-scan can skip re-dlopen'ing a
// library that hasn't changed since it was last probed. Grounded on the
// teacher's infra/sqlite.Store adapter shape: a single *sql.DB behind a
// small struct, schema created on Open, one table.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Probe is one cached row: the descriptor fields worth persisting, plus
// the mtime of the library file they were derived from.
type Probe struct {
	Name    string
	Version [4]uint32 // Major, Minor, Revision, Step
	Roles   []string
	ModTime int64 // unix nanoseconds
}

type Cache struct {
	db *sql.DB
}

// Open creates (or reuses) a sqlite database at path, creating its schema
// if absent.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open probe cache: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS probe_cache (
	path       TEXT PRIMARY KEY,
	mod_time   INTEGER NOT NULL,
	descriptor TEXT NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize probe cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the cached probe for path if its recorded mtime still
// matches modTime — a stale entry (file changed since last probe) reports
// ok == false so the caller re-probes.
func (c *Cache) Lookup(path string, modTime int64) (Probe, bool, error) {
	var descJSON string
	var cachedMod int64
	err := c.db.QueryRow(`SELECT mod_time, descriptor FROM probe_cache WHERE path = ?`, path).Scan(&cachedMod, &descJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Probe{}, false, nil
		}
		return Probe{}, false, fmt.Errorf("query probe cache: %w", err)
	}
	if cachedMod != modTime {
		return Probe{}, false, nil
	}
	var p Probe
	if err := json.Unmarshal([]byte(descJSON), &p); err != nil {
		return Probe{}, false, fmt.Errorf("unmarshal cached probe: %w", err)
	}
	return p, true, nil
}

// Store records (or replaces) the probe result for path.
func (c *Cache) Store(path string, p Probe) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal probe: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT INTO probe_cache (path, mod_time, descriptor) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET mod_time = excluded.mod_time, descriptor = excluded.descriptor`,
		path, p.ModTime, string(payload),
	)
	if err != nil {
		return fmt.Errorf("store probe: %w", err)
	}
	return nil
}
