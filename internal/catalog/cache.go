package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/claude/fitplan/internal/models"
)

// Cache stores template search results in SQLite so repeated searches skip
// the Program Service while they are fresh.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenCache opens (or creates) the cache database at dir/catalog.db.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS template_searches (
		query      TEXT PRIMARY KEY,
		results    TEXT NOT NULL,
		fetched_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// NormalizeQuery is the cache key for a search string.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Get returns the cached results for query if they are younger than the TTL.
func (c *Cache) Get(query string) ([]models.ExerciseTemplate, bool, error) {
	var (
		raw       string
		fetchedAt int64
	)
	err := c.db.QueryRow(
		`SELECT results, fetched_at FROM template_searches WHERE query = ?`,
		NormalizeQuery(query),
	).Scan(&raw, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached search: %w", err)
	}

	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false, nil
	}

	var templates []models.ExerciseTemplate
	if err := json.Unmarshal([]byte(raw), &templates); err != nil {
		return nil, false, fmt.Errorf("decoding cached search: %w", err)
	}
	return templates, true, nil
}

// Put records the results for query.
func (c *Cache) Put(query string, templates []models.ExerciseTemplate) error {
	if templates == nil {
		templates = []models.ExerciseTemplate{}
	}
	data, err := json.Marshal(templates)
	if err != nil {
		return fmt.Errorf("encoding search results: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO template_searches (query, results, fetched_at) VALUES (?, ?, ?)`,
		NormalizeQuery(query), string(data), c.now().Unix(),
	)
	return err
}

// Prune deletes entries older than the TTL and returns how many were removed.
func (c *Cache) Prune() (int64, error) {
	cutoff := c.now().Add(-c.ttl).Unix()
	res, err := c.db.Exec(`DELETE FROM template_searches WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning catalog cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
