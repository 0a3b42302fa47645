package service

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const userCacheTTL = 7 * 24 * time.Hour

// UserCache persists user id to display name lookups between runs.
type UserCache struct {
	db  *sql.DB
	now func() time.Time
}

// OpenUserCache opens the cache database at path.
func OpenUserCache(path string) (*UserCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open user cache")
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_names (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create user_names table")
	}

	return &UserCache{db: db, now: time.Now}, nil
}

// OpenMemoryUserCache opens an in-memory cache for testing.
func OpenMemoryUserCache() (*UserCache, error) {
	c, err := OpenUserCache(":memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would get its own empty :memory: database.
	c.db.SetMaxOpenConns(1)
	return c, nil
}

// Get returns the cached name of userID unless it is missing or expired.
func (c *UserCache) Get(userID string) (string, bool) {
	var (
		name      string
		fetchedAt int64
	)

	err := c.db.QueryRow(
		"SELECT name, fetched_at FROM user_names WHERE id = ?",
		userID,
	).Scan(&name, &fetchedAt)
	if err != nil {
		return "", false
	}

	if c.now().Sub(time.Unix(fetchedAt, 0)) > userCacheTTL {
		return "", false
	}

	return name, true
}

func (c *UserCache) Set(userID, name string) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO user_names (id, name, fetched_at) VALUES (?, ?, ?)",
		userID, name, c.now().Unix(),
	)
	return errors.Wrap(err, "store user")
}

func (c *UserCache) Close() error {
	return c.db.Close()
}
