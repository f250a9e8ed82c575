// Package sqlite keeps a Document's cookies in a SQLite database so they
// outlive the process.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/artpar/crumb/internal/document"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Times are stored as Unix milliseconds; a NULL expires_at is a session
// cookie.
const schema = `
CREATE TABLE IF NOT EXISTS cookies (
	id         TEXT PRIMARY KEY,
	domain     TEXT NOT NULL,
	path       TEXT NOT NULL,
	name       TEXT NOT NULL,
	value      TEXT NOT NULL,
	host_only  INTEGER NOT NULL DEFAULT 0,
	secure     INTEGER NOT NULL DEFAULT 0,
	same_site  TEXT NOT NULL DEFAULT '',
	expires_at INTEGER,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	UNIQUE (domain, path, name)
);
CREATE INDEX IF NOT EXISTS idx_cookies_expires_at ON cookies (expires_at);
`

const columns = `id, domain, path, name, value, host_only, secure, same_site, expires_at, created_at, updated_at`

const upsert = `
INSERT INTO cookies (` + columns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (domain, path, name) DO UPDATE SET
	value      = excluded.value,
	host_only  = excluded.host_only,
	secure     = excluded.secure,
	same_site  = excluded.same_site,
	expires_at = excluded.expires_at,
	updated_at = excluded.updated_at
`

// Store is a document.Store on SQLite.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
	now    func() time.Time
}

var _ document.Store = (*Store)(nil)

// New opens, creating if needed, the cookie database at path.
func New(path string) (*Store, error) {
	return open(path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
}

// NewInMemory opens a database that lives as long as the Store.
func NewInMemory() (*Store, error) {
	return open(":memory:")
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie database: %w", err)
	}
	// One connection: :memory: is per connection, and writes are serialized
	// by the mutex anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cookie schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// withDB runs fn with the database unless the store is closed.
func (s *Store) withDB(fn func(db *sql.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return document.ErrStoreClosed
	}
	return fn(s.db)
}

// exec runs a statement and returns the rows it touched.
func (s *Store) exec(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	err := s.withDB(func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// Set inserts c or replaces the cookie with the same domain, path and name.
// c.ID and c.CreatedAt are filled in from the stored row.
func (s *Store) Set(ctx context.Context, c *document.StoredCookie) error {
	return s.withDB(func(db *sql.DB) error {
		now := s.now()
		id := c.ID
		if id == "" {
			id = uuid.NewString()
		}

		_, err := db.ExecContext(ctx, upsert,
			id, c.Domain, c.Path, c.Name, c.Value,
			c.HostOnly, c.Secure, c.SameSite, millis(c.Expires),
			now.UnixMilli(), now.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to store cookie %s: %w", c.Name, err)
		}

		var created int64
		err = db.QueryRowContext(ctx,
			`SELECT id, created_at FROM cookies WHERE domain = ? AND path = ? AND name = ?`,
			c.Domain, c.Path, c.Name,
		).Scan(&c.ID, &created)
		if err != nil {
			return err
		}
		c.CreatedAt = time.UnixMilli(created).UTC()
		c.UpdatedAt = time.UnixMilli(now.UnixMilli()).UTC()
		return nil
	})
}

// List returns the cookies matching opts.
func (s *Store) List(ctx context.Context, opts document.QueryOptions) ([]*document.StoredCookie, error) {
	query := `SELECT ` + columns + ` FROM cookies WHERE (? = '' OR domain = ?)`
	args := []any{opts.Domain, opts.Domain}
	if !opts.IncludeExpired {
		query += ` AND (expires_at IS NULL OR expires_at > ?)`
		args = append(args, s.now().UnixMilli())
	}
	query += ` ORDER BY domain, path, name`

	var result []*document.StoredCookie
	err := s.withDB(func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scan(rows)
			if err != nil {
				return err
			}
			result = append(result, c)
		}
		return rows.Err()
	})
	return result, err
}

// Delete removes one cookie. Deleting a missing cookie is not an error.
func (s *Store) Delete(ctx context.Context, domain, path, name string) error {
	_, err := s.exec(ctx, `DELETE FROM cookies WHERE domain = ? AND path = ? AND name = ?`, domain, path, name)
	return err
}

// DeleteByDomain removes every cookie stored under domain.
func (s *Store) DeleteByDomain(ctx context.Context, domain string) (int64, error) {
	return s.exec(ctx, `DELETE FROM cookies WHERE domain = ?`, domain)
}

// DeleteExpired removes cookies whose expiry has passed.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	return s.exec(ctx, `DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`, s.now().UnixMilli())
}

// DeleteSession removes cookies stored without an expiry.
func (s *Store) DeleteSession(ctx context.Context) (int64, error) {
	return s.exec(ctx, `DELETE FROM cookies WHERE expires_at IS NULL`)
}

// Clear removes every cookie.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.exec(ctx, `DELETE FROM cookies`)
	return err
}

// Count returns the number of stored cookies, expired ones included.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.withDB(func(db *sql.DB) error {
		return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cookies`).Scan(&n)
	})
	return n, err
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func millis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func scan(rows *sql.Rows) (*document.StoredCookie, error) {
	var (
		c                document.StoredCookie
		expires          sql.NullInt64
		created, updated int64
	)
	err := rows.Scan(
		&c.ID, &c.Domain, &c.Path, &c.Name, &c.Value,
		&c.HostOnly, &c.Secure, &c.SameSite, &expires, &created, &updated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie row: %w", err)
	}

	if expires.Valid {
		c.Expires = time.UnixMilli(expires.Int64).UTC()
	}
	c.CreatedAt = time.UnixMilli(created).UTC()
	c.UpdatedAt = time.UnixMilli(updated).UTC()
	return &c, nil
}
