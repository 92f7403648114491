// Package sqlite stores docchat sessions in a SQLite database using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/docchat"
	docjson "github.com/fwojciec/docchat/json"
	_ "modernc.org/sqlite"
)

var _ docchat.SessionStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	tenant_id  TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	body       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_tenant ON sessions (tenant_id, updated_at);
`

// Store is a SessionStore backed by a single sessions table. Each row holds
// the session's JSON envelope.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite serializes writers; one connection also keeps :memory: databases
	// from splitting across connections.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts sess.
func (s *Store) Save(ctx context.Context, sess docchat.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("sqlite: session id is required: %w", docchat.ErrValidation)
	}
	body, err := docjson.MarshalSession(sess)
	if err != nil {
		return fmt.Errorf("sqlite: marshal: %w", err)
	}
	updated := sess.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, tenant_id, updated_at, body) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tenant_id = excluded.tenant_id,
			updated_at = excluded.updated_at,
			body = excluded.body`,
		sess.ID, sess.TenantID, updated.UTC(), body)
	if err != nil {
		return fmt.Errorf("sqlite: save %s: %w", sess.ID, err)
	}
	return nil
}

// Load returns the session stored under id.
func (s *Store) Load(ctx context.Context, id string) (docchat.Session, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM sessions WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return docchat.Session{}, fmt.Errorf("sqlite: %s: %w", id, docchat.ErrSessionNotFound)
	}
	if err != nil {
		return docchat.Session{}, fmt.Errorf("sqlite: load %s: %w", id, err)
	}
	sess, err := docjson.UnmarshalSession(body)
	if err != nil {
		return docchat.Session{}, fmt.Errorf("sqlite: %s: %w", id, err)
	}
	return sess, nil
}

// List returns the ids of a tenant's sessions, most recently updated first.
func (s *Store) List(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE tenant_id = ? ORDER BY updated_at DESC, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: list: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	return ids, nil
}
