// Package sessions keeps server-side login sessions in their own SQLite file
// and ties them to a signed cookie.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"Resource-Library/internals/common"
	"Resource-Library/internals/database"
	"Resource-Library/internals/models"
)

const createSessionsTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	sid TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	username TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);`

// Store persists sessions. Expiry is kept as unix seconds.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the session database at path.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := database.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createSessionsTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, sess *models.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (sid, user_id, username, expires_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Username, sess.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sid string) (*models.Session, error) {
	var (
		sess    models.Session
		expires int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT sid, user_id, username, expires_at FROM sessions WHERE sid = ?`, sid).
		Scan(&sess.ID, &sess.UserID, &sess.Username, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	sess.ExpiresAt = time.Unix(expires, 0)
	return &sess, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, sid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE sid = ?`, sid); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired purges sessions that expired at or before now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
