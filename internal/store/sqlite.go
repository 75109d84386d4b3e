package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository on top of a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral database in tests.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The sqlite driver serializes writes; a single connection avoids
	// SQLITE_BUSY errors under concurrent upserts from different sessions.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// init creates the schema if it does not exist. It is idempotent.
func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT UNIQUE NOT NULL,
	full_name TEXT
)`); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS user_credentials (
	user_email TEXT PRIMARY KEY,
	token_json TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	FOREIGN KEY (user_email) REFERENCES users (email)
)`); err != nil {
		return fmt.Errorf("create user_credentials table: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertUser inserts or replaces the user row keyed by email.
func (s *SQLiteStore) UpsertUser(ctx context.Context, email, fullName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (email, full_name) VALUES (?, ?)
ON CONFLICT(email) DO UPDATE SET full_name = excluded.full_name
`, email, fullName)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser fetches a user by email.
func (s *SQLiteStore) GetUser(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	var u User
	var fullName sql.NullString
	row := s.db.QueryRowContext(ctx, `
SELECT id, email, full_name FROM users WHERE email = ?
`, email)
	if err := row.Scan(&u.ID, &u.Email, &fullName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	u.FullName = fullName.String
	return u, nil
}

// UpsertCredential inserts or replaces the credential blob for email.
// The users row must exist first (foreign key).
func (s *SQLiteStore) UpsertCredential(ctx context.Context, email string, tokenJSON []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(tokenJSON) == 0 {
		return fmt.Errorf("token blob is required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO user_credentials (user_email, token_json, updated_at) VALUES (?, ?, ?)
ON CONFLICT(user_email) DO UPDATE SET
	token_json = excluded.token_json,
	updated_at = excluded.updated_at
`, email, string(tokenJSON), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

// GetCredential fetches the credential blob for email.
func (s *SQLiteStore) GetCredential(ctx context.Context, email string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tokenJSON string
	row := s.db.QueryRowContext(ctx, `
SELECT token_json FROM user_credentials WHERE user_email = ?
`, email)
	if err := row.Scan(&tokenJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return []byte(tokenJSON), nil
}

// DeleteCredential removes the credential blob for email.
func (s *SQLiteStore) DeleteCredential(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
DELETE FROM user_credentials WHERE user_email = ?
`, email); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// CountUsers returns the number of user rows. Used by tests and the
// readiness check.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Ping verifies the database connection is alive.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
