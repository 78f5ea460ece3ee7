package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/bhandaridiwash/newchatbot/pkg/logx"
)

// SQLiteStore persists contexts in a local SQLite database, one JSON blob
// per user. Suitable for single-process deployments.
type SQLiteStore struct {
	db     *sql.DB
	logger *logx.Logger
}

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	user_id    TEXT PRIMARY KEY,
	context    TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=5000", path,
	))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sessionSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init session schema: %w", err)
	}

	// SQLite supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLiteStore{db: db, logger: logx.NewLogger("session-sqlite")}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (Context, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT context FROM sessions WHERE user_id = ?`, userID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		sc := NewContext("")
		if putErr := s.Put(ctx, userID, sc); putErr != nil {
			s.logger.Warn("persist default context for %s: %v", userID, putErr)
		}
		return sc, nil
	}
	if err != nil {
		return Context{}, fmt.Errorf("select session %s: %w", userID, err)
	}

	var sc Context
	if err := json.Unmarshal([]byte(blob), &sc); err != nil {
		s.logger.Warn("corrupt session for %s, resetting: %v", userID, err)
		return NewContext(""), nil
	}
	return sc, nil
}

func (s *SQLiteStore) Put(ctx context.Context, userID string, sc Context) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	sc.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", userID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, context, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET context = excluded.context, updated_at = excluded.updated_at
	`, userID, string(data), sc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete session %s: %w", userID, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
