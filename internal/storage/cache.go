// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/pulsecraft/pulse-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotCached = errors.New("conversation not cached")
	ErrClosed    = errors.New("cache closed")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id            TEXT PRIMARY KEY,
    preview       TEXT NOT NULL,
    last_activity INTEGER NOT NULL,
    message_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    conversation_id TEXT NOT NULL,
    position        INTEGER NOT NULL,
    id              TEXT NOT NULL,
    role            TEXT NOT NULL,
    content         TEXT NOT NULL,
    intent          TEXT NOT NULL DEFAULT '',
    created_at      INTEGER NOT NULL,
    PRIMARY KEY (conversation_id, position),
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_conversations_activity
    ON conversations(last_activity DESC);
`

// =============================================================================
// CACHE
// =============================================================================

// Cache is the on-disk conversation cache backed by SQLite.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure cache database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// SaveConversation upserts a conversation and replaces its message set.
// Full replacement keeps the cache a faithful mirror of the last fetch.
func (c *Cache) SaveConversation(ctx context.Context, conv *model.Conversation) error {
	if c.db == nil {
		return ErrClosed
	}
	if conv == nil || conv.ID == "" {
		return errors.New("conversation has no id")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, preview, last_activity, message_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			preview = excluded.preview,
			last_activity = excluded.last_activity,
			message_count = excluded.message_count`,
		conv.ID, conv.Preview(), conv.LastActivity.UnixMilli(), len(conv.Messages))
	if err != nil {
		return fmt.Errorf("failed to upsert conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (conversation_id, position, id, role, content, intent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range conv.Messages {
		_, err := stmt.ExecContext(ctx, conv.ID, i, msg.ID,
			string(msg.Role), msg.Content, msg.Intent, msg.Timestamp.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	return tx.Commit()
}

// ListSummaries returns cached conversation summaries, most recent
// first, capped at limit (0 means no cap).
func (c *Cache) ListSummaries(ctx context.Context, limit int) ([]model.ConversationSummary, error) {
	if c.db == nil {
		return nil, ErrClosed
	}

	q := `SELECT id, preview, last_activity, message_count
	      FROM conversations ORDER BY last_activity DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var out []model.ConversationSummary
	for rows.Next() {
		var s model.ConversationSummary
		var activity int64
		if err := rows.Scan(&s.ID, &s.Preview, &activity, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		s.LastActivity = time.UnixMilli(activity)
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadMessages returns the cached message list for a conversation in
// stored order. Returns ErrNotCached for unknown ids.
func (c *Cache) LoadMessages(ctx context.Context, conversationID string) ([]*model.Message, error) {
	if c.db == nil {
		return nil, ErrClosed
	}

	var exists int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM conversations WHERE id = ?`, conversationID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotCached
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, role, content, intent, created_at
		FROM messages WHERE conversation_id = ? ORDER BY position`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []*model.Message
	for rows.Next() {
		var m model.Message
		var role string
		var created int64
		if err := rows.Scan(&m.ID, &role, &m.Content, &m.Intent, &created); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		m.Role = model.Role(role)
		m.Timestamp = time.UnixMilli(created)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// DeleteConversation drops one conversation and its messages. Unknown
// ids are not an error.
func (c *Cache) DeleteConversation(ctx context.Context, conversationID string) error {
	if c.db == nil {
		return ErrClosed
	}
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// Clear wipes the whole cache, used on sign-out so the next operator
// sees nothing of the previous session.
func (c *Cache) Clear(ctx context.Context) error {
	if c.db == nil {
		return ErrClosed
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM conversations`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
