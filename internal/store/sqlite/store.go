// Package sqlite provides the SQLite-backed tag repository.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/omsapp/tag-server/internal/domain"
	"github.com/omsapp/tag-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var _ store.Repository = (*Store)(nil)

// Store provides SQLite-backed persistence for tags.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates a new SQLite store at the given path.
// Pragmas travel in the DSN so every pooled connection gets them.
func Open(path string, logger *slog.Logger) (*Store, error) {
	pragmas := []string{
		"journal_mode(WAL)",
		"synchronous(NORMAL)",
		"foreign_keys(1)",
		"busy_timeout(5000)",
	}
	dsn := path + "?_pragma=" + strings.Join(pragmas, "&_pragma=")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if err := migrateTitleKeys(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate title keys: %w", err)
	}

	if logger != nil {
		logger.Info("SQLite database opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString returns a sql.NullString, NULL for the empty string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// migrateTitleKeys adds tag_title_key to databases created before it
// existed, fills keys that are still empty and creates the lookup index.
func migrateTitleKeys(ctx context.Context, db *sql.DB) error {
	var hasColumn bool
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) > 0 FROM pragma_table_info('tag') WHERE name = 'tag_title_key'`,
	).Scan(&hasColumn); err != nil {
		return err
	}
	if !hasColumn {
		if _, err := db.ExecContext(ctx,
			`ALTER TABLE tag ADD COLUMN tag_title_key TEXT NOT NULL DEFAULT ''`); err != nil {
			return err
		}
	}

	rows, err := db.QueryContext(ctx,
		`SELECT tag_id, tag_title FROM tag WHERE tag_title_key = '' AND tag_title != ''`)
	if err != nil {
		return err
	}
	pending := map[int64]string{}
	for rows.Next() {
		var (
			id    int64
			title string
		)
		if err := rows.Scan(&id, &title); err != nil {
			rows.Close()
			return err
		}
		pending[id] = title
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for id, title := range pending {
		if _, err := db.ExecContext(ctx,
			`UPDATE tag SET tag_title_key = ? WHERE tag_id = ?`, domain.SearchKey(title), id); err != nil {
			return err
		}
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_tag_title_key ON tag (tag_title_key)`)
	return err
}
