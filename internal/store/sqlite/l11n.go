package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/omsapp/tag-server/internal/domain"
	"github.com/omsapp/tag-server/internal/store"
)

const l11nColumns = `tag_l11n_id, tag_l11n_tag, tag_l11n_language, tag_l11n_title, tag_l11n_created_at`

func scanL11n(scanner interface{ Scan(dest ...any) error }) (*domain.TagL11n, error) {
	var (
		l         domain.TagL11n
		createdAt string
	)
	if err := scanner.Scan(&l.ID, &l.TagID, &l.Language, &l.Title, &createdAt); err != nil {
		return nil, err
	}

	var err error
	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// insertL11n writes one localization row inside tx and returns its ID.
func insertL11n(ctx context.Context, tx *sql.Tx, tagID int64, l *domain.TagL11n) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO tag_l11n (tag_l11n_tag, tag_l11n_language, tag_l11n_title, tag_l11n_created_at)
		VALUES (?, ?, ?, ?)`,
		tagID,
		l.Language,
		l.Title,
		formatTime(l.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrAlreadyExists.WithMessage(
				fmt.Sprintf("tag %d already has a %q localization", tagID, l.Language))
		}
		return 0, fmt.Errorf("insert l11n: %w", err)
	}
	return res.LastInsertId()
}

// CreateL11n inserts a localization for an existing tag.
// Returns store.ErrNotFound when the tag is missing and
// store.ErrAlreadyExists when the language is already taken.
func (s *Store) CreateL11n(ctx context.Context, l *domain.TagL11n) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM tag WHERE tag_id = ?`, l.TagID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return tagNotFound(l.TagID)
	}
	if err != nil {
		return err
	}

	id, err := insertL11n(ctx, tx, l.TagID, l)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	l.ID = id
	return nil
}

// ListL11n returns the localizations of a tag ordered by language.
// Returns store.ErrNotFound when the tag is missing.
func (s *Store) ListL11n(ctx context.Context, tagID int64) ([]*domain.TagL11n, error) {
	if _, err := s.GetTag(ctx, tagID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+l11nColumns+` FROM tag_l11n WHERE tag_l11n_tag = ? ORDER BY tag_l11n_language ASC`, tagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*domain.TagL11n{}
	for rows.Next() {
		l, err := scanL11n(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// DeleteL11n removes a localization and returns its last state.
func (s *Store) DeleteL11n(ctx context.Context, id int64) (*domain.TagL11n, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	l, err := scanL11n(tx.QueryRowContext(ctx,
		`SELECT `+l11nColumns+` FROM tag_l11n WHERE tag_l11n_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("localization %d not found", id))
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tag_l11n WHERE tag_l11n_id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete l11n: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return l, nil
}
