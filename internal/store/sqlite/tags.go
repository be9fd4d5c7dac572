package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/omsapp/tag-server/internal/domain"
	"github.com/omsapp/tag-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `tag_id, tag_title, tag_color, tag_type, tag_icon, tag_owner, tag_created_at, tag_updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		tagType   string
		icon      sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.Title,
		&t.Color,
		&tagType,
		&icon,
		&t.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Type = domain.TagType(tagType)
	t.Icon = icon.String

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a tag and, when l11n is non-nil, its companion
// localization in one transaction. Generated IDs are written back.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag, l11n *domain.TagL11n) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO tag (tag_title, tag_title_key, tag_color, tag_type, tag_icon, tag_owner, tag_created_at, tag_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title,
		domain.SearchKey(t.Title),
		t.Color,
		string(t.Type),
		nullString(t.Icon),
		t.CreatedBy,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	tagID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("tag id: %w", err)
	}

	var l11nID int64
	if l11n != nil {
		l11nID, err = insertL11n(ctx, tx, tagID, l11n)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	t.ID = tagID
	if l11n != nil {
		l11n.ID = l11nID
		l11n.TagID = tagID
	}
	return nil
}

// GetTag retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tag WHERE tag_id = ?`, id)

	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tagNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagsByIDs returns the tags for ids in input order, skipping missing ones.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error) {
	if len(ids) == 0 {
		return []*domain.Tag{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	byID, err := s.queryTags(ctx, `SELECT `+tagColumns+` FROM tag WHERE tag_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}

	index := make(map[int64]*domain.Tag, len(byID))
	for _, t := range byID {
		index[t.ID] = t
	}

	tags := make([]*domain.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := index[id]; ok {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

// UpdateTag overwrites the mutable columns of an existing tag.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tag SET tag_title = ?, tag_title_key = ?, tag_color = ?, tag_type = ?, tag_icon = ?, tag_updated_at = ?
		WHERE tag_id = ?`,
		t.Title,
		domain.SearchKey(t.Title),
		t.Color,
		string(t.Type),
		nullString(t.Icon),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	return requireAffected(res, tagNotFound(t.ID))
}

// DeleteTag removes a tag. Its localizations go with it via ON DELETE CASCADE.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tag WHERE tag_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return requireAffected(res, tagNotFound(id))
}

// ListTags returns all tags ordered by ID.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `SELECT `+tagColumns+` FROM tag ORDER BY tag_id ASC`)
}

// FindTags returns up to limit tags whose folded title contains the
// folded search, ordered by folded title then ID. tag_title_key holds
// domain.SearchKey(tag_title), so matching is Unicode-aware and literal.
func (s *Store) FindTags(ctx context.Context, search string, limit int) ([]*domain.Tag, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	return s.queryTags(ctx, `
		SELECT `+tagColumns+` FROM tag
		WHERE ?1 = '' OR instr(tag_title_key, ?1) > 0
		ORDER BY tag_title_key ASC, tag_id ASC
		LIMIT ?2`,
		domain.SearchNeedle(search), limit,
	)
}

// queryTags runs a tag query and scans every row. Never returns a nil slice.
func (s *Store) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// requireAffected returns notFound when res touched no rows.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func tagNotFound(id int64) error {
	return store.ErrNotFound.WithMessage(fmt.Sprintf("tag %d not found", id))
}
