package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/omsapp/tag-server/internal/domain"
)

// RecordAudit appends an audit entry.
func (s *Store) RecordAudit(ctx context.Context, e *domain.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tag_audit (tag_audit_id, tag_audit_entity, tag_audit_entity_id, tag_audit_action,
			tag_audit_account, tag_audit_old, tag_audit_new, tag_audit_created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Entity,
		e.EntityID,
		string(e.Action),
		e.AccountID,
		nullString(e.Old),
		nullString(e.New),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// ListAudit returns the audit entries of a tag, newest first.
// UUIDv7 IDs sort by creation time, so they break timestamp ties.
func (s *Store) ListAudit(ctx context.Context, tagID int64) ([]*domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_audit_id, tag_audit_entity, tag_audit_entity_id, tag_audit_action,
			tag_audit_account, tag_audit_old, tag_audit_new, tag_audit_created_at
		FROM tag_audit
		WHERE tag_audit_entity = 'tag' AND tag_audit_entity_id = ?
		ORDER BY tag_audit_id DESC`, tagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.AuditEntry{}
	for rows.Next() {
		var (
			e         domain.AuditEntry
			action    string
			oldState  sql.NullString
			newState  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &action, &e.AccountID, &oldState, &newState, &createdAt); err != nil {
			return nil, err
		}
		e.Action = domain.AuditAction(action)
		e.Old = oldState.String
		e.New = newState.String
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
