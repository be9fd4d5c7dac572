package domain

import (
	"encoding/json/v2"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction names the mutation an AuditEntry records.
type AuditAction string

// Audit actions.
const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEntry is a before/after snapshot of one mutation.
// Old is empty for creates, New is empty for deletes.
type AuditEntry struct {
	ID        string      `json:"id"` // UUIDv7, sorts by time
	Entity    string      `json:"entity"`
	EntityID  int64       `json:"entity_id"`
	Action    AuditAction `json:"action"`
	AccountID int64       `json:"account_id"`
	Old       string      `json:"old,omitempty"`
	New       string      `json:"new,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewTagAudit builds an audit entry for a tag mutation. Either snapshot may be nil.
func NewTagAudit(action AuditAction, accountID int64, old, updated *Tag) (*AuditEntry, error) {
	entryID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate audit id: %w", err)
	}

	entry := &AuditEntry{
		ID:        entryID.String(),
		Entity:    "tag",
		Action:    action,
		AccountID: accountID,
		CreatedAt: time.Now().UTC(),
	}

	if old != nil {
		entry.EntityID = old.ID
		if entry.Old, err = snapshot(old); err != nil {
			return nil, err
		}
	}
	if updated != nil {
		entry.EntityID = updated.ID
		if entry.New, err = snapshot(updated); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

func snapshot(t *Tag) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("snapshot tag %d: %w", t.ID, err)
	}
	return string(data), nil
}
