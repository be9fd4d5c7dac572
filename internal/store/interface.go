package store

import (
	"context"

	"github.com/omsapp/tag-server/internal/domain"
)

// Repository defines the persistence operations for tags.
// Both the Badger Store and sqlite.Store implement it.
type Repository interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Tags
	CreateTag(ctx context.Context, t *domain.Tag, l11n *domain.TagL11n) error
	GetTag(ctx context.Context, id int64) (*domain.Tag, error)
	GetTagsByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, t *domain.Tag) error
	DeleteTag(ctx context.Context, id int64) error
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	FindTags(ctx context.Context, search string, limit int) ([]*domain.Tag, error)

	// Localizations
	CreateL11n(ctx context.Context, l *domain.TagL11n) error
	ListL11n(ctx context.Context, tagID int64) ([]*domain.TagL11n, error)
	DeleteL11n(ctx context.Context, id int64) (*domain.TagL11n, error)

	// Audit
	RecordAudit(ctx context.Context, e *domain.AuditEntry) error
	ListAudit(ctx context.Context, tagID int64) ([]*domain.AuditEntry, error)
}

var _ Repository = (*Store)(nil)
