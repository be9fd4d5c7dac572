// Package service holds the tag business logic between the HTTP layer and storage.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/omsapp/tag-server/internal/color"
	"github.com/omsapp/tag-server/internal/domain"
	domainerrors "github.com/omsapp/tag-server/internal/errors"
	"github.com/omsapp/tag-server/internal/store"
	"github.com/omsapp/tag-server/internal/validation"
)

// FindLimit caps the number of typeahead results.
const FindLimit = 3

// ErrIndexDisabled is returned by ReindexAll when no search index is configured.
var ErrIndexDisabled = errors.New("search index is disabled")

// Indexer keeps a search index in step with tag mutations.
// *search.TagIndex implements it.
type Indexer interface {
	IndexTag(t *domain.Tag) error
	DeleteTag(tagID int64) error
	FindTagIDs(ctx context.Context, search string, limit int) ([]int64, error)
	Rebuild(tags []*domain.Tag) error
}

// CreateTagRequest carries the fields of a new tag.
// Language selects the companion localization; empty means the request language.
type CreateTagRequest struct {
	Title    string
	Color    string
	Icon     string
	Language string
}

// UpdateTagRequest carries a partial update. Nil fields keep their value.
type UpdateTagRequest struct {
	ID    int64
	Title *string
	Color *string
	Icon  *string
}

// TagService orchestrates tag and localization operations.
type TagService struct {
	store     store.Repository
	validator *validation.Validator
	index     Indexer // nil when search is disabled
	logger    *slog.Logger
}

// NewTagService creates a new tag service. index may be nil.
func NewTagService(repo store.Repository, v *validation.Validator, index Indexer, logger *slog.Logger) *TagService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TagService{
		store:     repo,
		validator: v,
		index:     index,
		logger:    logger,
	}
}

// Create validates and persists a new tag together with its first
// localization. lang is the detected request language.
func (s *TagService) Create(ctx context.Context, account domain.Account, lang string, req CreateTagRequest) (*domain.Tag, error) {
	if err := s.validator.TagCreate(req.Title, req.Color).Err("invalid tag"); err != nil {
		return nil, err
	}

	tag := domain.NewTag(account.ID)
	tag.Title = req.Title
	tag.Color = color.Normalize(req.Color)
	tag.Icon = strings.TrimSpace(req.Icon)

	language := req.Language
	if language == "" {
		language = lang
	}
	l11n := domain.NewTagL11n(0, language, req.Title)

	if err := s.store.CreateTag(ctx, tag, l11n); err != nil {
		return nil, storeErr(err, "create tag")
	}
	tag.Title = l11n.Title

	s.audit(ctx, account, domain.AuditCreate, nil, tag)
	s.reindex(tag)

	s.logger.Info("tag created",
		"tag_id", tag.ID,
		"language", language,
		"account_id", account.ID,
	)
	return tag, nil
}

// Update applies the supplied fields to an existing tag.
func (s *TagService) Update(ctx context.Context, account domain.Account, req UpdateTagRequest) (*domain.Tag, error) {
	if err := s.validator.TagUpdate(req.Title, req.Color).Err("invalid tag"); err != nil {
		return nil, err
	}

	tag, err := s.store.GetTag(ctx, req.ID)
	if err != nil {
		return nil, storeErr(err, "get tag")
	}
	old := tag.Clone()

	if req.Title != nil {
		tag.Title = *req.Title
	}
	if req.Color != nil {
		tag.Color = color.Pad(*req.Color)
	}
	if req.Icon != nil {
		tag.Icon = strings.TrimSpace(*req.Icon)
	}
	tag.Touch()

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		return nil, storeErr(err, "update tag")
	}

	s.audit(ctx, account, domain.AuditUpdate, old, tag)
	s.reindex(tag)

	s.logger.Info("tag updated", "tag_id", tag.ID, "account_id", account.ID)
	return tag, nil
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, id int64) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get tag")
	}
	return tag, nil
}

// Delete removes a tag and its localizations, returning its last state.
func (s *TagService) Delete(ctx context.Context, account domain.Account, id int64) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, id)
	if err != nil {
		return nil, storeErr(err, "get tag")
	}

	if err := s.store.DeleteTag(ctx, id); err != nil {
		return nil, storeErr(err, "delete tag")
	}

	s.audit(ctx, account, domain.AuditDelete, tag, nil)
	if s.index != nil {
		if err := s.index.DeleteTag(id); err != nil {
			s.logger.Warn("failed to remove tag from search index", "tag_id", id, "error", err)
		}
	}

	s.logger.Info("tag deleted", "tag_id", id, "account_id", account.ID)
	return tag, nil
}

// Find returns at most FindLimit tags whose title contains search.
// No match yields an empty slice, not an error.
func (s *TagService) Find(ctx context.Context, search string) ([]*domain.Tag, error) {
	if s.index != nil {
		ids, err := s.index.FindTagIDs(ctx, search, FindLimit)
		if err == nil {
			tags, err := s.store.GetTagsByIDs(ctx, ids)
			if err != nil {
				return nil, storeErr(err, "load tags")
			}
			return tags, nil
		}
		s.logger.Warn("search index query failed, falling back to store", "error", err)
	}

	tags, err := s.store.FindTags(ctx, search, FindLimit)
	if err != nil {
		return nil, storeErr(err, "find tags")
	}
	return tags, nil
}

// History returns the audit trail of a tag, newest first.
// Entries outlive the tag, so a deleted tag still has history.
func (s *TagService) History(ctx context.Context, tagID int64) ([]*domain.AuditEntry, error) {
	entries, err := s.store.ListAudit(ctx, tagID)
	if err != nil {
		return nil, storeErr(err, "list audit")
	}
	return entries, nil
}

// ReindexAll rebuilds the search index from storage and returns the number of tags indexed.
func (s *TagService) ReindexAll(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrIndexDisabled
	}

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return 0, storeErr(err, "list tags")
	}
	if err := s.index.Rebuild(tags); err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "rebuild search index")
	}

	s.logger.Info("search index rebuilt", "tags", len(tags))
	return len(tags), nil
}

// audit records a mutation. Failures are logged and never fail the mutation.
func (s *TagService) audit(ctx context.Context, account domain.Account, action domain.AuditAction, old, updated *domain.Tag) {
	entry, err := domain.NewTagAudit(action, account.ID, old, updated)
	if err == nil {
		err = s.store.RecordAudit(ctx, entry)
	}
	if err != nil {
		s.logger.Warn("failed to record audit entry",
			"action", action,
			"account_id", account.ID,
			"error", err,
		)
	}
}

func (s *TagService) reindex(tag *domain.Tag) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexTag(tag); err != nil {
		s.logger.Warn("failed to index tag", "tag_id", tag.ID, "error", err)
	}
}

// storeErr translates store sentinels into domain errors.
func storeErr(err error, op string) error {
	var se *store.Error
	if !errors.As(err, &se) {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, op)
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(se.Message).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Conflict(se.Message).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(se.Message).WithCause(err)
	default:
		return domainerrors.Wrap(err, domainerrors.CodeInternal, op)
	}
}
