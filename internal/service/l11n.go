package service

import (
	"context"

	"github.com/omsapp/tag-server/internal/domain"
)

// CreateL11nRequest carries a new localization.
// Language defaults to the request language when empty.
type CreateL11nRequest struct {
	TagID    int64
	Title    string
	Language string
}

// CreateL11n adds a localized title to an existing tag.
func (s *TagService) CreateL11n(ctx context.Context, account domain.Account, lang string, req CreateL11nRequest) (*domain.TagL11n, error) {
	if err := s.validator.L11nCreate(req.TagID, req.Title).Err("invalid localization"); err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = lang
	}

	l11n := domain.NewTagL11n(req.TagID, language, req.Title)
	if err := s.store.CreateL11n(ctx, l11n); err != nil {
		return nil, storeErr(err, "create localization")
	}

	s.logger.Info("localization created",
		"tag_id", l11n.TagID,
		"l11n_id", l11n.ID,
		"language", l11n.Language,
		"account_id", account.ID,
	)
	return l11n, nil
}

// ListL11n returns the localizations of a tag ordered by language.
func (s *TagService) ListL11n(ctx context.Context, tagID int64) ([]*domain.TagL11n, error) {
	list, err := s.store.ListL11n(ctx, tagID)
	if err != nil {
		return nil, storeErr(err, "list localizations")
	}
	return list, nil
}

// DeleteL11n removes a localization and returns its last state.
func (s *TagService) DeleteL11n(ctx context.Context, account domain.Account, id int64) (*domain.TagL11n, error) {
	l11n, err := s.store.DeleteL11n(ctx, id)
	if err != nil {
		return nil, storeErr(err, "delete localization")
	}

	s.logger.Info("localization deleted",
		"tag_id", l11n.TagID,
		"l11n_id", l11n.ID,
		"account_id", account.ID,
	)
	return l11n, nil
}
