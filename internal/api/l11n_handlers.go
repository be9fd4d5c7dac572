package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/omsapp/tag-server/internal/domain"
	domainerrors "github.com/omsapp/tag-server/internal/errors"
	"github.com/omsapp/tag-server/internal/i18n"
	"github.com/omsapp/tag-server/internal/service"
	"github.com/omsapp/tag-server/internal/validation"
)

func (s *Server) registerL11nRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createTagL11n",
		Method:      http.MethodPut,
		Path:        "/api/v1/tag/l11n",
		Summary:     "Create tag localization",
		Description: "Adds a localized title to an existing tag",
		Tags:        []string{"Localizations"},
		Security:    bearerSecurity,
	}, s.handleCreateL11n)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTagL11n",
		Method:      http.MethodGet,
		Path:        "/api/v1/tag/l11n",
		Summary:     "List tag localizations",
		Description: "Returns the localizations of a tag ordered by language",
		Tags:        []string{"Localizations"},
		Security:    bearerSecurity,
	}, s.handleListL11n)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTagL11n",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tag/l11n",
		Summary:     "Delete tag localization",
		Description: "Deletes a localization, returning its last state",
		Tags:        []string{"Localizations"},
		Security:    bearerSecurity,
	}, s.handleDeleteL11n)
}

// L11nResponse contains a localization in API responses.
type L11nResponse struct {
	ID        int64     `json:"id" doc:"Localization ID"`
	TagID     int64     `json:"tag" doc:"Tag ID"`
	Language  string    `json:"language" doc:"ISO-639-1 code"`
	Title     string    `json:"title" doc:"Localized title"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

func newL11nResponse(l *domain.TagL11n) L11nResponse {
	return L11nResponse{
		ID:        l.ID,
		TagID:     l.TagID,
		Language:  l.Language,
		Title:     l.Title,
		CreatedAt: l.CreatedAt,
	}
}

// CreateL11nRequest is the body for adding a localization.
type CreateL11nRequest struct {
	TagID    int64  `json:"tag,omitempty" doc:"Tag ID"`
	Title    string `json:"title,omitempty" maxLength:"255" doc:"Localized title"`
	Language string `json:"language,omitempty" doc:"ISO-639-1 code; defaults to the request language"`
}

// CreateL11nInput wraps the create request for Huma.
type CreateL11nInput struct {
	Body CreateL11nRequest
}

// L11nOutput wraps a single localization envelope.
type L11nOutput struct {
	Body Envelope[L11nResponse]
}

// ListL11nInput selects the tag whose localizations are listed.
type ListL11nInput struct {
	TagID int64 `query:"tag" required:"true" minimum:"1" doc:"Tag ID"`
}

// ListL11nOutput wraps the localization list envelope.
type ListL11nOutput struct {
	Body Envelope[[]L11nResponse]
}

// L11nIDInput selects a localization by ID.
type L11nIDInput struct {
	ID int64 `query:"id" required:"true" minimum:"1" doc:"Localization ID"`
}

func (s *Server) handleCreateL11n(ctx context.Context, input *CreateL11nInput) (*L11nOutput, error) {
	account, err := requireAccount(ctx)
	if err != nil {
		return nil, err
	}

	language := ""
	if input.Body.Language != "" {
		language = i18n.Normalize(input.Body.Language)
		if language == "" {
			return nil, s.fail(ctx, domainerrors.ValidationWithDetails("invalid language code", validation.Map{"language": true}))
		}
	}

	l, err := s.tags.CreateL11n(ctx, account, s.requestLanguage(ctx), service.CreateL11nRequest{
		TagID:    input.Body.TagID,
		Title:    input.Body.Title,
		Language: language,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return &L11nOutput{Body: ok(titleL11n, "Localization successfully created", newL11nResponse(l))}, nil
}

func (s *Server) handleListL11n(ctx context.Context, input *ListL11nInput) (*ListL11nOutput, error) {
	if _, err := requireAccount(ctx); err != nil {
		return nil, err
	}

	list, err := s.tags.ListL11n(ctx, input.TagID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	resp := make([]L11nResponse, len(list))
	for i, l := range list {
		resp[i] = newL11nResponse(l)
	}

	return &ListL11nOutput{Body: ok(titleL11n, "Localization successfully returned", resp)}, nil
}

func (s *Server) handleDeleteL11n(ctx context.Context, input *L11nIDInput) (*L11nOutput, error) {
	account, err := requireAccount(ctx)
	if err != nil {
		return nil, err
	}

	l, err := s.tags.DeleteL11n(ctx, account, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return &L11nOutput{Body: ok(titleL11n, "Localization successfully deleted", newL11nResponse(l))}, nil
}
