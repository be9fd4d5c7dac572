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

var bearerSecurity = []map[string][]string{{"bearer": {}}}

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "saveTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/tag",
		Summary:     "Create or update a tag",
		Description: "Creates a tag with its first localization. A body carrying an id updates that tag instead.",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleSaveTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tag",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tag",
		Summary:     "Delete tag",
		Description: "Deletes a tag and its localizations, returning its last state",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleDeleteTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "findTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tag/search",
		Summary:     "Find tags",
		Description: "Typeahead search over tag titles. Returns at most 3 tags as a bare array.",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleFindTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/tag/history",
		Summary:     "Get tag history",
		Description: "Returns the audit trail of a tag, newest first. Deleted tags keep their history.",
		Tags:        []string{"Tags"},
		Security:    bearerSecurity,
	}, s.handleGetTagHistory)
}

// === DTOs ===

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        int64     `json:"id" doc:"Tag ID"`
	Title     string    `json:"title" doc:"Tag title"`
	Color     string    `json:"color" doc:"Hex RGBA color"`
	Type      string    `json:"type" doc:"Tag type"`
	Icon      string    `json:"icon,omitempty" doc:"Icon name"`
	CreatedBy int64     `json:"created_by" doc:"Account that created the tag"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func newTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Title:     t.Title,
		Color:     t.Color,
		Type:      string(t.Type),
		Icon:      t.Icon,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// SaveTagRequest is the body of the create-or-update operation.
// Title and color are checked by the tag validator, not the schema,
// so a failure reports the per-field map.
type SaveTagRequest struct {
	ID       int64   `json:"id,omitempty" minimum:"0" doc:"Tag ID; set to update an existing tag"`
	Title    *string `json:"title,omitempty" maxLength:"255" doc:"Tag title"`
	Color    *string `json:"color,omitempty" doc:"Hex RGBA color of up to 8 digits, e.g. #ff0000"`
	Icon     *string `json:"icon,omitempty" maxLength:"64" doc:"Icon name"`
	Language string  `json:"language,omitempty" doc:"ISO-639-1 code of the first localization; defaults to the request language"`
}

// SaveTagInput wraps the save request for Huma.
type SaveTagInput struct {
	Body SaveTagRequest
}

// TagOutput wraps a single tag envelope for Huma.
type TagOutput struct {
	Body Envelope[TagResponse]
}

// TagIDInput selects a tag by query parameter.
type TagIDInput struct {
	ID int64 `query:"id" required:"true" minimum:"1" doc:"Tag ID"`
}

// FindTagsInput contains the typeahead query.
type FindTagsInput struct {
	Search string `query:"search" maxLength:"255" doc:"Substring of the tag title"`
}

// FindTagsOutput is the bare search result array.
type FindTagsOutput struct {
	Body []TagResponse
}

// AuditResponse is one entry of a tag's history.
type AuditResponse struct {
	ID        string    `json:"id" doc:"Entry ID (UUIDv7)"`
	Action    string    `json:"action" enum:"create,update,delete" doc:"Mutation"`
	TagID     int64     `json:"tag" doc:"Tag ID"`
	AccountID int64     `json:"account_id" doc:"Account that made the change"`
	Old       string    `json:"old,omitempty" doc:"JSON state before the change"`
	New       string    `json:"new,omitempty" doc:"JSON state after the change"`
	CreatedAt time.Time `json:"created_at" doc:"Time of the change"`
}

// TagHistoryOutput wraps the history envelope for Huma.
type TagHistoryOutput struct {
	Body Envelope[[]AuditResponse]
}

// === Handlers ===

func (s *Server) handleSaveTag(ctx context.Context, input *SaveTagInput) (*TagOutput, error) {
	account, err := requireAccount(ctx)
	if err != nil {
		return nil, err
	}

	body := input.Body
	if body.ID > 0 {
		t, err := s.tags.Update(ctx, account, service.UpdateTagRequest{
			ID:    body.ID,
			Title: body.Title,
			Color: body.Color,
			Icon:  body.Icon,
		})
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		return &TagOutput{Body: ok(titleTag, "Tag successfully updated", newTagResponse(t))}, nil
	}

	language := ""
	if body.Language != "" {
		language = i18n.Normalize(body.Language)
		if language == "" {
			return nil, s.fail(ctx, domainerrors.ValidationWithDetails("invalid language code", validation.Map{"language": true}))
		}
	}

	t, err := s.tags.Create(ctx, account, s.requestLanguage(ctx), service.CreateTagRequest{
		Title:    deref(body.Title),
		Color:    deref(body.Color),
		Icon:     deref(body.Icon),
		Language: language,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return &TagOutput{Body: ok(titleTag, "Tag successfully created", newTagResponse(t))}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagIDInput) (*TagOutput, error) {
	if _, err := requireAccount(ctx); err != nil {
		return nil, err
	}

	t, err := s.tags.Get(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return &TagOutput{Body: ok(titleTag, "Tag successfully returned", newTagResponse(t))}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagIDInput) (*TagOutput, error) {
	account, err := requireAccount(ctx)
	if err != nil {
		return nil, err
	}

	t, err := s.tags.Delete(ctx, account, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	return &TagOutput{Body: ok(titleTag, "Tag successfully deleted", newTagResponse(t))}, nil
}

func (s *Server) handleFindTags(ctx context.Context, input *FindTagsInput) (*FindTagsOutput, error) {
	if _, err := requireAccount(ctx); err != nil {
		return nil, err
	}

	found, err := s.tags.Find(ctx, input.Search)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	resp := make([]TagResponse, len(found))
	for i, t := range found {
		resp[i] = newTagResponse(t)
	}

	return &FindTagsOutput{Body: resp}, nil
}

func (s *Server) handleGetTagHistory(ctx context.Context, input *TagIDInput) (*TagHistoryOutput, error) {
	if _, err := requireAccount(ctx); err != nil {
		return nil, err
	}

	entries, err := s.tags.History(ctx, input.ID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	resp := make([]AuditResponse, len(entries))
	for i, e := range entries {
		resp[i] = AuditResponse{
			ID:        e.ID,
			Action:    string(e.Action),
			TagID:     e.EntityID,
			AccountID: e.AccountID,
			Old:       e.Old,
			New:       e.New,
			CreatedAt: e.CreatedAt,
		}
	}

	return &TagHistoryOutput{Body: ok(titleTag, "Tag history successfully returned", resp)}, nil
}

// requestLanguage returns the detected request language or the catalog default.
func (s *Server) requestLanguage(ctx context.Context) string {
	if lang := languageFrom(ctx); lang != "" {
		return lang
	}
	if s.catalog != nil {
		return s.catalog.Default()
	}
	return i18n.DefaultLanguage
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
