package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omsapp/tag-server/internal/auth"
	"github.com/omsapp/tag-server/internal/domain"
)

func TestSaveTag_Create(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"title": "Urgent", "color": "#ff0000"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[TagResponse](t, resp.Body)
	assert.Equal(t, StatusOK, env.Status)
	assert.Equal(t, "Tag", env.Title)
	assert.Equal(t, "Tag successfully created", env.Message)
	assert.Positive(t, env.Response.ID)
	assert.Equal(t, "Urgent", env.Response.Title)
	assert.Equal(t, "#ff0000ff", env.Response.Color)
	assert.Equal(t, "SINGLE", env.Response.Type)
	assert.Equal(t, int64(42), env.Response.CreatedBy)

	l11n, err := ts.store.ListL11n(t.Context(), env.Response.ID)
	require.NoError(t, err)
	require.Len(t, l11n, 1)
	assert.Equal(t, "en", l11n[0].Language)
	assert.Equal(t, "Urgent", l11n[0].Title)
}

func TestSaveTag_CreateDefaultColor(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"title": "Plain"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	assert.Equal(t, "#000000ff", decode[TagResponse](t, resp.Body).Response.Color)
}

func TestSaveTag_CreateUsesRequestLanguage(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Put("/api/v1/tag", ts.auth(), "Accept-Language: de-AT,de;q=0.9",
		map[string]any{"title": "Dringend"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "de", resp.Header().Get("Content-Language"))

	id := decode[TagResponse](t, resp.Body).Response.ID
	l11n, err := ts.store.ListL11n(t.Context(), id)
	require.NoError(t, err)
	require.Len(t, l11n, 1)
	assert.Equal(t, "de", l11n[0].Language)
}

func TestSaveTag_CreateExplicitLanguage(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"title": "Urgente", "language": "pt-BR"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	id := decode[TagResponse](t, resp.Body).Response.ID
	l11n, err := ts.store.ListL11n(t.Context(), id)
	require.NoError(t, err)
	require.Len(t, l11n, 1)
	assert.Equal(t, "pt", l11n[0].Language)
}

func TestSaveTag_ValidationFailure(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	tests := []struct {
		name string
		body map[string]any
		want map[string]bool
	}{
		{
			name: "missing title",
			body: map[string]any{"color": "#ff0000"},
			want: map[string]bool{"title": true, "color": false},
		},
		{
			name: "bad color",
			body: map[string]any{"title": "Urgent", "color": "red"},
			want: map[string]bool{"title": false, "color": true},
		},
		{
			name: "overlong color",
			body: map[string]any{"title": "Urgent", "color": "#0123456789abcdef"},
			want: map[string]bool{"title": false, "color": true},
		},
		{
			name: "overlong bare color",
			body: map[string]any{"title": "Urgent", "color": "0123456789abcdef"},
			want: map[string]bool{"title": false, "color": true},
		},
		{
			name: "both",
			body: map[string]any{"title": "", "color": "#xyz"},
			want: map[string]bool{"title": true, "color": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Put("/api/v1/tag", ts.auth(), tt.body)
			require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			env := decode[map[string]bool](t, resp.Body)
			assert.Equal(t, StatusError, env.Status)
			assert.Equal(t, "VALIDATION", env.Code)
			assert.Equal(t, tt.want, env.Response)
		})
	}

	tags, err := ts.store.ListTags(t.Context())
	require.NoError(t, err)
	assert.Empty(t, tags, "failed validation writes nothing")
}

func TestSaveTag_InvalidLanguage(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"title": "Urgent", "language": "!!"})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	env := decode[map[string]bool](t, resp.Body)
	assert.Equal(t, map[string]bool{"language": true}, env.Response)
}

func TestSaveTag_Update(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	created := ts.createTag(t, "Urgent", "#ff0000")

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"id": created.ID, "color": "00ff00"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[TagResponse](t, resp.Body)
	assert.Equal(t, "Tag successfully updated", env.Message)
	assert.Equal(t, created.ID, env.Response.ID)
	assert.Equal(t, "Urgent", env.Response.Title, "omitted title is kept")
	assert.Equal(t, "00ff00fff", env.Response.Color)
}

func TestSaveTag_UpdateTitleKeepsColor(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	created := ts.createTag(t, "Urgent", "#ff0000")

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"id": created.ID, "title": "Pressing"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[TagResponse](t, resp.Body)
	assert.Equal(t, "Pressing", env.Response.Title)
	assert.Equal(t, "#ff0000ff", env.Response.Color, "omitted color is kept")

	stored, err := ts.store.GetTag(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000ff", stored.Color)
}

func TestSaveTag_UpdateRejectsOverlongColor(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	created := ts.createTag(t, "Urgent", "#ff0000")

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"id": created.ID, "color": "#0123456789abcdef"})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	assert.Equal(t, map[string]bool{"title": false, "color": true}, decode[map[string]bool](t, resp.Body).Response)

	stored, err := ts.store.GetTag(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000ff", stored.Color)
}

func TestSaveTag_UpdateNotFound(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"id": 999, "title": "Ghost"})
	require.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())

	env := decode[any](t, resp.Body)
	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestSaveTag_Unauthorized(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	otherKey, err := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), 0)
	require.NoError(t, err)
	foreign, err := otherKey.Issue(domain.Account{ID: 42})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header []any
	}{
		{name: "no header"},
		{name: "wrong scheme", header: []any{"Authorization: Basic " + ts.token}},
		{name: "garbage token", header: []any{"Authorization: Bearer v4.local.garbage"}},
		{name: "foreign key", header: []any{"Authorization: Bearer " + foreign}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.header, map[string]any{"title": "Urgent"})
			resp := ts.api.Put("/api/v1/tag", args...)
			require.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())

			env := decode[any](t, resp.Body)
			assert.Equal(t, StatusError, env.Status)
			assert.Equal(t, "UNAUTHORIZED", env.Code)
		})
	}
}

func TestGetTag(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	created := ts.createTag(t, "Urgent", "#ff0000")

	resp := ts.api.Get("/api/v1/tag?id="+strconv.FormatInt(created.ID, 10), ts.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[TagResponse](t, resp.Body)
	assert.Equal(t, "Tag successfully returned", env.Message)
	assert.Equal(t, created.ID, env.Response.ID)
	assert.Equal(t, "Urgent", env.Response.Title)
}

func TestGetTag_NotFound(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Get("/api/v1/tag?id=12345", ts.auth())
	require.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
	assert.Equal(t, StatusError, decode[any](t, resp.Body).Status)
}

func TestGetTag_BadID(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	for _, path := range []string{"/api/v1/tag", "/api/v1/tag?id=0", "/api/v1/tag?id=abc"} {
		resp := ts.api.Get(path, ts.auth())
		assert.Equal(t, http.StatusBadRequest, resp.Code, path)
		assert.Equal(t, StatusError, decode[any](t, resp.Body).Status, path)
	}
}

func TestDeleteTag(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	created := ts.createTag(t, "Urgent", "#ff0000")
	path := "/api/v1/tag?id=" + strconv.FormatInt(created.ID, 10)

	resp := ts.api.Delete(path, ts.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[TagResponse](t, resp.Body)
	assert.Equal(t, "Tag successfully deleted", env.Message)
	assert.Equal(t, "Urgent", env.Response.Title)

	resp = ts.api.Get(path, ts.auth())
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete(path, ts.auth())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestFindTags(t *testing.T) {
	for _, withIndex := range []bool{false, true} {
		t.Run("index="+strconv.FormatBool(withIndex), func(t *testing.T) {
			ts := setupTestServer(t, testOptions{withIndex: withIndex})
			for _, title := range []string{"Surge", "Urgent", "Urgency", "Resurgence", "Calm"} {
				ts.createTag(t, title, "")
			}

			resp := ts.api.Get("/api/v1/tag/search?search=urg", ts.auth())
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")

			var found []TagResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &found), "search returns a bare array")
			assert.Len(t, found, 3)
			for _, tag := range found {
				assert.NotEqual(t, "Calm", tag.Title)
			}
		})
	}
}

func TestFindTags_NoMatch(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	ts.createTag(t, "Urgent", "")

	resp := ts.api.Get("/api/v1/tag/search?search=zzz", ts.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.JSONEq(t, "[]", resp.Body.String())
}

func TestFindTags_RequiresToken(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Get("/api/v1/tag/search?search=urg")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetTagHistory(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	created := ts.createTag(t, "Urgent", "#ff0000")
	id := strconv.FormatInt(created.ID, 10)

	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"id": created.ID, "title": "Critical"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = ts.api.Delete("/api/v1/tag?id="+id, ts.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/tag/history?id="+id, ts.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[[]AuditResponse](t, resp.Body)
	require.Len(t, env.Response, 3)
	assert.Equal(t, "delete", env.Response[0].Action)
	assert.Equal(t, "update", env.Response[1].Action)
	assert.Equal(t, "create", env.Response[2].Action)
	assert.Empty(t, env.Response[2].Old)
	assert.Contains(t, env.Response[1].New, "Critical")
	assert.Equal(t, int64(42), env.Response[0].AccountID)
}
