package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateL11n(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	tag := ts.createTag(t, "Urgent", "#ff0000")

	resp := ts.api.Put("/api/v1/tag/l11n", ts.auth(), map[string]any{
		"tag":      tag.ID,
		"title":    "Dringend",
		"language": "de",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[L11nResponse](t, resp.Body)
	assert.Equal(t, StatusOK, env.Status)
	assert.Equal(t, "Localization", env.Title)
	assert.Equal(t, "Localization successfully created", env.Message)
	assert.Positive(t, env.Response.ID)
	assert.Equal(t, tag.ID, env.Response.TagID)
	assert.Equal(t, "de", env.Response.Language)
	assert.Equal(t, "Dringend", env.Response.Title)
}

func TestCreateL11n_DefaultsToRequestLanguage(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	tag := ts.createTag(t, "Urgent", "")

	resp := ts.api.Put("/api/v1/tag/l11n", ts.auth(), "Accept-Language: fr-CA",
		map[string]any{"tag": tag.ID, "title": "Urgent"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	assert.Equal(t, "fr", decode[L11nResponse](t, resp.Body).Response.Language)
}

func TestCreateL11n_Validation(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Put("/api/v1/tag/l11n", ts.auth(), map[string]any{"title": ""})
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	env := decode[map[string]bool](t, resp.Body)
	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, map[string]bool{"tag": true, "title": true}, env.Response)
}

func TestCreateL11n_MissingTag(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Put("/api/v1/tag/l11n", ts.auth(), map[string]any{"tag": 777, "title": "Dringend", "language": "de"})
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}

func TestCreateL11n_DuplicateLanguage(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	tag := ts.createTag(t, "Urgent", "")

	// The create already stored an "en" localization.
	resp := ts.api.Put("/api/v1/tag/l11n", ts.auth(), map[string]any{"tag": tag.ID, "title": "Pressing", "language": "en"})
	require.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())
	assert.Equal(t, "CONFLICT", decode[any](t, resp.Body).Code)
}

func TestListL11n(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	tag := ts.createTag(t, "Urgent", "")

	for lang, title := range map[string]string{"fr": "Urgent", "de": "Dringend"} {
		resp := ts.api.Put("/api/v1/tag/l11n", ts.auth(), map[string]any{"tag": tag.ID, "title": title, "language": lang})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Get("/api/v1/tag/l11n?tag="+strconv.FormatInt(tag.ID, 10), ts.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[[]L11nResponse](t, resp.Body)
	assert.Equal(t, "Localization successfully returned", env.Message)
	require.Len(t, env.Response, 3)
	assert.Equal(t, "de", env.Response[0].Language)
	assert.Equal(t, "en", env.Response[1].Language)
	assert.Equal(t, "fr", env.Response[2].Language)
}

func TestListL11n_MissingTag(t *testing.T) {
	ts := setupTestServer(t, testOptions{})

	resp := ts.api.Get("/api/v1/tag/l11n?tag=404", ts.auth())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteL11n(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	tag := ts.createTag(t, "Urgent", "")

	resp := ts.api.Put("/api/v1/tag/l11n", ts.auth(), map[string]any{"tag": tag.ID, "title": "Dringend", "language": "de"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	created := decode[L11nResponse](t, resp.Body).Response
	path := "/api/v1/tag/l11n?id=" + strconv.FormatInt(created.ID, 10)

	resp = ts.api.Delete(path, ts.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	env := decode[L11nResponse](t, resp.Body)
	assert.Equal(t, "Localization successfully deleted", env.Message)
	assert.Equal(t, "Dringend", env.Response.Title)

	resp = ts.api.Delete(path, ts.auth())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteTag_CascadesL11n(t *testing.T) {
	ts := setupTestServer(t, testOptions{})
	tag := ts.createTag(t, "Urgent", "")
	id := strconv.FormatInt(tag.ID, 10)

	resp := ts.api.Delete("/api/v1/tag?id="+id, ts.auth())
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/tag/l11n?tag="+id, ts.auth())
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
