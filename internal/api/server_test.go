package api

import (
	"bytes"
	"encoding/json/v2"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/omsapp/tag-server/internal/auth"
	"github.com/omsapp/tag-server/internal/domain"
	"github.com/omsapp/tag-server/internal/i18n"
	"github.com/omsapp/tag-server/internal/ratelimit"
	"github.com/omsapp/tag-server/internal/search"
	"github.com/omsapp/tag-server/internal/service"
	"github.com/omsapp/tag-server/internal/store/sqlite"
	"github.com/omsapp/tag-server/internal/validation"
)

// testEnvelope mirrors Envelope for decoding responses.
type testEnvelope[T any] struct {
	Status   string `json:"status"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Response T      `json:"response"`
}

type testServer struct {
	*Server
	api    humatest.TestAPI
	store  *sqlite.Store
	tokens *auth.TokenService
	token  string
}

type testOptions struct {
	withIndex bool
	limiter   *ratelimit.KeyedRateLimiter
}

func setupTestServer(t *testing.T, opts testOptions) *testServer {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "tags.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var (
		index   *search.TagIndex
		indexer service.Indexer
	)
	if opts.withIndex {
		index, err = search.NewTagIndex(search.Options{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = index.Close() })
		indexer = index
	}

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, 32), time.Hour)
	require.NoError(t, err)
	token, err := tokens.Issue(domain.Account{ID: 42})
	require.NoError(t, err)

	catalog, err := i18n.New(i18n.Options{})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tags := service.NewTagService(st, validation.New(validation.Options{}), indexer, logger)

	s := NewServer(Config{Title: "Tag API Test"}, Deps{
		Tags:    tags,
		Store:   st,
		Index:   index,
		Catalog: catalog,
		Tokens:  tokens,
		Limiter: opts.limiter,
		Logger:  logger,
	})

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
		tokens: tokens,
		token:  token,
	}
}

func (ts *testServer) auth() string {
	return "Authorization: Bearer " + ts.token
}

func decode[T any](t *testing.T, body *bytes.Buffer) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body.Bytes(), &env), body.String())
	return env
}

// createTag creates a tag through the API and returns it.
func (ts *testServer) createTag(t *testing.T, title, color string) TagResponse {
	t.Helper()
	resp := ts.api.Put("/api/v1/tag", ts.auth(), map[string]any{"title": title, "color": color})
	require.Equal(t, 200, resp.Code, resp.Body.String())
	return decode[TagResponse](t, resp.Body).Response
}
