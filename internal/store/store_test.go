package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omsapp/tag-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createTag(t *testing.T, s *Store, title, lang string) *domain.Tag {
	t.Helper()

	tag := domain.NewTag(1)
	tag.Title = title
	require.NoError(t, s.CreateTag(context.Background(), tag, domain.NewTagL11n(0, lang, title)))
	return tag
}

func TestCreateTag_AssignsIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag := domain.NewTag(1)
	tag.Title = "Urgent"
	l11n := domain.NewTagL11n(0, "en", "Urgent")

	require.NoError(t, s.CreateTag(ctx, tag, l11n))
	assert.Equal(t, int64(1), tag.ID)
	assert.Equal(t, tag.ID, l11n.TagID)
	assert.Positive(t, l11n.ID)

	got, err := s.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Urgent", got.Title)
	assert.Equal(t, "#000000ff", got.Color)

	list, err := s.ListL11n(ctx, tag.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "en", list[0].Language)

	second := createTag(t, s, "Later", "en")
	assert.Equal(t, int64(2), second.ID)
}

func TestGetTag_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTag(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tag := createTag(t, s, "Urgent", "en")

	tag.Color = "abcffffff"
	require.NoError(t, s.UpdateTag(ctx, tag))

	got, err := s.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "abcffffff", got.Color)

	missing := domain.NewTag(1)
	missing.ID = 99
	assert.ErrorIs(t, s.UpdateTag(ctx, missing), ErrNotFound)
}

func TestDeleteTag_CascadesLocalizations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tag := createTag(t, s, "Urgent", "en")

	de := domain.NewTagL11n(tag.ID, "de", "Dringend")
	require.NoError(t, s.CreateL11n(ctx, de))

	require.NoError(t, s.DeleteTag(ctx, tag.ID))

	_, err := s.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteL11n(ctx, de.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteTag(ctx, tag.ID), ErrNotFound)
}

func TestCreateL11n(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tag := createTag(t, s, "Urgent", "en")

	require.NoError(t, s.CreateL11n(ctx, domain.NewTagL11n(tag.ID, "fr", "Urgent")))
	require.NoError(t, s.CreateL11n(ctx, domain.NewTagL11n(tag.ID, "de", "Dringend")))

	err := s.CreateL11n(ctx, domain.NewTagL11n(tag.ID, "de", "Eilig"))
	assert.ErrorIs(t, err, ErrAlreadyExists)

	err = s.CreateL11n(ctx, domain.NewTagL11n(404, "de", "Dringend"))
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListL11n(ctx, tag.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"de", "en", "fr"}, []string{list[0].Language, list[1].Language, list[2].Language})
}

func TestDeleteL11n(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tag := createTag(t, s, "Urgent", "en")

	de := domain.NewTagL11n(tag.ID, "de", "Dringend")
	require.NoError(t, s.CreateL11n(ctx, de))

	deleted, err := s.DeleteL11n(ctx, de.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dringend", deleted.Title)

	// The language slot is free again.
	require.NoError(t, s.CreateL11n(ctx, domain.NewTagL11n(tag.ID, "de", "Eilig")))
}

func TestFindTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"Urgent", "Urgency", "urge", "Later", "Insurgent"} {
		createTag(t, s, title, "en")
	}

	got, err := s.FindTags(ctx, "URG", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Insurgent", got[0].Title)

	none, err := s.FindTags(ctx, "nothing", 3)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetTagsByIDs_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := createTag(t, s, "A", "en")
	b := createTag(t, s, "B", "en")

	got, err := s.GetTagsByIDs(ctx, []int64{b.ID, 77, a.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)
}

func TestAudit_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tag := createTag(t, s, "Urgent", "en")

	created, err := domain.NewTagAudit(domain.AuditCreate, 1, nil, tag)
	require.NoError(t, err)
	require.NoError(t, s.RecordAudit(ctx, created))

	updated, err := domain.NewTagAudit(domain.AuditUpdate, 1, tag, tag)
	require.NoError(t, err)
	require.NoError(t, s.RecordAudit(ctx, updated))

	entries, err := s.ListAudit(ctx, tag.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditUpdate, entries[0].Action)
	assert.Equal(t, domain.AuditCreate, entries[1].Action)
}
