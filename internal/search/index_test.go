package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omsapp/tag-server/internal/domain"
)

func setupTestIndex(t *testing.T) *TagIndex {
	t.Helper()

	index, err := NewTagIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func testTag(id int64, title string) *domain.Tag {
	tag := domain.NewTag(1)
	tag.ID = id
	tag.Title = title
	return tag
}

func indexTags(t *testing.T, index *TagIndex, titles ...string) {
	t.Helper()
	for i, title := range titles {
		require.NoError(t, index.IndexTag(testTag(int64(i+1), title)))
	}
}

func TestNewTagIndex_Empty(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestFindTagIDs_Substring(t *testing.T) {
	index := setupTestIndex(t)
	// IDs 1..5 in this order.
	indexTags(t, index, "Urgent", "Insurgent", "Calm", "Surge", "Resurgence")

	ids, err := index.FindTagIDs(context.Background(), "URG", 3)
	require.NoError(t, err)
	// Insurgent, Resurgence, Surge
	assert.Equal(t, []int64{2, 5, 4}, ids)
}

func TestFindTagIDs_MatchesAcrossWords(t *testing.T) {
	index := setupTestIndex(t)
	indexTags(t, index, "Needs review", "Reviewed")

	ids, err := index.FindTagIDs(context.Background(), "s rev", 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestFindTagIDs_TieBreaksOnID(t *testing.T) {
	index := setupTestIndex(t)
	for _, id := range []int64{10, 9, 100} {
		require.NoError(t, index.IndexTag(testTag(id, "Same")))
	}

	ids, err := index.FindTagIDs(context.Background(), "same", 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 10, 100}, ids)
}

func TestFindTagIDs_EmptySearchMatchesAll(t *testing.T) {
	index := setupTestIndex(t)
	indexTags(t, index, "b", "a", "c", "d")

	ids, err := index.FindTagIDs(context.Background(), "  ", 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1, 3}, ids)
}

func TestFindTagIDs_WildcardsAreLiteral(t *testing.T) {
	index := setupTestIndex(t)
	indexTags(t, index, "Urgent")

	ids, err := index.FindTagIDs(context.Background(), "z*", 3)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestFindTagIDs_MetacharactersMatchLiterally(t *testing.T) {
	index := setupTestIndex(t)
	indexTags(t, index, "a*b", "axb", "50% off", "why?")

	for search, want := range map[string][]int64{
		"*":    {1},
		"a*":   {1},
		"%":    {3},
		"?":    {4},
		".":    {},
		"(x":   {},
		" a* ": {1},
	} {
		ids, err := index.FindTagIDs(context.Background(), search, 0)
		require.NoError(t, err, search)
		assert.Equal(t, want, ids, search)
	}
}

func TestFindTagIDs_FoldsUnicode(t *testing.T) {
	index := setupTestIndex(t)
	indexTags(t, index, "Straße", "Älpha", "alpha")

	ids, err := index.FindTagIDs(context.Background(), "äLP", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)

	// Folded keys sort bytewise, so "älpha" follows every ASCII key.
	ids, err = index.FindTagIDs(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestDeleteTag(t *testing.T) {
	index := setupTestIndex(t)
	indexTags(t, index, "Urgent", "Later")

	require.NoError(t, index.DeleteTag(1))
	require.NoError(t, index.DeleteTag(404))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ids, err := index.FindTagIDs(context.Background(), "urgent", 3)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIndexTag_Replaces(t *testing.T) {
	index := setupTestIndex(t)
	tag := testTag(1, "Urgent")
	require.NoError(t, index.IndexTag(tag))

	tag.Title = "Calm"
	require.NoError(t, index.IndexTag(tag))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ids, err := index.FindTagIDs(context.Background(), "calm", 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)
	indexTags(t, index, "Stale")

	require.NoError(t, index.Rebuild([]*domain.Tag{testTag(7, "Fresh"), testTag(8, "Fresher")}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	ids, err := index.FindTagIDs(context.Background(), "fresh", 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, ids)
}

func TestNewTagIndex_OnDisk(t *testing.T) {
	dir := t.TempDir()

	index, err := NewTagIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexTag(testTag(1, "Urgent")))
	require.NoError(t, index.Close())

	version, err := os.ReadFile(filepath.Join(dir, "tags.version"))
	require.NoError(t, err)
	assert.Equal(t, mappingVersion, string(version))

	// Reopening keeps documents.
	index, err = NewTagIndex(Options{DataPath: dir})
	require.NoError(t, err)
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	require.NoError(t, index.Close())

	// A stale mapping version discards the index.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags.version"), []byte("0"), 0o644))
	index, err = NewTagIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer index.Close()
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
