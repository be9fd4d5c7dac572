package domain

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTag_Defaults(t *testing.T) {
	tag := NewTag(7)

	assert.Equal(t, "", tag.Title)
	assert.Equal(t, "#000000ff", tag.Color)
	assert.Equal(t, TagTypeSingle, tag.Type)
	assert.Equal(t, int64(7), tag.CreatedBy)
	assert.False(t, tag.CreatedAt.IsZero())
	assert.Equal(t, tag.CreatedAt, tag.UpdatedAt)
}

func TestTag_CloneIsIndependent(t *testing.T) {
	tag := NewTag(1)
	tag.Title = "Urgent"

	old := tag.Clone()
	tag.Title = "Later"

	assert.Equal(t, "Urgent", old.Title)
	assert.Equal(t, "Later", tag.Title)
}

func TestNewTagAudit_Snapshots(t *testing.T) {
	old := NewTag(1)
	old.ID = 5
	old.Color = "000000ff"

	updated := old.Clone()
	updated.Color = "abcffffff"

	entry, err := NewTagAudit(AuditUpdate, 1, old, updated)
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "tag", entry.Entity)
	assert.Equal(t, int64(5), entry.EntityID)

	var before, after Tag
	require.NoError(t, json.Unmarshal([]byte(entry.Old), &before))
	require.NoError(t, json.Unmarshal([]byte(entry.New), &after))
	assert.Equal(t, "000000ff", before.Color)
	assert.Equal(t, "abcffffff", after.Color)
}

func TestNewTagAudit_DeleteHasNoNewState(t *testing.T) {
	old := NewTag(1)
	old.ID = 9

	entry, err := NewTagAudit(AuditDelete, 1, old, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(9), entry.EntityID)
	assert.NotEmpty(t, entry.Old)
	assert.Empty(t, entry.New)
}
