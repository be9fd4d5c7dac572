package domain

import (
	"time"

	"github.com/omsapp/tag-server/internal/color"
)

// TagType classifies how a tag is applied.
type TagType string

// TagTypeSingle is the only defined tag classification.
const TagTypeSingle TagType = "SINGLE"

// Tag is a short, colored classification marker attachable to content.
// CreatedBy references an account owned by the external account
// subsystem; the tag never embeds the account itself.
type Tag struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"` // Hex RGBA, padded to color.Width
	Type      TagType   `json:"type"`
	Icon      string    `json:"icon,omitempty"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTag returns a tag with the default color and type, owned by createdBy.
func NewTag(createdBy int64) *Tag {
	now := time.Now().UTC()
	return &Tag{
		Color:     color.Default,
		Type:      TagTypeSingle,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy of the tag, used to snapshot state before a mutation.
func (t *Tag) Clone() *Tag {
	c := *t
	return &c
}

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now().UTC()
}
