// Package search provides typeahead lookup over tag titles using Bleve.
package search

import (
	"fmt"
	"strconv"

	"github.com/omsapp/tag-server/internal/domain"
)

// TagDocument is the indexed form of a tag.
type TagDocument struct {
	TagID int64
	Title string
	Color string
}

// NewTagDocument builds the index document for a tag.
func NewTagDocument(t *domain.Tag) *TagDocument {
	return &TagDocument{
		TagID: t.ID,
		Title: t.Title,
		Color: t.Color,
	}
}

// ID returns the Bleve document ID.
func (d *TagDocument) ID() string {
	return docID(d.TagID)
}

// ToMap converts the document to a map with the field names used by the mapping.
// sort_id is zero-padded so lexical order matches numeric order.
func (d *TagDocument) ToMap() map[string]any {
	return map[string]any{
		"title":     d.Title,
		"title_key": domain.SearchKey(d.Title),
		"color":     d.Color,
		"sort_id":   fmt.Sprintf("%020d", d.TagID),
	}
}

func docID(tagID int64) string {
	return strconv.FormatInt(tagID, 10)
}
