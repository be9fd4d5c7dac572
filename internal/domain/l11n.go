package domain

import "time"

// TagL11n is a language-specific rendition of a tag's title.
// A localization always belongs to exactly one tag.
type TagL11n struct {
	ID        int64     `json:"id"`
	TagID     int64     `json:"tag"`
	Language  string    `json:"language"` // ISO-639-1
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTagL11n returns a localization of tagID in lang.
func NewTagL11n(tagID int64, lang, title string) *TagL11n {
	return &TagL11n{
		TagID:     tagID,
		Language:  lang,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}
