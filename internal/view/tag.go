// Package view builds the read-only presentation of a single tag.
package view

import (
	"embed"
	"html/template"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/omsapp/tag-server/internal/color"
	"github.com/omsapp/tag-server/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultAction is the form target for saving a tag.
const DefaultAction = "/api/v1/tag"

// SaveMethod is the HTTP method the page script uses to submit the form.
const SaveMethod = "put"

// L11nRow is one line of the localization table.
type L11nRow struct {
	Code     string // ISO-639-1
	Language string // English display name of Code
	Title    string
}

// TagView is the view-model of the single-tag page. It holds no references
// to storage and is safe to render concurrently.
type TagView struct {
	ID     int64
	Title  string
	Swatch string // "#rrggbb" for the native color picker
	Rows   []L11nRow
	Empty  bool

	Lang   string            // page language
	Labels map[string]string // resolved UI labels
	Action string            // form target
	Method string            // verb for the page script; the form itself posts
}

// NewTagView maps a tag and its localizations to the page view-model.
// labels are the resolved UI labels for lang.
func NewTagView(tag *domain.Tag, l11n []*domain.TagL11n, lang string, labels map[string]string) TagView {
	rows := make([]L11nRow, 0, len(l11n))
	for _, l := range l11n {
		rows = append(rows, L11nRow{
			Code:     l.Language,
			Language: LanguageName(l.Language),
			Title:    l.Title,
		})
	}

	return TagView{
		ID:     tag.ID,
		Title:  tag.Title,
		Swatch: color.Swatch(tag.Color),
		Rows:   rows,
		Empty:  len(rows) == 0,
		Lang:   lang,
		Labels: labels,
		Action: DefaultAction,
		Method: SaveMethod,
	}
}

// LanguageName returns the English name of an ISO-639 code, or the code
// itself when it is not a known language.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// Label returns the resolved label for key, or key when none is set.
func (v TagView) Label(key string) string {
	if s, ok := v.Labels[key]; ok && s != "" {
		return s
	}
	return key
}

var pageTemplate = template.Must(
	template.New("tag_single.html").
		Funcs(template.FuncMap{"label": func(string) string { return "" }}).
		ParseFS(templateFS, "templates/tag_single.html"),
)

// Render writes the single-tag HTML page.
func Render(w io.Writer, v TagView) error {
	t, err := pageTemplate.Clone()
	if err != nil {
		return err
	}
	t.Funcs(template.FuncMap{"label": v.Label})
	return t.ExecuteTemplate(w, "tag_single.html", v)
}
