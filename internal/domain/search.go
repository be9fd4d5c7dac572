package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// SearchKey case-folds a title. Typeahead matching and ordering compare
// these keys in every storage backend and in the search index, so all of
// them agree on results.
func SearchKey(title string) string {
	return cases.Fold().String(title)
}

// SearchNeedle turns typeahead input into the key fragment to look for.
// Surrounding whitespace is ignored; everything else matches literally.
// An empty needle matches every tag.
func SearchNeedle(search string) string {
	return SearchKey(strings.TrimSpace(search))
}
