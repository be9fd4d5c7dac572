// Package validation checks tag requests using the validator/v10 library.
//
// Checks are pure: they inspect request fields only and never consult
// storage. Each check returns a Map of field name to a failed flag so
// callers can report exactly which inputs were rejected.
package validation

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/omsapp/tag-server/internal/color"
	domainerrors "github.com/omsapp/tag-server/internal/errors"
)

// Map reports, per field, whether validation failed.
type Map map[string]bool

// Failed reports whether any field failed.
func (m Map) Failed() bool {
	for _, failed := range m {
		if failed {
			return true
		}
	}
	return false
}

// Err returns a validation error carrying the map, or nil when nothing failed.
func (m Map) Err(msg string) error {
	if !m.Failed() {
		return nil
	}
	return domainerrors.ValidationWithDetails(msg, m)
}

// Validator wraps go-playground/validator with the tag field rules.
type Validator struct {
	v *validator.Validate
}

// Options configures a Validator.
type Options struct {
	// RequireColorHash rejects colors without a leading '#'.
	RequireColorHash bool
}

// New creates a validator configured for tag requests.
func New(opts Options) *Validator {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	err := v.RegisterValidation("tagcolor", func(fl validator.FieldLevel) bool {
		return color.IsHex(fl.Field().String(), opts.RequireColorHash)
	})
	if err != nil {
		panic("validation: register tagcolor: " + err.Error())
	}

	return &Validator{v: v}
}

type tagCreate struct {
	Title string `json:"title" validate:"required"`
	Color string `json:"color" validate:"omitempty,tagcolor"`
}

type tagUpdate struct {
	Title *string `json:"title" validate:"omitnil,min=1"`
	Color *string `json:"color" validate:"omitnil,tagcolor"`
}

type l11nCreate struct {
	Tag   int64  `json:"tag" validate:"gt=0"`
	Title string `json:"title" validate:"required"`
}

// TagCreate validates a create-tag request. The title must be present;
// the color is optional but must be hex when given.
func (v *Validator) TagCreate(title, colorValue string) Map {
	return v.check(tagCreate{Title: title, Color: colorValue}, "title", "color")
}

// TagUpdate validates an update-tag request. Omitted fields always pass;
// a supplied title must be non-empty and a supplied color must be hex.
func (v *Validator) TagUpdate(title, colorValue *string) Map {
	return v.check(tagUpdate{Title: title, Color: colorValue}, "title", "color")
}

// L11nCreate validates a create-localization request.
func (v *Validator) L11nCreate(tagID int64, title string) Map {
	return v.check(l11nCreate{Tag: tagID, Title: title}, "tag", "title")
}

// check runs struct validation and folds the result into a Map holding
// every listed field.
func (v *Validator) check(s any, fields ...string) Map {
	m := make(Map, len(fields))
	for _, f := range fields {
		m[f] = false
	}

	err := v.v.Struct(s)
	if err == nil {
		return m
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// Invalid input to the validator itself; fail every field.
		for _, f := range fields {
			m[f] = true
		}
		return m
	}

	for _, e := range validationErrs {
		m[e.Field()] = true
	}
	return m
}
