// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package validate holds the validation schema for editable course fields.
// The same rules gate submission in the dashboard and the CLI and are
// re-checked by the API, so a rejected value never reaches the database.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Field keys, matching the JSON keys of a course patch.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "categoryId"
	FieldImage       = "imageUrl"
)

// CourseFields carries the editable course values and their rules.
// Validate only the fields being submitted with Fields.
type CourseFields struct {
	Title       string `json:"title" validate:"required,notblank,max=300"`
	Description string `json:"description" validate:"required,notblank,max=10000"`
	CategoryID  string `json:"categoryId" validate:"required,uuid"`
	ImageURL    string `json:"imageUrl" validate:"required,url,max=2048"`
}

// goNames maps field keys to CourseFields struct field names.
var goNames = map[string]string{
	FieldTitle:       "Title",
	FieldDescription: "Description",
	FieldCategory:    "CategoryID",
	FieldImage:       "ImageURL",
}

// labels are the human-facing names used in messages.
var labels = map[string]string{
	FieldTitle:       "Title",
	FieldDescription: "Description",
	FieldCategory:    "Category",
	FieldImage:       "Image",
}

// ValidationError is a local, field-level rejection. Fields maps a field
// key to its message.
type ValidationError struct {
	Fields map[string]string
}

// Error joins the field messages in key order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message returns the message for a field, or "" if it passed.
func (e *ValidationError) Message(field string) string {
	return e.Fields[field]
}

// NewError builds a single-field validation error.
func NewError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AsValidation unwraps err into a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var (
	v          *validator.Validate
	translator ut.Translator

	notBlankTag = "notblank"
)

func init() {
	v = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, notBlankValidation)

	registerTranslation("required", "{0} is required")
	registerTranslation(notBlankTag, "{0} is required")
	registerTranslation("max", "{0} is too long (max {1} characters)")
	registerTranslation("uuid", "{0} is not a valid option")
	registerTranslation("url", "{0} must be a valid URL")
}

// registerTranslation adds an English message for a tag. {0} is the field
// label and {1} the rule parameter.
func registerTranslation(tag, text string) {
	_ = v.RegisterTranslation(tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, label(fe.Field()), fe.Param())
			return s
		},
	)
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

// notBlankValidation rejects whitespace-only strings.
func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// Fields validates the named fields of f. With no names, every field is
// checked. Unknown names are reported as an error, not a rejection.
func Fields(f CourseFields, names ...string) error {
	var err error
	if len(names) == 0 {
		err = v.Struct(f)
	} else {
		partial := make([]string, 0, len(names))
		for _, n := range names {
			gn, ok := goNames[n]
			if !ok {
				return fmt.Errorf("validate: unknown field %q", n)
			}
			partial = append(partial, gn)
		}
		err = v.StructPartial(f, partial...)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		// Keep the first failing rule per field.
		if _, seen := ve.Fields[fe.Field()]; !seen {
			ve.Fields[fe.Field()] = fe.Translate(translator)
		}
	}
	return ve
}

// Value validates a single field value by key.
func Value(field, value string) error {
	var f CourseFields
	switch field {
	case FieldTitle:
		f.Title = value
	case FieldDescription:
		f.Description = value
	case FieldCategory:
		f.CategoryID = value
	case FieldImage:
		f.ImageURL = value
	default:
		return fmt.Errorf("validate: unknown field %q", field)
	}
	return Fields(f, field)
}

// OneOf checks that value is one of the allowed option values.
func OneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return NewError(field, label(field)+" is not a valid option")
}
