// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editable implements the inline edit card shared by every course
// field: a configuration record per field and the edit session that
// toggles, validates and submits a single-field update.
package editable

import (
	"learnhub/internal/models"
	"learnhub/internal/validate"
)

// Widget is the input rendered in edit mode.
type Widget string

const (
	WidgetText     Widget = "text"
	WidgetTextarea Widget = "textarea"
	WidgetCombobox Widget = "combobox"
	WidgetFile     Widget = "file"
)

// Field describes one editable course field. The four instances below
// differ only in data; all behavior lives in Session.
type Field struct {
	Key         string // JSON key in a course patch
	Slug        string // URL segment of the card endpoints
	Label       string
	Widget      Widget
	Placeholder string // shown when the value is empty; "" renders an icon box
	InputHint   string
	EditLabel   string
	AddLabel    string // shown instead of EditLabel when the value is empty
	Success     string // toast title after a successful update
	Note        string
}

var (
	Title = Field{
		Key:       validate.FieldTitle,
		Slug:      "title",
		Label:     "Course title",
		Widget:    WidgetText,
		InputHint: "e.g. 'Advanced web development'",
		EditLabel: "Edit title",
		Success:   "Course title has been updated.",
	}
	Description = Field{
		Key:         validate.FieldDescription,
		Slug:        "description",
		Label:       "Course description",
		Widget:      WidgetTextarea,
		Placeholder: "No description",
		InputHint:   "e.g. 'This course is about...'",
		EditLabel:   "Edit description",
		Success:     "Course description has been updated.",
	}
	Category = Field{
		Key:         validate.FieldCategory,
		Slug:        "category",
		Label:       "Course category",
		Widget:      WidgetCombobox,
		Placeholder: "No category",
		InputHint:   "Select option...",
		EditLabel:   "Edit category",
		Success:     "Course category has been updated.",
	}
	Image = Field{
		Key:       validate.FieldImage,
		Slug:      "image",
		Label:     "Course image",
		Widget:    WidgetFile,
		EditLabel: "Edit image",
		AddLabel:  "Add an image",
		Success:   "Course image has been uploaded.",
		Note:      "16:9 aspect ratio recommended",
	}
)

// All lists the fields in the order they appear on the setup page.
var All = []Field{Title, Description, Image, Category}

// Lookup finds a field by its URL slug.
func Lookup(slug string) (Field, bool) {
	for _, f := range All {
		if f.Slug == slug {
			return f, true
		}
	}
	return Field{}, false
}

// Value extracts this field's current value from a course.
func (f Field) Value(c *models.Course) string {
	if c == nil {
		return ""
	}
	switch f.Key {
	case validate.FieldTitle:
		return c.Title
	case validate.FieldDescription:
		return c.DescriptionText()
	case validate.FieldCategory:
		return c.CategoryIDText()
	case validate.FieldImage:
		return c.ImageURLText()
	}
	return ""
}

// Patch builds a course patch that changes only this field.
func (f Field) Patch(value string) models.CoursePatch {
	var p models.CoursePatch
	switch f.Key {
	case validate.FieldTitle:
		p.Title = &value
	case validate.FieldDescription:
		p.Description = &value
	case validate.FieldCategory:
		p.CategoryID = &value
	case validate.FieldImage:
		p.ImageURL = &value
	}
	return p
}

// Validate applies the field rule. Category values must also be one of
// the provided options.
func (f Field) Validate(value string, options []models.CategoryOption) error {
	if err := validate.Value(f.Key, value); err != nil {
		return err
	}
	if f.Widget == WidgetCombobox {
		allowed := make([]string, 0, len(options))
		for _, o := range options {
			allowed = append(allowed, o.Value)
		}
		return validate.OneOf(f.Key, value, allowed)
	}
	return nil
}

// ActionLabel returns the toggle button text for the given current value.
func (f Field) ActionLabel(value string) string {
	if value == "" && f.AddLabel != "" {
		return f.AddLabel
	}
	return f.EditLabel
}
