// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a fixed taxonomy label a course can be filed under.
// Categories are read-only from the authoring surface; they are loaded
// by the seed command.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CategoryOption is a value/label pair for the searchable category picker.
type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryOptions converts categories into picker options, preserving order.
func CategoryOptions(cats []Category) []CategoryOption {
	opts := make([]CategoryOption, 0, len(cats))
	for _, c := range cats {
		opts = append(opts, CategoryOption{Value: c.ID.String(), Label: c.Name})
	}
	return opts
}

// OptionLabel returns the label of the option whose value matches, or ""
// when no option matches.
func OptionLabel(opts []CategoryOption, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return ""
}
