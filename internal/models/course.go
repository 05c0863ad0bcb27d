// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the request/response shapes shared by the API and its clients.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Course is the top-level authored entity. Only the title is required;
// every other editable field may be absent.
type Course struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"imageUrl"`
	Price       *float64   `json:"price"`
	IsPublished bool       `json:"isPublished"`
	CategoryID  *uuid.UUID `json:"categoryId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// DescriptionText returns the description or "" when absent.
func (c *Course) DescriptionText() string {
	if c.Description == nil {
		return ""
	}
	return *c.Description
}

// ImageURLText returns the image URL or "" when absent.
func (c *Course) ImageURLText() string {
	if c.ImageURL == nil {
		return ""
	}
	return *c.ImageURL
}

// CategoryIDText returns the category id as a string or "" when absent.
func (c *Course) CategoryIDText() string {
	if c.CategoryID == nil {
		return ""
	}
	return c.CategoryID.String()
}

// RequiredFields lists the values that count towards course setup
// completion, in display order.
func (c *Course) RequiredFields() []string {
	return []string{c.Title, c.DescriptionText(), c.ImageURLText(), c.CategoryIDText()}
}

// Completion returns how many required fields are filled in and the total.
func (c *Course) Completion() (done, total int) {
	fields := c.RequiredFields()
	for _, f := range fields {
		if f != "" {
			done++
		}
	}
	return done, len(fields)
}

// NewCourse is the body of a course creation request.
type NewCourse struct {
	Title string `json:"title"`
}

// CoursePatch is a partial update of a course. Nil fields are left
// untouched; the API sets only the keys present in the request body.
type CoursePatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *string `json:"categoryId,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CoursePatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.CategoryID == nil && p.ImageURL == nil
}

// Fields returns the JSON keys present in the patch, in a fixed order.
func (p CoursePatch) Fields() []string {
	var keys []string
	if p.Title != nil {
		keys = append(keys, "title")
	}
	if p.Description != nil {
		keys = append(keys, "description")
	}
	if p.CategoryID != nil {
		keys = append(keys, "categoryId")
	}
	if p.ImageURL != nil {
		keys = append(keys, "imageUrl")
	}
	return keys
}
