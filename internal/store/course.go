// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the PostgreSQL repositories behind the
// course API.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"learnhub/internal/models"
)

// CourseStore handles all course-related database operations.
type CourseStore struct {
	db *sql.DB
}

// NewCourseStore creates a new CourseStore with the given database connection.
func NewCourseStore(db *sql.DB) *CourseStore {
	return &CourseStore{db: db}
}

const courseColumns = `id, user_id, title, description, image_url, price,
	is_published, category_id, created_at, updated_at`

// scanCourse scans a row into a Course struct.
func scanCourse(scanner interface{ Scan(...any) error }) (*models.Course, error) {
	var c models.Course
	err := scanner.Scan(
		&c.ID, &c.UserID, &c.Title, &c.Description, &c.ImageURL, &c.Price,
		&c.IsPublished, &c.CategoryID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new course owned by userID with only a title set.
func (s *CourseStore) Create(ctx context.Context, userID, title string) (*models.Course, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO courses (user_id, title)
		VALUES ($1, $2)
		RETURNING `+courseColumns,
		userID, title,
	)
	c, err := scanCourse(row)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return c, nil
}

// FindOwned retrieves a course by ID if it belongs to userID.
// Returns nil if the course does not exist or belongs to someone else.
func (s *CourseStore) FindOwned(ctx context.Context, id uuid.UUID, userID string) (*models.Course, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1 AND user_id = $2`, id, userID)
	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find course by id: %w", err)
	}
	return c, nil
}

// ListByUser returns the courses owned by userID, newest first.
func (s *CourseStore) ListByUser(ctx context.Context, userID string) ([]models.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var items []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// Patch applies a partial update to a course owned by userID and returns
// the updated row. Only the keys present in the patch are written; the
// last writer wins. Returns nil if no owned course matches.
func (s *CourseStore) Patch(ctx context.Context, id uuid.UUID, userID string, p models.CoursePatch) (*models.Course, error) {
	sets, args, err := patchAssignments(p)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("patch course: nothing to update")
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE courses SET %s, updated_at = NOW()
		WHERE id = $%d AND user_id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), courseColumns,
	)

	c, err := scanCourse(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("patch course: %w", err)
	}
	return c, nil
}

// patchAssignments builds the SET clauses and positional arguments for a
// patch. An empty description or image URL clears the column.
func patchAssignments(p models.CoursePatch) ([]string, []any, error) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", nullIfEmpty(*p.Description))
	}
	if p.ImageURL != nil {
		add("image_url", nullIfEmpty(*p.ImageURL))
	}
	if p.CategoryID != nil {
		if *p.CategoryID == "" {
			add("category_id", nil)
		} else {
			catID, err := uuid.Parse(*p.CategoryID)
			if err != nil {
				return nil, nil, fmt.Errorf("patch course: invalid category id: %w", err)
			}
			add("category_id", catID)
		}
	}
	return sets, args, nil
}

// nullIfEmpty maps "" to SQL NULL so absent fields stay absent.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
