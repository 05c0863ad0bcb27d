// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apiclient is the mutation client for the course API. Each call
// is exactly one HTTP request; nothing is retried. Mutations report the
// cached reads they made stale, and the caller invalidates them.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"learnhub/internal/cache"
	"learnhub/internal/identity"
	"learnhub/internal/middleware"
	"learnhub/internal/models"
)

// maxErrorBody caps how much of an error response is decoded.
const maxErrorBody = 64 << 10

// TransportError reports a failed request: a connection failure (Status
// is 0) or a response with status >= 400.
type TransportError struct {
	Op      string
	Status  int
	Code    string            // API error code, e.g. "validation_failed"
	Fields  map[string]string // per-field messages on validation failures
	Message string            // user-facing message, e.g. a rejected upload
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Code != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Code)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Status == http.StatusNotFound
}

// Mutation is the result of a create or update: the server's course and
// the cache keys that must be invalidated.
type Mutation struct {
	Course *models.Course
	Stale  []cache.Key
}

// Client talks to the course API. The acting user is taken from the
// request context and forwarded in the identity headers.
type Client struct {
	baseURL string
	http    *http.Client
	name    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithName sets the value sent in the client header.
func WithName(name string) Option {
	return func(c *Client) { c.name = name }
}

// New creates a client for the API at baseURL. The default HTTP client has
// no timeout: a sent mutation runs to completion or failure.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		name:    "learnhub",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreateCourse creates a course with the given title.
func (c *Client) CreateCourse(ctx context.Context, title string) (*Mutation, error) {
	var course models.Course
	if err := c.doJSON(ctx, "create course", http.MethodPost, "/api/courses", models.NewCourse{Title: title}, &course); err != nil {
		return nil, err
	}
	var stale []cache.Key
	if u := identity.FromContext(ctx); u != nil {
		stale = append(stale, cache.CourseListKey(u.ID))
	}
	return &Mutation{Course: &course, Stale: stale}, nil
}

// UpdateCourse sends a partial update of one course.
func (c *Client) UpdateCourse(ctx context.Context, id uuid.UUID, patch models.CoursePatch) (*Mutation, error) {
	var course models.Course
	if err := c.doJSON(ctx, "update course", http.MethodPatch, "/api/courses/"+id.String(), patch, &course); err != nil {
		return nil, err
	}
	stale := []cache.Key{cache.CourseKey(id)}
	if u := identity.FromContext(ctx); u != nil {
		stale = append(stale, cache.CourseListKey(u.ID))
	}
	return &Mutation{Course: &course, Stale: stale}, nil
}

// GetCourse fetches one course owned by the acting user.
func (c *Client) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var course models.Course
	if err := c.doJSON(ctx, "get course", http.MethodGet, "/api/courses/"+id.String(), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListCourses fetches the acting user's courses.
func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.doJSON(ctx, "list courses", http.MethodGet, "/api/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListCategories fetches the category option list.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := c.doJSON(ctx, "list categories", http.MethodGet, "/api/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Upload sends one file to an upload endpoint and returns where it was
// stored.
func (c *Client) Upload(ctx context.Context, endpoint, filename string, r io.Reader) (*models.Upload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("upload: read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	var res models.Upload
	path := "/api/uploads/" + url.PathEscape(endpoint)
	if err := c.do(ctx, "upload", http.MethodPost, path, &buf, mw.FormDataContentType(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, body, contentType, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.ClientHeader, c.name)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if u := identity.FromContext(ctx); u != nil {
		u.SetHeaders(req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		te := &TransportError{Op: op, Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
		var apiErr struct {
			Error   string            `json:"error"`
			Fields  map[string]string `json:"fields"`
			Message string            `json:"message"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&apiErr) == nil {
			te.Code = apiErr.Error
			te.Fields = apiErr.Fields
			te.Message = apiErr.Message
		}
		return te
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
