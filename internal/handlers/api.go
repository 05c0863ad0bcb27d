// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for learnhub. The API group
// owns persistence and answers JSON; the Teacher group renders the
// dashboard and reaches the API only through the mutation client.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"learnhub/internal/identity"
	"learnhub/internal/metrics"
	"learnhub/internal/models"
	"learnhub/internal/upload"
	"learnhub/internal/validate"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// API error codes.
const (
	codeInvalidBody      = "invalid_body"
	codeInvalidCourseID  = "invalid_course_id"
	codeEmptyPatch       = "empty_patch"
	codeValidationFailed = "validation_failed"
	codeCourseNotFound   = "course_not_found"
	codeUnknownEndpoint  = "unknown_endpoint"
	codeUploadRejected   = "upload_rejected"
	codeInternal         = "internal_error"
)

// CourseRepository persists courses.
type CourseRepository interface {
	Create(ctx context.Context, userID, title string) (*models.Course, error)
	FindOwned(ctx context.Context, id uuid.UUID, userID string) (*models.Course, error)
	ListByUser(ctx context.Context, userID string) ([]models.Course, error)
	Patch(ctx context.Context, id uuid.UUID, userID string, p models.CoursePatch) (*models.Course, error)
}

// CategoryRepository reads the category taxonomy.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Uploader routes an uploaded file to a named endpoint. Stored keys carry
// the uploading user so Owns can tell whose object a key is.
type Uploader interface {
	Endpoint(name string) (upload.Endpoint, bool)
	Upload(ctx context.Context, endpoint, owner, filename string, data []byte) (*models.Upload, error)
	Owns(userID, key string) bool
}

// ObjectRemover deletes stored objects that a course no longer references.
type ObjectRemover interface {
	KeyFromURL(rawURL string) (string, bool)
	Delete(ctx context.Context, key string) error
}

// API groups the JSON course API handlers and their dependencies.
type API struct {
	courses    CourseRepository
	categories CategoryRepository
	uploads    Uploader
	objects    ObjectRemover
}

// NewAPI creates the API handler group. objects may be nil when object
// storage is not configured; replaced images are then left in place.
func NewAPI(courses CourseRepository, categories CategoryRepository, uploads Uploader, objects ObjectRemover) *API {
	return &API{courses: courses, categories: categories, uploads: uploads, objects: objects}
}

// CreateCourse handles POST /api/courses.
func (a *API) CreateCourse(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())

	var in models.NewCourse
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody)
		return
	}

	if err := validate.Value(validate.FieldTitle, in.Title); err != nil {
		metrics.CourseMutations.WithLabelValues("create", metrics.OutcomeRejected).Inc()
		writeValidation(w, err)
		return
	}

	course, err := a.courses.Create(r.Context(), user.ID, in.Title)
	if err != nil {
		metrics.CourseMutations.WithLabelValues("create", metrics.OutcomeError).Inc()
		slog.Error("create course failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}

	metrics.CourseMutations.WithLabelValues("create", metrics.OutcomeSuccess).Inc()
	slog.Info("course created", "course_id", course.ID, "user_id", user.ID)
	writeJSON(w, http.StatusCreated, course)
}

// ListCourses handles GET /api/courses.
func (a *API) ListCourses(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())

	courses, err := a.courses.ListByUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("list courses failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /api/courses/{courseID}.
func (a *API) GetCourse(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidCourseID)
		return
	}

	course, err := a.courses.FindOwned(r.Context(), id, user.ID)
	if err != nil {
		slog.Error("get course failed", "course_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}
	if course == nil {
		writeError(w, http.StatusNotFound, codeCourseNotFound)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// PatchCourse handles PATCH /api/courses/{courseID}. Only the keys present
// in the body are written; the last writer wins.
func (a *API) PatchCourse(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidCourseID)
		return
	}

	var patch models.CoursePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody)
		return
	}
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, codeEmptyPatch)
		return
	}
	fields := patch.Fields()

	if err := a.validatePatch(ctx, patch); err != nil {
		if _, ok := validate.AsValidation(err); ok {
			countMutation(fields, metrics.OutcomeRejected)
			writeValidation(w, err)
			return
		}
		slog.Error("validate course patch failed", "course_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}

	before, err := a.courses.FindOwned(ctx, id, user.ID)
	if err != nil {
		countMutation(fields, metrics.OutcomeError)
		slog.Error("load course failed", "course_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}
	if before == nil {
		writeError(w, http.StatusNotFound, codeCourseNotFound)
		return
	}

	course, err := a.courses.Patch(ctx, id, user.ID, patch)
	if err != nil {
		countMutation(fields, metrics.OutcomeError)
		slog.Error("patch course failed", "course_id", id, "fields", fields, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}
	if course == nil {
		writeError(w, http.StatusNotFound, codeCourseNotFound)
		return
	}

	countMutation(fields, metrics.OutcomeSuccess)
	slog.Info("course updated", "course_id", id, "user_id", user.ID, "fields", fields)

	if patch.ImageURL != nil && before.ImageURLText() != course.ImageURLText() {
		a.removeObject(ctx, user.ID, before.ImageURLText())
	}
	writeJSON(w, http.StatusOK, course)
}

// validatePatch checks every present key against its rule. The category
// must also exist.
func (a *API) validatePatch(ctx context.Context, p models.CoursePatch) error {
	var f validate.CourseFields
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.CategoryID != nil {
		f.CategoryID = *p.CategoryID
	}
	if p.ImageURL != nil {
		f.ImageURL = *p.ImageURL
	}
	if err := validate.Fields(f, p.Fields()...); err != nil {
		return err
	}

	if p.CategoryID != nil {
		catID, err := uuid.Parse(*p.CategoryID)
		if err != nil {
			return validate.OneOf(validate.FieldCategory, *p.CategoryID, nil)
		}
		ok, err := a.categories.Exists(ctx, catID)
		if err != nil {
			return err
		}
		if !ok {
			return validate.OneOf(validate.FieldCategory, *p.CategoryID, nil)
		}
	}
	return nil
}

// removeObject deletes a replaced image from our bucket if userID uploaded
// it. A course may point at any URL, including another user's upload, so
// anything else is left alone. Failures are logged; the course update
// already succeeded.
func (a *API) removeObject(ctx context.Context, userID, oldURL string) {
	if a.objects == nil || oldURL == "" {
		return
	}
	key, ok := a.objects.KeyFromURL(oldURL)
	if !ok {
		return
	}
	if !a.uploads.Owns(userID, key) {
		slog.Debug("keep replaced course image not uploaded by user", "key", key, "user_id", userID)
		return
	}
	if err := a.objects.Delete(ctx, key); err != nil {
		slog.Warn("delete replaced course image failed", "key", key, "error", err)
	}
}

// ListCategories handles GET /api/categories.
func (a *API) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

// Upload handles POST /api/uploads/{endpoint} with a multipart "file".
func (a *API) Upload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "endpoint")
	ep, ok := a.uploads.Endpoint(name)
	if !ok {
		writeError(w, http.StatusNotFound, codeUnknownEndpoint)
		return
	}

	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, ep.MaxSize+maxJSONBody)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			a.rejectUpload(w, name, ep.TooLarge())
			return
		}
		a.rejectUpload(w, name, &upload.Error{Status: http.StatusBadRequest, Message: "No file provided."})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ep.MaxSize+1))
	if err != nil {
		a.rejectUpload(w, name, &upload.Error{Status: http.StatusBadRequest, Message: "Could not read the uploaded file."})
		return
	}

	user := identity.FromContext(r.Context())
	res, err := a.uploads.Upload(r.Context(), name, user.ID, header.Filename, data)
	if err != nil {
		var ue *upload.Error
		if errors.As(err, &ue) {
			a.rejectUpload(w, name, ue)
			return
		}
		metrics.Uploads.WithLabelValues(name, metrics.OutcomeError).Inc()
		slog.Error("upload failed", "endpoint", name, "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal)
		return
	}

	metrics.Uploads.WithLabelValues(name, metrics.OutcomeSuccess).Inc()
	slog.Info("file uploaded", "endpoint", name, "key", res.Key, "size", res.Size)
	writeJSON(w, http.StatusOK, res)
}

func (a *API) rejectUpload(w http.ResponseWriter, endpoint string, ue *upload.Error) {
	metrics.Uploads.WithLabelValues(endpoint, metrics.OutcomeRejected).Inc()
	writeJSON(w, ue.Status, map[string]string{"error": codeUploadRejected, "message": ue.Message})
}

func countMutation(fields []string, outcome string) {
	for _, f := range fields {
		metrics.CourseMutations.WithLabelValues(f, outcome).Inc()
	}
}

// decodeJSON reads a size-limited JSON body, rejecting unknown keys.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeValidation answers 400 with the per-field messages.
func writeValidation(w http.ResponseWriter, err error) {
	ve, _ := validate.AsValidation(err)
	fields := map[string]string{}
	if ve != nil {
		fields = ve.Fields
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"error": codeValidationFailed, "fields": fields})
}
