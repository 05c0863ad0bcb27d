// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"learnhub/internal/apiclient"
	"learnhub/internal/cache"
	"learnhub/internal/editable"
	"learnhub/internal/identity"
	"learnhub/internal/middleware"
	"learnhub/internal/models"
	"learnhub/internal/render"
	"learnhub/internal/session"
	"learnhub/internal/upload"
	"learnhub/internal/validate"
)

// createdMessage is the flash shown on the setup page after creation.
const createdMessage = "Course has been created."

// CourseAPI is the mutation client as seen by the dashboard.
type CourseAPI interface {
	CreateCourse(ctx context.Context, title string) (*apiclient.Mutation, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, patch models.CoursePatch) (*apiclient.Mutation, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	Upload(ctx context.Context, endpoint, filename string, r io.Reader) (*models.Upload, error)
}

// Flashes carries toasts across a redirect.
type Flashes interface {
	Push(ctx context.Context, w http.ResponseWriter, r *http.Request, t session.Toast) error
	Pop(ctx context.Context, r *http.Request) ([]session.Toast, error)
}

// InvalidationLog records cache invalidations.
type InvalidationLog interface {
	Log(ctx context.Context, entityType string, entityID uuid.UUID, action string)
}

// Teacher groups the dashboard handlers and their dependencies.
type Teacher struct {
	renderer *render.Renderer
	api      CourseAPI
	cache    *cache.CourseCache
	flashes  Flashes
	cacheLog InvalidationLog
	inflight *editable.InFlight
}

// NewTeacher creates the dashboard handler group. flashes and cacheLog may
// be nil.
func NewTeacher(renderer *render.Renderer, api CourseAPI, courseCache *cache.CourseCache, flashes Flashes, cacheLog InvalidationLog) *Teacher {
	return &Teacher{
		renderer: renderer,
		api:      api,
		cache:    courseCache,
		flashes:  flashes,
		cacheLog: cacheLog,
		inflight: editable.NewInFlight(),
	}
}

// Home renders the guest dashboard.
func (t *Teacher) Home(w http.ResponseWriter, r *http.Request) {
	t.renderer.Page(w, r, "home", &render.PageData{Title: "Dashboard", Toasts: t.popFlashes(r)})
}

// Browse renders the category overview.
func (t *Teacher) Browse(w http.ResponseWriter, r *http.Request) {
	cats, err := t.loadCategories(r.Context())
	if err != nil {
		slog.Error("load categories failed", "error", err)
	}
	t.renderer.Page(w, r, "browse", &render.PageData{
		Title: "Browse",
		Data:  map[string]any{"Categories": cats},
	})
}

// Analytics renders simple counts over the teacher's courses.
func (t *Teacher) Analytics(w http.ResponseWriter, r *http.Request) {
	courses, err := t.loadCourses(r.Context())
	if err != nil {
		slog.Error("load courses failed", "error", err)
	}

	var published, complete int
	for i := range courses {
		if courses[i].IsPublished {
			published++
		}
		if done, total := courses[i].Completion(); done == total {
			complete++
		}
	}

	t.renderer.Page(w, r, "analytics", &render.PageData{
		Title: "Analytics",
		Data: map[string]any{
			"Total":     len(courses),
			"Published": published,
			"Complete":  complete,
		},
	})
}

// CoursesList renders the teacher's courses.
func (t *Teacher) CoursesList(w http.ResponseWriter, r *http.Request) {
	courses, err := t.loadCourses(r.Context())
	if err != nil {
		slog.Error("load courses failed", "error", err)
		render.Toast(w, session.Failure())
	}

	t.renderer.Page(w, r, "courses_list", &render.PageData{
		Title:  "Courses",
		Data:   map[string]any{"Courses": courses},
		Toasts: t.popFlashes(r),
	})
}

// createForm is the view model of the course-creation form.
type createForm struct {
	Title     string
	Error     string
	CanSubmit bool
	CSRFToken string
}

// CreatePage renders the empty course-creation form.
func (t *Teacher) CreatePage(w http.ResponseWriter, r *http.Request) {
	form := createForm{CSRFToken: middleware.CSRFTokenFromCtx(r.Context())}
	t.renderer.Page(w, r, "course_create", &render.PageData{
		Title: "Create course",
		Data:  map[string]any{"Form": form},
	})
}

// CreateSubmit validates the title, creates the course through the API and
// redirects to its setup page.
func (t *Teacher) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())
	form := createForm{
		Title:     r.FormValue("title"),
		CSRFToken: middleware.CSRFTokenFromCtx(r.Context()),
	}

	if err := validate.Value(validate.FieldTitle, form.Title); err != nil {
		form.Error = fieldMessage(err, validate.FieldTitle)
		t.renderCreateForm(w, r, form)
		return
	}
	form.CanSubmit = true

	release, ok := t.inflight.Acquire(user.ID, uuid.Nil, "create")
	if !ok {
		http.Error(w, "Course creation already in progress", http.StatusConflict)
		return
	}
	defer release()

	// A sent mutation runs to completion even if the browser goes away.
	ctx := context.WithoutCancel(r.Context())

	m, err := t.api.CreateCourse(ctx, form.Title)
	if err != nil {
		slog.Error("create course failed", "user_id", user.ID, "error", err)
		var te *apiclient.TransportError
		if errors.As(err, &te) && te.Fields[validate.FieldTitle] != "" {
			form.Error = te.Fields[validate.FieldTitle]
		} else {
			render.Toast(w, session.Failure())
		}
		t.renderCreateForm(w, r, form)
		return
	}

	t.invalidate(ctx, m.Course.ID, "create", m.Stale)

	if t.flashes != nil {
		if err := t.flashes.Push(ctx, w, r, session.Success(createdMessage)); err != nil {
			slog.Warn("queue toast failed", "error", err)
		}
	}
	render.Redirect(w, r, "/teacher/courses/"+m.Course.ID.String())
}

func (t *Teacher) renderCreateForm(w http.ResponseWriter, r *http.Request, form createForm) {
	if render.IsHTMX(r) {
		t.renderer.Fragment(w, "create_form", form)
		return
	}
	t.renderer.Page(w, r, "course_create", &render.PageData{
		Title: "Create course",
		Data:  map[string]any{"Form": form},
	})
}

// CourseSetup renders the setup page with one card per editable field.
func (t *Teacher) CourseSetup(w http.ResponseWriter, r *http.Request) {
	course, ok := t.courseFromURL(w, r)
	if !ok {
		return
	}

	options, err := t.loadOptions(r.Context())
	if err != nil {
		slog.Error("load categories failed", "error", err)
	}

	cards := make([]editable.Card, 0, len(editable.All))
	for _, f := range editable.All {
		cards = append(cards, editable.NewSession(f, course, options).Card())
	}

	t.renderer.Page(w, r, "course_setup", &render.PageData{
		Title: "Course setup",
		Data: map[string]any{
			"Course":     course,
			"Cards":      cards,
			"Completion": completion(course),
		},
		Toasts: t.popFlashes(r),
	})
}

// FieldView renders one card in view mode. It is also the cancel action.
func (t *Teacher) FieldView(w http.ResponseWriter, r *http.Request) {
	s, ok := t.fieldSession(w, r)
	if !ok {
		return
	}
	t.renderer.Fragment(w, "field_card", s.Card())
}

// FieldEdit renders one card in edit mode with the current value.
func (t *Teacher) FieldEdit(w http.ResponseWriter, r *http.Request) {
	s, ok := t.fieldSession(w, r)
	if !ok {
		return
	}
	s.Toggle()
	t.renderer.Fragment(w, "field_card", s.Card())
}

// FieldSubmit sends a single-field update. On success the card returns to
// view mode with the server's value and a toast; on failure it stays in
// edit mode with the previous value kept.
func (t *Teacher) FieldSubmit(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())
	s, ok := t.fieldSession(w, r)
	if !ok {
		return
	}

	release, ok := t.inflight.Acquire(user.ID, s.CourseID, s.Field.Key)
	if !ok {
		http.Error(w, "Update already in progress", http.StatusConflict)
		return
	}
	defer release()

	ctx := context.WithoutCancel(r.Context())
	s.Toggle()

	if s.Field.Widget == editable.WidgetFile {
		url, err := t.uploadImage(ctx, r)
		if err != nil {
			render.Toast(w, uploadFailure(err))
			t.renderer.Fragment(w, "field_card", s.Card())
			return
		}
		s.SetInput(url)
	} else {
		s.SetInput(r.FormValue("value"))
	}

	err := s.Submit(ctx, t.api, invalidator{t: t, courseID: s.CourseID, field: s.Field.Key})
	switch {
	case err == nil:
		render.Toast(w, session.Success(s.Field.Success))
		t.renderer.Fragment(w, "field_card", s.Card())
		t.refreshCompletion(ctx, w, user.ID, s.CourseID)
	case isValidation(err):
		t.renderer.Fragment(w, "field_card", s.Card())
	default:
		slog.Error("update course field failed",
			"course_id", s.CourseID, "field", s.Field.Key, "error", err)
		render.Toast(w, session.Failure())
		t.renderer.Fragment(w, "field_card", s.Card())
	}
}

// uploadImage forwards the multipart file to the upload endpoint and
// returns the stored image URL.
func (t *Teacher) uploadImage(ctx context.Context, r *http.Request) (string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	res, err := t.api.Upload(ctx, upload.CourseImageEndpoint, header.Filename, file)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// refreshCompletion re-fetches the course after an update and swaps the
// completion counter out of band.
func (t *Teacher) refreshCompletion(ctx context.Context, w http.ResponseWriter, userID string, id uuid.UUID) {
	course, err := t.loadCourse(ctx, id)
	if err != nil || course.UserID != userID {
		return
	}
	t.renderer.Fragment(w, "completion_oob", completion(course))
}

// fieldSession loads the course and category options named by the URL
// and starts a view-mode session for the field.
func (t *Teacher) fieldSession(w http.ResponseWriter, r *http.Request) (*editable.Session, bool) {
	field, ok := editable.Lookup(chi.URLParam(r, "field"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	course, ok := t.courseFromURL(w, r)
	if !ok {
		return nil, false
	}

	var options []models.CategoryOption
	if field.Widget == editable.WidgetCombobox {
		var err error
		if options, err = t.loadOptions(r.Context()); err != nil {
			slog.Error("load categories failed", "error", err)
			render.Toast(w, session.Failure())
		}
	}
	return editable.NewSession(field, course, options), true
}

// courseFromURL loads the course in the URL, answering 404 when it is
// missing or owned by someone else.
func (t *Teacher) courseFromURL(w http.ResponseWriter, r *http.Request) (*models.Course, bool) {
	user := identity.FromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "courseID"))
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	course, err := t.loadCourse(r.Context(), id)
	if apiclient.IsNotFound(err) || (err == nil && course.UserID != user.ID) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		slog.Error("load course failed", "course_id", id, "error", err)
		http.Error(w, "Something went wrong.", http.StatusBadGateway)
		return nil, false
	}
	return course, true
}

// loadCourse fetches as the requesting user, so a miss is only shared
// with that user's concurrent requests. The API answers 404 to anyone else.
func (t *Teacher) loadCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	user := identity.FromContext(ctx)
	return cache.LoadFor(ctx, t.cache, cache.CourseKey(id), user.ID, func(ctx context.Context) (*models.Course, error) {
		return t.api.GetCourse(ctx, id)
	})
}

func (t *Teacher) loadCourses(ctx context.Context) ([]models.Course, error) {
	user := identity.FromContext(ctx)
	return cache.LoadFor(ctx, t.cache, cache.CourseListKey(user.ID), user.ID, t.api.ListCourses)
}

func (t *Teacher) loadCategories(ctx context.Context) ([]models.Category, error) {
	return cache.Load(ctx, t.cache, cache.CategoriesKey, t.api.ListCategories)
}

func (t *Teacher) loadOptions(ctx context.Context) ([]models.CategoryOption, error) {
	cats, err := t.loadCategories(ctx)
	if err != nil {
		return nil, err
	}
	return models.CategoryOptions(cats), nil
}

func (t *Teacher) popFlashes(r *http.Request) []session.Toast {
	if t.flashes == nil {
		return nil
	}
	toasts, err := t.flashes.Pop(r.Context(), r)
	if err != nil {
		slog.Warn("read queued toasts failed", "error", err)
	}
	return toasts
}

// invalidate drops the stale keys of a mutation and records it.
func (t *Teacher) invalidate(ctx context.Context, courseID uuid.UUID, action string, keys []cache.Key) {
	if err := t.cache.Invalidate(ctx, keys...); err != nil {
		slog.Warn("invalidate course cache failed", "course_id", courseID, "error", err)
	}
	if t.cacheLog != nil {
		t.cacheLog.Log(ctx, "course", courseID, action)
	}
}

// invalidator adapts Teacher to editable.Invalidator for one field update.
type invalidator struct {
	t        *Teacher
	courseID uuid.UUID
	field    string
}

func (i invalidator) Invalidate(ctx context.Context, keys ...cache.Key) error {
	i.t.invalidate(ctx, i.courseID, "update:"+i.field, keys)
	return nil
}

// completion formats the setup counter, e.g. "(2/4)".
func completion(c *models.Course) string {
	done, total := c.Completion()
	return fmt.Sprintf("(%d/%d)", done, total)
}

func isValidation(err error) bool {
	_, ok := validate.AsValidation(err)
	return ok
}

func fieldMessage(err error, key string) string {
	if ve, ok := validate.AsValidation(err); ok {
		return ve.Message(key)
	}
	return ""
}

// uploadFailure surfaces a rejected upload's message, or the generic
// failure toast.
func uploadFailure(err error) session.Toast {
	var te *apiclient.TransportError
	if errors.As(err, &te) && te.Message != "" {
		t := session.Failure()
		t.Description = te.Message
		return t
	}
	return session.Failure()
}
