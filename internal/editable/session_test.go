// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editable

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"learnhub/internal/apiclient"
	"learnhub/internal/cache"
	"learnhub/internal/models"
	"learnhub/internal/validate"
)

// fakeUpdater records calls and answers with a fixed course or error.
type fakeUpdater struct {
	mu      sync.Mutex
	calls   int
	patches []models.CoursePatch

	reply   func(p models.CoursePatch) *models.Course
	err     error
	started chan struct{}
	block   chan struct{}
}

func (f *fakeUpdater) UpdateCourse(_ context.Context, id uuid.UUID, p models.CoursePatch) (*apiclient.Mutation, error) {
	f.mu.Lock()
	f.calls++
	f.patches = append(f.patches, p)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &apiclient.Mutation{
		Course: f.reply(p),
		Stale:  []cache.Key{cache.CourseKey(id)},
	}, nil
}

func (f *fakeUpdater) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeInvalidator struct {
	keys []cache.Key
}

func (f *fakeInvalidator) Invalidate(_ context.Context, keys ...cache.Key) error {
	f.keys = append(f.keys, keys...)
	return nil
}

func strPtr(s string) *string { return &s }

func testOptions() []models.CategoryOption {
	return []models.CategoryOption{
		{Value: "0b7f3e1c-6a52-4c8e-9a57-0d5f6d3c8a11", Label: "Music"},
		{Value: "5e2d1a9b-3c4f-4e6a-8b7c-9d0e1f2a3b4c", Label: "Fitness"},
	}
}

func testCourse() *models.Course {
	cat := uuid.MustParse("0b7f3e1c-6a52-4c8e-9a57-0d5f6d3c8a11")
	return &models.Course{
		ID:          uuid.New(),
		UserID:      "user-1",
		Title:       "Systems",
		Description: strPtr("Low level things"),
		ImageURL:    strPtr("https://cdn.example.com/a.png"),
		CategoryID:  &cat,
	}
}

// echo returns a reply func that applies the patch to a copy of base.
func echo(base *models.Course) func(models.CoursePatch) *models.Course {
	return func(p models.CoursePatch) *models.Course {
		c := *base
		if p.Title != nil {
			c.Title = *p.Title
		}
		if p.Description != nil {
			c.Description = p.Description
		}
		if p.ImageURL != nil {
			c.ImageURL = p.ImageURL
		}
		if p.CategoryID != nil {
			id := uuid.MustParse(*p.CategoryID)
			c.CategoryID = &id
		}
		return &c
	}
}

func TestToggleTwiceRestoresDisplayedValue(t *testing.T) {
	course := testCourse()
	for _, f := range All {
		t.Run(f.Slug, func(t *testing.T) {
			s := NewSession(f, course, testOptions())
			before, beforePlaceholder := s.Display()

			s.Toggle()
			if !s.Editing() {
				t.Fatal("expected edit mode after first toggle")
			}
			if s.Input() != f.Value(course) {
				t.Errorf("input = %q, want current value %q", s.Input(), f.Value(course))
			}
			s.SetInput("something else")
			s.Toggle()

			if s.Editing() {
				t.Error("expected view mode after second toggle")
			}
			after, afterPlaceholder := s.Display()
			if after != before || afterPlaceholder != beforePlaceholder {
				t.Errorf("display = %q/%v, want %q/%v", after, afterPlaceholder, before, beforePlaceholder)
			}
			if s.Input() != f.Value(course) {
				t.Errorf("input not restored: %q", s.Input())
			}
			if s.Status() != StatusIdle {
				t.Errorf("status = %v, want idle", s.Status())
			}
		})
	}
}

func TestSubmitRejectsEmptyValuesLocally(t *testing.T) {
	tests := []struct {
		field Field
		input string
		want  string
	}{
		{Title, "", "Title is required"},
		{Title, "   ", "Title is required"},
		{Description, "", "Description is required"},
		{Category, "", "Category is required"},
		{Category, "not-an-option", "Category is not a valid option"},
		{Image, "", "Image is required"},
	}

	for _, tt := range tests {
		t.Run(tt.field.Slug+"/"+tt.input, func(t *testing.T) {
			u := &fakeUpdater{reply: echo(testCourse())}
			s := NewSession(tt.field, testCourse(), testOptions())
			s.Toggle()
			s.SetInput(tt.input)

			if s.CanSubmit() {
				t.Error("CanSubmit should be false for an invalid input")
			}
			err := s.Submit(context.Background(), u, nil)
			if _, ok := validate.AsValidation(err); !ok {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if u.callCount() != 0 {
				t.Errorf("updater called %d times, want 0", u.callCount())
			}
			if s.FieldError() != tt.want {
				t.Errorf("field error = %q, want %q", s.FieldError(), tt.want)
			}
			if !s.Editing() {
				t.Error("edit mode should stay open after a local rejection")
			}
		})
	}
}

func TestSubmitDisplaysServerValue(t *testing.T) {
	course := testCourse()
	u := &fakeUpdater{reply: func(p models.CoursePatch) *models.Course {
		c := *course
		c.Title = "Systems, revised"
		return &c
	}}
	inv := &fakeInvalidator{}

	s := NewSession(Title, course, nil)
	s.Toggle()
	s.SetInput("Systems revised")
	if err := s.Submit(context.Background(), u, inv); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if got, _ := s.Display(); got != "Systems, revised" {
		t.Errorf("display = %q, want the server's value", got)
	}
	if s.Editing() {
		t.Error("edit mode should close on success")
	}
	if s.Status() != StatusSuccess {
		t.Errorf("status = %v, want success", s.Status())
	}
	if len(u.patches) != 1 || u.patches[0].Title == nil || *u.patches[0].Title != "Systems revised" {
		t.Errorf("unexpected patches: %+v", u.patches)
	}
	if u.patches[0].Description != nil || u.patches[0].CategoryID != nil || u.patches[0].ImageURL != nil {
		t.Error("patch should carry only the title")
	}
	if len(inv.keys) != 1 || inv.keys[0] != cache.CourseKey(course.ID) {
		t.Errorf("invalidated keys = %v", inv.keys)
	}
}

func TestSubmitFailureKeepsPreviousValue(t *testing.T) {
	course := testCourse()
	u := &fakeUpdater{err: &apiclient.TransportError{Op: "update course", Status: 500, Code: "internal"}}
	inv := &fakeInvalidator{}

	s := NewSession(Description, course, nil)
	s.Toggle()
	s.SetInput("A new description")
	err := s.Submit(context.Background(), u, inv)

	var te *apiclient.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if got, _ := s.Display(); got != "Low level things" {
		t.Errorf("display = %q, want previous value", got)
	}
	if !s.Editing() {
		t.Error("edit mode should stay open after a failure")
	}
	if !s.CanSubmit() {
		t.Error("submit control should be enabled again after a failure")
	}
	if s.Input() != "A new description" {
		t.Errorf("input = %q, typed value should be kept for retry", s.Input())
	}
	if len(inv.keys) != 0 {
		t.Errorf("nothing should be invalidated on failure, got %v", inv.keys)
	}
}

func TestSubmitFailureSurfacesServerFieldMessage(t *testing.T) {
	u := &fakeUpdater{err: &apiclient.TransportError{
		Status: 400,
		Code:   "validation_failed",
		Fields: map[string]string{"categoryId": "Category is not a valid option"},
	}}
	s := NewSession(Category, testCourse(), testOptions())
	s.Toggle()
	s.SetInput(testOptions()[1].Value)
	if err := s.Submit(context.Background(), u, nil); err == nil {
		t.Fatal("expected an error")
	}
	if s.FieldError() != "Category is not a valid option" {
		t.Errorf("field error = %q", s.FieldError())
	}
}

func TestSubmitPendingClearedExactlyOnce(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []Status
	}{
		{"success", nil, []Status{StatusPending, StatusSuccess}},
		{"failure", errors.New("connection refused"), []Status{StatusPending, StatusError}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &fakeUpdater{
				reply:   echo(testCourse()),
				err:     tt.err,
				started: make(chan struct{}, 1),
				block:   make(chan struct{}),
			}
			s := NewSession(Title, testCourse(), nil)
			var seen []Status
			s.OnStatus = func(st Status) { seen = append(seen, st) }
			s.Toggle()
			s.SetInput("Another title")

			done := make(chan error, 1)
			go func() { done <- s.Submit(context.Background(), u, nil) }()
			<-u.started

			if !s.Pending() {
				t.Error("expected pending while the request is in flight")
			}
			if s.CanSubmit() {
				t.Error("submit control must be disabled while pending")
			}
			if err := s.Submit(context.Background(), u, nil); !errors.Is(err, ErrPending) {
				t.Errorf("second submit: got %v, want ErrPending", err)
			}

			close(u.block)
			<-done

			if s.Pending() {
				t.Error("pending should be cleared after the request resolves")
			}
			if u.callCount() != 1 {
				t.Errorf("updater called %d times, want 1", u.callCount())
			}
			if len(seen) != len(tt.want) {
				t.Fatalf("status transitions = %v, want %v", seen, tt.want)
			}
			for i := range tt.want {
				if seen[i] != tt.want[i] {
					t.Errorf("transition %d = %v, want %v", i, seen[i], tt.want[i])
				}
			}
		})
	}
}

func TestSubmitOutsideEditMode(t *testing.T) {
	u := &fakeUpdater{reply: echo(testCourse())}
	s := NewSession(Title, testCourse(), nil)
	if err := s.Submit(context.Background(), u, nil); !errors.Is(err, ErrNotEditing) {
		t.Errorf("got %v, want ErrNotEditing", err)
	}
	if u.callCount() != 0 {
		t.Error("no request expected outside edit mode")
	}
}

func TestEmptyDescriptionScenario(t *testing.T) {
	course := testCourse()
	course.Description = nil

	s := NewSession(Description, course, nil)
	text, placeholder := s.Display()
	if text != "No description" || !placeholder {
		t.Fatalf("display = %q/%v, want placeholder", text, placeholder)
	}

	s.Toggle()
	s.SetInput("Intro to systems")
	u := &fakeUpdater{reply: echo(course)}
	if err := s.Submit(context.Background(), u, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	text, placeholder = s.Display()
	if text != "Intro to systems" || placeholder {
		t.Errorf("display = %q/%v, want %q without placeholder", text, placeholder, "Intro to systems")
	}
}

func TestCategoryDisplaysOptionLabel(t *testing.T) {
	s := NewSession(Category, testCourse(), testOptions())
	if text, _ := s.Display(); text != "Music" {
		t.Errorf("display = %q, want Music", text)
	}

	empty := testCourse()
	empty.CategoryID = nil
	s = NewSession(Category, empty, testOptions())
	if text, placeholder := s.Display(); text != "No category" || !placeholder {
		t.Errorf("display = %q/%v, want No category placeholder", text, placeholder)
	}
}

func TestCardSnapshot(t *testing.T) {
	course := testCourse()
	course.ImageURL = nil

	s := NewSession(Image, course, nil)
	card := s.Card()
	if !card.Placeholder || card.Display != "" {
		t.Errorf("image card should render the icon placeholder, got %+v", card)
	}
	if card.Action != "Add an image" {
		t.Errorf("action = %q, want %q", card.Action, "Add an image")
	}
	if card.CanSubmit || card.Editing {
		t.Error("view mode card should not be submittable")
	}

	s.Toggle()
	s.SetInput("https://cdn.example.com/courses/x.webp")
	card = s.Card()
	if !card.Editing || !card.CanSubmit {
		t.Errorf("edit card should be submittable, got %+v", card)
	}
}
