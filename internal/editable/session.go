// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editable

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"learnhub/internal/apiclient"
	"learnhub/internal/cache"
	"learnhub/internal/models"
	"learnhub/internal/validate"
)

var (
	// ErrPending is returned when a submit is attempted while another
	// submit of the same session is still in flight.
	ErrPending = errors.New("editable: update already in flight")

	// ErrNotEditing is returned when submitting outside edit mode.
	ErrNotEditing = errors.New("editable: field is not in edit mode")
)

// Status is the lifecycle of the last mutation.
type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

// Updater performs the single-field update.
type Updater interface {
	UpdateCourse(ctx context.Context, id uuid.UUID, patch models.CoursePatch) (*apiclient.Mutation, error)
}

// Invalidator marks cached reads stale after a successful update.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...cache.Key) error
}

// Session is the edit state of one field card. It is safe for concurrent
// use; at most one Submit runs at a time.
type Session struct {
	Field    Field
	CourseID uuid.UUID
	Options  []models.CategoryOption

	// OnStatus, when set, observes every status transition.
	OnStatus func(Status)

	mu       sync.Mutex
	current  string // last known-good value
	input    string
	editing  bool
	pending  bool
	status   Status
	fieldErr string
}

// NewSession starts a session in view mode showing the course's value.
func NewSession(f Field, course *models.Course, options []models.CategoryOption) *Session {
	s := &Session{
		Field:   f,
		Options: options,
		current: f.Value(course),
	}
	if course != nil {
		s.CourseID = course.ID
	}
	s.input = s.current
	return s
}

// Toggle switches between view and edit mode. Entering edit mode fills
// the input with the current value; leaving it discards the input.
func (s *Session) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = !s.editing
	s.input = s.current
	s.fieldErr = ""
}

// Editing reports whether the card is in edit mode.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// SetInput records the in-progress value and refreshes the field error.
func (s *Session) SetInput(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = v
	s.fieldErr = ""
}

// Input returns the in-progress value.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Value returns the last known-good value.
func (s *Session) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pending reports whether a submit is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Status returns the last mutation status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// FieldError returns the message of the last local rejection.
func (s *Session) FieldError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fieldErr
}

// CanSubmit reports whether the submit control is enabled: edit mode,
// nothing in flight, and a valid input.
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing && !s.pending && s.Field.Validate(s.input, s.Options) == nil
}

// Display returns the text shown in view mode and whether it is the
// placeholder.
func (s *Session) Display() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display()
}

func (s *Session) display() (string, bool) {
	if s.current == "" {
		return s.Field.Placeholder, true
	}
	if s.Field.Widget == WidgetCombobox {
		if label := models.OptionLabel(s.Options, s.current); label != "" {
			return label, false
		}
	}
	return s.current, false
}

// Submit validates the input and sends it through u. A local rejection
// returns a *validate.ValidationError without calling u. On success the
// displayed value becomes the server's value, edit mode closes and the
// stale keys are invalidated through inv. On failure the previous value
// stays and edit mode stays open.
func (s *Session) Submit(ctx context.Context, u Updater, inv Invalidator) error {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ErrPending
	}
	if !s.editing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	if err := s.Field.Validate(s.input, s.Options); err != nil {
		s.fieldErr = errorMessage(err, s.Field.Key)
		s.mu.Unlock()
		return err
	}
	patch := s.Field.Patch(s.input)
	s.pending = true
	s.setStatus(StatusPending)
	s.mu.Unlock()

	m, err := u.UpdateCourse(ctx, s.CourseID, patch)

	s.mu.Lock()
	s.pending = false
	if err != nil {
		var te *apiclient.TransportError
		if errors.As(err, &te) {
			s.fieldErr = te.Fields[s.Field.Key]
		}
		s.setStatus(StatusError)
		s.mu.Unlock()
		return err
	}
	s.current = s.Field.Value(m.Course)
	s.input = s.current
	s.editing = false
	s.setStatus(StatusSuccess)
	s.mu.Unlock()

	if inv != nil && len(m.Stale) > 0 {
		if err := inv.Invalidate(ctx, m.Stale...); err != nil {
			slog.Warn("invalidate course cache failed", "course_id", s.CourseID, "error", err)
		}
	}
	return nil
}

func errorMessage(err error, key string) string {
	if ve, ok := validate.AsValidation(err); ok {
		if msg := ve.Message(key); msg != "" {
			return msg
		}
	}
	return err.Error()
}

// setStatus must be called with mu held.
func (s *Session) setStatus(st Status) {
	s.status = st
	if s.OnStatus != nil {
		s.OnStatus(st)
	}
}

// Card is the view model rendered by the field card templates.
type Card struct {
	Field       Field
	CourseID    uuid.UUID
	Editing     bool
	Value       string
	Input       string
	Display     string
	Placeholder bool
	Action      string
	Error       string
	Pending     bool
	CanSubmit   bool
	Options     []models.CategoryOption
}

// Card snapshots the session for rendering.
func (s *Session) Card() Card {
	s.mu.Lock()
	display, placeholder := s.display()
	c := Card{
		Field:       s.Field,
		CourseID:    s.CourseID,
		Editing:     s.editing,
		Value:       s.current,
		Input:       s.input,
		Display:     display,
		Placeholder: placeholder,
		Action:      s.Field.ActionLabel(s.current),
		Error:       s.fieldErr,
		Pending:     s.pending,
		Options:     s.Options,
	}
	s.mu.Unlock()
	c.CanSubmit = s.CanSubmit()
	return c
}
