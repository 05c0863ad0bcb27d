// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// learnhub. It organizes routes into the JSON course API and the teacher
// dashboard, each with its own middleware stack.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"learnhub/internal/handlers"
	"learnhub/internal/identity"
	"learnhub/internal/metrics"
	"learnhub/internal/middleware"
	"learnhub/web"
)

// Options carries the router settings that are not handlers.
type Options struct {
	Identity      identity.Provider
	SecureCookies bool

	// UploadLimiter throttles the upload endpoint. Nil disables it.
	UploadLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, api *handlers.API, teacher *handlers.Teacher) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadIdentity(opts.Identity))

	// Health check and metrics: no auth, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	if static, err := fs.Sub(web.StaticFS, "static"); err == nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	// Course API: JSON, identity required, no cookies involved.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAPIUser)
		r.Use(middleware.RequireClientHeader)

		r.Get("/courses", api.ListCourses)
		r.Post("/courses", api.CreateCourse)
		r.Get("/courses/{courseID}", api.GetCourse)
		r.Patch("/courses/{courseID}", api.PatchCourse)
		r.Get("/categories", api.ListCategories)

		r.Group(func(r chi.Router) {
			if opts.UploadLimiter != nil {
				r.Use(opts.UploadLimiter.Middleware)
			}
			r.Post("/uploads/{endpoint}", api.Upload)
		})
	})

	// Dashboard: CSRF protection and a signed-in user.
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(opts.SecureCookies))
		r.Use(middleware.RequireUser(opts.Identity))

		r.Get("/", teacher.Home)
		r.Get("/search", teacher.Browse)

		r.Route("/teacher", func(r chi.Router) {
			r.Get("/", http.RedirectHandler("/teacher/courses", http.StatusSeeOther).ServeHTTP)
			r.Get("/courses", teacher.CoursesList)
			r.Get("/analytics", teacher.Analytics)
			r.Get("/create", teacher.CreatePage)
			r.Post("/create", teacher.CreateSubmit)

			r.Route("/courses/{courseID}", func(r chi.Router) {
				r.Get("/", teacher.CourseSetup)
				r.Get("/fields/{field}", teacher.FieldView)
				r.Get("/fields/{field}/edit", teacher.FieldEdit)
				r.Post("/fields/{field}", teacher.FieldSubmit)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
