// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"

	"learnhub/internal/identity"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// LoadIdentity reads the user forwarded by the auth proxy and stores it in
// the request context. When the headers are absent and the provider has a
// dev user, that user is used instead. This middleware does NOT enforce
// authentication.
func LoadIdentity(p identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := identity.FromHeaders(r.Header)
			if u == nil && p.DevUser != nil {
				dev := *p.DevUser
				u = &dev
			}
			if u != nil {
				r = r.WithContext(identity.WithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser redirects anonymous page requests to the provider's sign-in
// page. HTMX requests get an HX-Redirect instead of a 303.
func RequireUser(p identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity.FromContext(r.Context()) == nil {
				target := p.SignIn(r.URL.RequestURI())
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", target)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIUser answers 401 JSON for anonymous API requests.
func RequireAPIUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity.FromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
