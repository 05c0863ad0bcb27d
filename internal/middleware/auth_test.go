// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"learnhub/internal/identity"
)

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// ---------- LoadIdentity ----------

func TestLoadIdentity(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		dev     *identity.User
		wantID  string
	}{
		{"proxy headers", map[string]string{identity.HeaderUser: "user_1"}, nil, "user_1"},
		{"proxy headers win over dev user", map[string]string{identity.HeaderUser: "user_1"}, &identity.User{ID: "dev"}, "user_1"},
		{"dev user fallback", nil, &identity.User{ID: "dev"}, "dev"},
		{"anonymous", nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *identity.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = identity.FromContext(r.Context())
			})
			handler := LoadIdentity(identity.Provider{DevUser: tt.dev})(next)

			req := httptest.NewRequest(http.MethodGet, "/teacher/courses", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tt.wantID == "" {
				if got != nil {
					t.Errorf("expected anonymous, got %+v", got)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Errorf("user = %+v, want id %q", got, tt.wantID)
			}
		})
	}
}

// ---------- RequireUser ----------

func TestRequireUser(t *testing.T) {
	p := identity.Provider{SignInURL: "/oauth2/start"}

	t.Run("anonymous page request redirects to sign in", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/teacher/courses", nil)
		rr := httptest.NewRecorder()
		RequireUser(p)(inner).ServeHTTP(rr, req)

		if *called {
			t.Error("next handler should not be called")
		}
		if rr.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want 303", rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/oauth2/start?rd=%2Fteacher%2Fcourses" {
			t.Errorf("Location = %q", loc)
		}
	})

	t.Run("anonymous htmx request gets HX-Redirect", func(t *testing.T) {
		inner, _ := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/teacher/courses", nil)
		req.Header.Set("HX-Request", "true")
		rr := httptest.NewRecorder()
		RequireUser(p)(inner).ServeHTTP(rr, req)

		if rr.Header().Get("HX-Redirect") == "" {
			t.Error("expected HX-Redirect header")
		}
	})

	t.Run("signed in user passes", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/teacher/courses", nil)
		req = req.WithContext(identity.WithUser(req.Context(), &identity.User{ID: "u"}))
		rr := httptest.NewRecorder()
		RequireUser(p)(inner).ServeHTTP(rr, req)

		if !*called || rr.Code != http.StatusOK {
			t.Errorf("called=%v status=%d", *called, rr.Code)
		}
	})
}

// ---------- RequireAPIUser ----------

func TestRequireAPIUser(t *testing.T) {
	inner, called := okHandler()
	req := httptest.NewRequest(http.MethodPatch, "/api/courses/x", nil)
	rr := httptest.NewRecorder()
	RequireAPIUser(inner).ServeHTTP(rr, req)

	if *called {
		t.Error("next handler should not be called")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"unauthorized"`) {
		t.Errorf("body = %q", rr.Body.String())
	}
}
