// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const testCSRFToken = "4f3c2a1b4f3c2a1b4f3c2a1b4f3c2a1b4f3c2a1b4f3c2a1b4f3c2a1b4f3c2a1b"

func csrfHandler(secure bool) (http.Handler, *string) {
	var seen string
	h := NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFTokenFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestCSRFIssuesCookie(t *testing.T) {
	for _, secure := range []bool{true, false} {
		h, seen := csrfHandler(secure)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/teacher/create", nil))

		var cookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == CSRFCookieName {
				cookie = c
			}
		}
		if cookie == nil {
			t.Fatalf("secure=%v: CSRF cookie not set", secure)
		}
		if cookie.Secure != secure || cookie.SameSite != http.SameSiteStrictMode {
			t.Errorf("secure=%v: cookie Secure=%v SameSite=%v", secure, cookie.Secure, cookie.SameSite)
		}
		if len(cookie.Value) != 2*csrfTokenLength {
			t.Errorf("token length = %d, want %d", len(cookie.Value), 2*csrfTokenLength)
		}
		if *seen != cookie.Value {
			t.Errorf("context token %q does not match cookie %q", *seen, cookie.Value)
		}
	}
}

func TestCSRFKeepsExistingCookie(t *testing.T) {
	h, seen := csrfHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/teacher/courses", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testCSRFToken})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if len(rr.Result().Cookies()) != 0 {
		t.Error("a new cookie was issued although one was present")
	}
	if *seen != testCSRFToken {
		t.Errorf("context token = %q, want the cookie value", *seen)
	}
}

func multipartBody(t *testing.T, token string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField(CSRFFormField, token)
	fw, _ := mw.CreateFormFile("file", "cover.png")
	_, _ = fw.Write([]byte("png"))
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestCSRFValidation(t *testing.T) {
	tests := []struct {
		name   string
		build  func(t *testing.T) *http.Request
		cookie bool
		want   int
	}{
		{
			name: "htmx header", cookie: true, want: http.StatusOK,
			build: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/teacher/courses/x/fields/title", strings.NewReader("value=Go"))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				r.Header.Set(CSRFHeaderName, testCSRFToken)
				return r
			},
		},
		{
			name: "create form field", cookie: true, want: http.StatusOK,
			build: func(t *testing.T) *http.Request {
				form := url.Values{CSRFFormField: {testCSRFToken}, "title": {"Go"}}
				r := httptest.NewRequest(http.MethodPost, "/teacher/create", strings.NewReader(form.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
		},
		{
			name: "image card multipart field", cookie: true, want: http.StatusOK,
			build: func(t *testing.T) *http.Request {
				body, ct := multipartBody(t, testCSRFToken)
				r := httptest.NewRequest(http.MethodPost, "/teacher/courses/x/fields/image", body)
				r.Header.Set("Content-Type", ct)
				return r
			},
		},
		{
			name: "missing token", cookie: true, want: http.StatusForbidden,
			build: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/teacher/create", nil)
			},
		},
		{
			name: "wrong token", cookie: true, want: http.StatusForbidden,
			build: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/teacher/create", nil)
				r.Header.Set(CSRFHeaderName, strings.Repeat("0", 64))
				return r
			},
		},
		{
			name: "token without cookie", cookie: false, want: http.StatusForbidden,
			build: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/teacher/create", nil)
				r.Header.Set(CSRFHeaderName, testCSRFToken)
				return r
			},
		},
		{
			name: "head is safe", cookie: false, want: http.StatusOK,
			build: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodHead, "/teacher/courses", nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := csrfHandler(false)
			req := tt.build(t)
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testCSRFToken})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestCSRFTokenFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := CSRFTokenFromCtx(req.Context()); got != "" {
		t.Errorf("token = %q, want empty", got)
	}
}
