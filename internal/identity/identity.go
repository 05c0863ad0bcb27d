// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity carries the current user supplied by the external
// identity provider. The provider runs as an auth proxy in front of the
// server and forwards the signed-in user in request headers; the server
// must not be reachable except through it.
package identity

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Headers set by the auth proxy.
const (
	HeaderUser  = "X-Auth-Request-User"
	HeaderEmail = "X-Auth-Request-Email"
	HeaderName  = "X-Auth-Request-Preferred-Username"
)

// User is the signed-in user. ID is the provider's opaque identifier and
// owns courses.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// DisplayName prefers the name, then the email, then the id.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	}
	return u.ID
}

// Initials returns up to two uppercase letters for the avatar button.
func (u *User) Initials() string {
	var out []rune
	for _, part := range strings.FieldsFunc(u.DisplayName(), func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == '_' || r == '-' || r == '@'
	}) {
		r, _ := utf8.DecodeRuneInString(part)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// FromHeaders reads the user forwarded by the auth proxy. It returns nil
// when the user header is absent.
func FromHeaders(h http.Header) *User {
	id := strings.TrimSpace(h.Get(HeaderUser))
	if id == "" {
		return nil
	}
	return &User{
		ID:    id,
		Email: strings.TrimSpace(h.Get(HeaderEmail)),
		Name:  strings.TrimSpace(h.Get(HeaderName)),
	}
}

// SetHeaders forwards the user on an outgoing request.
func (u *User) SetHeaders(h http.Header) {
	h.Set(HeaderUser, u.ID)
	if u.Email != "" {
		h.Set(HeaderEmail, u.Email)
	}
	if u.Name != "" {
		h.Set(HeaderName, u.Name)
	}
}

type contextKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the user in ctx, or nil when anonymous.
func FromContext(ctx context.Context) *User {
	u, _ := ctx.Value(contextKey{}).(*User)
	return u
}

// Provider describes the external identity provider's endpoints.
type Provider struct {
	SignInURL  string
	SignOutURL string
	// DevUser is used when the proxy headers are absent. Set only in
	// development.
	DevUser *User
}

// SignIn returns the sign-in URL with the page to return to.
func (p Provider) SignIn(returnTo string) string {
	if returnTo == "" {
		return p.SignInURL
	}
	sep := "?"
	if strings.Contains(p.SignInURL, "?") {
		sep = "&"
	}
	return p.SignInURL + sep + "rd=" + url.QueryEscape(returnTo)
}
