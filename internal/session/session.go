// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides a short-lived, Valkey-backed browser session
// that carries toasts across a redirect. Authentication is not kept here;
// the identity provider owns it.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "lh_session"

	// DefaultTTL is how long pending toasts live in Valkey.
	DefaultTTL = 10 * time.Minute

	// keyPrefix namespaces toast lists in Valkey to avoid collisions.
	keyPrefix = "toasts:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Toast is a transient notification.
type Toast struct {
	Variant     string `json:"variant"` // "success" or "error"
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Success builds a success toast.
func Success(title string) Toast {
	return Toast{Variant: "success", Title: title}
}

// Failure is the generic error toast.
func Failure() Toast {
	return Toast{Variant: "error", Title: "Oops!", Description: "Something went wrong."}
}

// Store keeps pending toasts per browser in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a toast store backed by the given Valkey client.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{client: client, ttl: DefaultTTL, secure: secure}
}

// Push queues a toast for the next page this browser renders.
func (s *Store) Push(ctx context.Context, w http.ResponseWriter, r *http.Request, t Toast) error {
	id := ""
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		id = c.Value
	} else {
		var err error
		if id, err = generateID(); err != nil {
			return fmt.Errorf("session id: %w", err)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("toast marshal: %w", err)
	}

	key := keyPrefix + id
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("toast push: %w", err)
	}
	return nil
}

// Pop returns and clears the queued toasts for this browser.
func (s *Store) Pop(ctx context.Context, r *http.Request) ([]Toast, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, nil // No cookie = nothing queued (not an error)
	}

	key := keyPrefix + c.Value
	pipe := s.client.TxPipeline()
	lr := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("toast pop: %w", err)
	}

	var toasts []Toast
	for _, raw := range lr.Val() {
		var t Toast
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			continue
		}
		toasts = append(toasts, t)
	}
	return toasts, nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
