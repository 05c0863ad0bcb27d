// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editable

import (
	"sync"

	"github.com/google/uuid"
)

// InFlight tracks field submits that are running on the server, so a
// duplicate form post for the same user, course and field is refused
// until the first one resolves.
type InFlight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewInFlight creates an empty guard.
func NewInFlight() *InFlight {
	return &InFlight{keys: make(map[string]struct{})}
}

// Acquire claims the slot for (user, course, field). It returns false if
// the slot is taken. The returned release func frees the slot; calling it
// more than once has no further effect.
func (g *InFlight) Acquire(userID string, courseID uuid.UUID, field string) (release func(), ok bool) {
	key := userID + "|" + courseID.String() + "|" + field

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.keys[key]; busy {
		return func() {}, false
	}
	g.keys[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.keys, key)
			g.mu.Unlock()
		})
	}, true
}

// Len returns the number of submits in flight.
func (g *InFlight) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.keys)
}
