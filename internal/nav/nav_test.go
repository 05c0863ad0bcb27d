// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package nav

import "testing"

func TestSidebarRoutes(t *testing.T) {
	tests := []struct {
		path       string
		wantLabels []string
		wantActive string
	}{
		{"/", []string{"Dashboard", "Browse"}, "Dashboard"},
		{"/search", []string{"Dashboard", "Browse"}, "Browse"},
		{"/teacher/courses", []string{"Courses", "Analytics"}, "Courses"},
		{"/teacher/courses/123", []string{"Courses", "Analytics"}, "Courses"},
		{"/teacher/analytics", []string{"Courses", "Analytics"}, "Analytics"},
		{"/teacher/create", []string{"Courses", "Analytics"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			routes := SidebarRoutes(tt.path)
			if len(routes) != len(tt.wantLabels) {
				t.Fatalf("got %d routes, want %d", len(routes), len(tt.wantLabels))
			}
			active := ""
			for i, r := range routes {
				if r.Label != tt.wantLabels[i] {
					t.Errorf("route %d = %q, want %q", i, r.Label, tt.wantLabels[i])
				}
				if r.Active {
					if active != "" {
						t.Errorf("more than one active route: %q and %q", active, r.Label)
					}
					active = r.Label
				}
			}
			if active != tt.wantActive {
				t.Errorf("active = %q, want %q", active, tt.wantActive)
			}
		})
	}
}

func TestSidebarRoutesDoesNotMutateDefaults(t *testing.T) {
	SidebarRoutes("/")
	for _, r := range guestRoutes {
		if r.Active {
			t.Errorf("default route %q was mutated", r.Label)
		}
	}
}

func TestNavbarFor(t *testing.T) {
	tests := []struct {
		path      string
		wantLabel string
		wantHref  string
	}{
		{"/", "Teacher mode", "/teacher/courses"},
		{"/search", "Teacher mode", "/teacher/courses"},
		{"/teacher", "Exit", "/"},
		{"/teacher/courses/abc", "Exit", "/"},
		{"/courses/abc/chapters/1", "Exit", "/"},
		{"/courses/abc/chapter", "Exit", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := NavbarFor(tt.path)
			if got.Label != tt.wantLabel || got.Href != tt.wantHref {
				t.Errorf("NavbarFor(%q) = %+v, want %s -> %s", tt.path, got, tt.wantLabel, tt.wantHref)
			}
			if got.Exit != (tt.wantLabel == "Exit") {
				t.Errorf("Exit = %v", got.Exit)
			}
		})
	}
}
