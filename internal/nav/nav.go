// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package nav builds the dashboard chrome: the sidebar route list and the
// navbar mode toggle, both derived from the current path.
package nav

import "strings"

// Route is one sidebar link.
type Route struct {
	Label  string
	Href   string
	Icon   string // icon name understood by the layout template
	Active bool
}

var guestRoutes = []Route{
	{Label: "Dashboard", Href: "/", Icon: "layout"},
	{Label: "Browse", Href: "/search", Icon: "compass"},
}

var teacherRoutes = []Route{
	{Label: "Courses", Href: "/teacher/courses", Icon: "list"},
	{Label: "Analytics", Href: "/teacher/analytics", Icon: "bar-chart"},
}

// IsTeacherPage reports whether path belongs to teacher mode.
func IsTeacherPage(path string) bool {
	return strings.HasPrefix(path, "/teacher")
}

// IsPlayerPage reports whether path is a chapter player page.
func IsPlayerPage(path string) bool {
	return strings.Contains(path, "/chapter")
}

// SidebarRoutes returns the sidebar links for path with the active one
// marked.
func SidebarRoutes(path string) []Route {
	src := guestRoutes
	if IsTeacherPage(path) {
		src = teacherRoutes
	}
	routes := make([]Route, len(src))
	for i, r := range src {
		r.Active = isActive(path, r.Href)
		routes[i] = r
	}
	return routes
}

func isActive(path, href string) bool {
	if path == href {
		return true
	}
	return href != "/" && strings.HasPrefix(path, href+"/")
}

// Navbar is the top bar's mode toggle.
type Navbar struct {
	Label string
	Href  string
	Exit  bool
}

// NavbarFor returns "Exit" on teacher and player pages and "Teacher mode"
// everywhere else.
func NavbarFor(path string) Navbar {
	if IsTeacherPage(path) || IsPlayerPage(path) {
		return Navbar{Label: "Exit", Href: "/", Exit: true}
	}
	return Navbar{Label: "Teacher mode", Href: "/teacher/courses"}
}
