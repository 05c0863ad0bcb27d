// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package web provides embedded static assets (CSS, JS) for the teacher
// dashboard. In development, templates load TailwindCSS, HTMX and AlpineJS
// from a CDN; in production, the compiled and vendored files are embedded
// here and served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. In Docker builds, this
// includes the compiled TailwindCSS and vendored HTMX/AlpineJS files.
// In local development it only holds app.js and the CSS source.
//
//go:embed all:static
var StaticFS embed.FS
