// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the teacher dashboard.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header, and delivers toasts through
// the HX-Trigger response header.
package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"learnhub/internal/identity"
	"learnhub/internal/markdown"
	"learnhub/internal/middleware"
	"learnhub/internal/models"
	"learnhub/internal/nav"
	"learnhub/internal/session"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

// ToastEvent is the HTMX client event that shows a toast.
const ToastEvent = "showToast"

// PageData holds all data passed to page templates.
type PageData struct {
	Title      string          // Page title for <title> tag
	Path       string          // Request path; drives the sidebar and navbar
	User       *identity.User  // Signed-in user (nil on anonymous pages)
	CSRFToken  string          // CSRF token for forms and HTMX headers
	SignOutURL string          // Identity provider sign-out link
	Sidebar    []nav.Route     // Sidebar links with the active one marked
	Navbar     nav.Navbar      // Mode toggle in the top bar
	Data       map[string]any  // Page-specific data
	Toasts     []session.Toast // Toasts carried across a redirect
}

// Renderer handles template parsing and execution for dashboard pages.
type Renderer struct {
	templates  map[string]*template.Template
	partials   *template.Template
	funcMap    template.FuncMap
	signOutURL string
}

// New creates a Renderer by parsing every page template together with the
// base layout and the shared partials. When devMode is true, the layout
// loads CDN-hosted assets (TailwindCSS, HTMX, AlpineJS); otherwise it
// references the compiled files served from /static.
func New(devMode bool, signOutURL string) (*Renderer, error) {
	r := &Renderer{
		templates:  make(map[string]*template.Template),
		signOutURL: signOutURL,
		funcMap: template.FuncMap{
			"isDev": func() bool {
				return devMode
			},
			"markdown": markdown.Render,
			// fieldURL is the card endpoint of one course field.
			"fieldURL": func(courseID uuid.UUID, slug string) string {
				return "/teacher/courses/" + courseID.String() + "/fields/" + slug
			},
			// toastsJSON serializes pending toasts for the toast stack.
			"toastsJSON": func(ts []session.Toast) string {
				if len(ts) == 0 {
					return "[]"
				}
				b, err := json.Marshal(ts)
				if err != nil {
					return "[]"
				}
				return string(b)
			},
			// optionsJSON serializes picker options for the combobox.
			"optionsJSON": func(opts []models.CategoryOption) string {
				b, err := json.Marshal(opts)
				if err != nil || opts == nil {
					return "[]"
				}
				return string(b)
			},
			"navClass": func(active bool) string {
				if active {
					return "bg-sky-200/20 text-sky-700 border-r-2 border-sky-700"
				}
				return "text-slate-500 hover:bg-slate-300/20 hover:text-slate-600"
			},
		},
	}

	partials, err := template.New("partials").Funcs(r.funcMap).ParseFS(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	r.partials = partials

	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	// Parse each page template paired with the base layout.
	for _, page := range pages {
		name := strings.TrimPrefix(page, "templates/")
		if name == "base.html" {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			templateFS, "templates/base.html", "templates/partials/*.html", page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Page renders a full dashboard page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
// For full page loads, the entire base layout is rendered.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.User == nil {
		data.User = identity.FromContext(r.Context())
	}
	data.Path = r.URL.Path
	data.SignOutURL = rn.signOutURL
	data.Sidebar = nav.SidebarRoutes(data.Path)
	data.Navbar = nav.NavbarFor(data.Path)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	execName := "base.html"
	if IsHTMX(r) {
		execName = "content"
	}
	if err := tmpl.ExecuteTemplate(w, execName, data); err != nil {
		slog.Error("render page failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Fragment renders one shared partial, such as a field card, on its own.
func (rn *Renderer) Fragment(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rn.partials.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("render fragment failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Toast asks the HTMX client to show t once the response is processed.
// It must be called before the response body is written.
func Toast(w http.ResponseWriter, t session.Toast) {
	b, err := json.Marshal(map[string]session.Toast{ToastEvent: t})
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(b))
}

// Redirect navigates the browser to url: HX-Redirect for HTMX requests,
// a 303 otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// IsHTMX returns true if the request was made by HTMX (has HX-Request header).
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
