// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package views renders the site's HTML pages from embedded templates.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/csrf"
	"github.com/mariusor/render"

	"github.com/danielhkuo/encuestas/auth"
)

//go:embed templates
var templates embed.FS

const templateDir = "templates"

// Page is the model every template receives. Data carries the
// handler-specific part.
type Page struct {
	Title     string
	Username  string
	LoggedIn  bool
	Flashes   []auth.Flash
	CSRFField template.HTML
	Data      any
}

// View renders HTML pages inside the shared layout
type View struct {
	ren      *render.Render
	sessions *auth.Sessions
}

func New(sessions *auth.Sessions) *View {
	ren := render.New(render.Options{
		Directory:  templateDir,
		AssetNames: templateNames,
		Asset:      func(name string) ([]byte, error) { return fs.ReadFile(templates, name) },
		Layout:     "layout",
		Extensions: []string{".html"},
		Funcs: []template.FuncMap{{
			"ago":   func(t time.Time) string { return humanize.Time(t) },
			"comma": func(n int) string { return humanize.Comma(int64(n)) },
			"pct":   func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
			"date":  func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		}},
		Delims:                    render.Delims{Left: "{{", Right: "}}"},
		Charset:                   "UTF-8",
		HTMLContentType:           "text/html",
		IsDevelopment:             false,
		DisableHTTPErrorRendering: true,
	})
	return &View{ren: ren, sessions: sessions}
}

// templateNames lists the embedded templates for the renderer
func templateNames() []string {
	names := make([]string, 0)
	fs.WalkDir(templates, templateDir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			names = append(names, path)
		}
		return nil
	})
	return names
}

// Render writes the named template with status. Flash messages are popped
// from the session before anything is written so the cookie update goes
// out with the headers.
func (v *View) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	p := Page{
		Title:     title,
		Flashes:   v.sessions.Flashes(w, r),
		CSRFField: csrf.TemplateField(r),
		Data:      data,
	}
	if v.sessions.CurrentUserID(r) != nil {
		p.LoggedIn = true
		p.Username = v.sessions.CurrentUsername(r)
	}

	if err := v.ren.HTML(w, status, name, p); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// NotFound renders the generic not found page
func (v *View) NotFound(w http.ResponseWriter, r *http.Request) {
	v.Render(w, r, http.StatusNotFound, "error", "Not found", ErrorData{
		Status:  http.StatusNotFound,
		Message: "The page you were looking for does not exist.",
	})
}

// ServerError renders the generic error page. The cause is logged by the
// caller and never shown.
func (v *View) ServerError(w http.ResponseWriter, r *http.Request) {
	v.Render(w, r, http.StatusInternalServerError, "error", "Server error", ErrorData{
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong. Please try again.",
	})
}

// Redirect sends a 302 to url
func (v *View) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}

type ErrorData struct {
	Status  int
	Message string
}
