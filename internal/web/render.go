package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/desertthunder/agentes/internal/models"
	"github.com/desertthunder/agentes/internal/server"
)

// view is the value every template executes against.
type view struct {
	Title    string
	Path     string
	Year     int
	LoggedIn bool
	User     *models.User
	Data     any
}

// parseTemplates pairs the layout with each page file, keyed by file name without extension.
func parseTemplates() (map[string]*template.Template, error) {
	layout, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		if name == "layout" {
			continue
		}

		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, page); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		templates[name] = t
	}

	return templates, nil
}

// render executes page into a buffer first so a template error can still produce a clean 500.
func (a *App) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	t, ok := a.templates[page]
	if !ok {
		a.serverError(w, r, fmt.Errorf("unknown template %q", page))
		return
	}

	v.Path = r.URL.Path
	v.Year = a.now().Year()
	if s := server.SessionFrom(r.Context()); s != nil {
		v.LoggedIn = true
		v.User = &s.User
	} else {
		v.LoggedIn = a.cookies.HasSession(r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		a.serverError(w, r, fmt.Errorf("render %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// serverError reports err and answers with the error page.
func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error) {
	a.reporter.LogError(r.Context(), err, "path", r.URL.Path, "method", r.Method)
	a.internalError(w, r)
}

// internalError writes the 500 page without reporting; a failing error template falls back to plain text.
func (a *App) internalError(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	t, ok := a.templates["error"]
	if !ok || t.ExecuteTemplate(&buf, "layout", view{Year: a.now().Year()}) != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = buf.WriteTo(w)
}

func (a *App) notFound(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusNotFound, "not_found", view{})
}
