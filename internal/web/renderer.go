// Package web holds the embedded HTML templates and the Echo renderer.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutTemplate = "layout.html"

// Renderer implements echo.Renderer. Every page is parsed together with the
// layout into its own template set, so each page may define "content".
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	return newRenderer(templateFS, "templates")
}

func newRenderer(fsys fs.FS, dir string) (*Renderer, error) {
	names, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	layout := path.Join(dir, layoutTemplate)
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		base := path.Base(name)
		if base == layoutTemplate {
			continue
		}
		tmpl, err := template.New(base).Funcs(Funcs()).ParseFS(fsys, layout, name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", base, err)
		}
		r.pages[base] = tmpl
	}
	return r, nil
}

// Render executes the layout with the named page's content.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	if err := tmpl.ExecuteTemplate(w, layoutTemplate, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date": func(t *time.Time) string {
			if t == nil {
				return "-"
			}
			return t.Format("2006-01-02")
		},
		"dateTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02 15:04")
		},
		"num": func(f float64) string {
			return strconv.FormatFloat(f, 'f', -1, 64)
		},
		"fixed": func(places int, f float64) string {
			return strconv.FormatFloat(f, 'f', places, 64)
		},
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
	}
}
