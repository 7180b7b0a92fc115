// Package view renders the HTML pages through gin's HTMLRender interface.
//
// Every page template is parsed together with base.html, which defines the
// layout, the navigation bar and the flash area. html/template escapes all
// user-supplied strings.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile = "base.html"
	layoutName = "base"
)

// Renderer maps a page name such as "index.html" to its parsed template set.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// New parses the embedded templates.
func New() (*Renderer, error) {
	return NewFromFS(templateFS, "templates")
}

// NewFromFS parses layout and pages from dir inside fsys.
func NewFromFS(fsys fs.FS, dir string) (*Renderer, error) {
	layout, err := template.New(layoutFile).ParseFS(fsys, path.Join(dir, layoutFile))
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := path.Base(file)
		if name == layoutFile {
			continue
		}
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		page, err := clone.ParseFS(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = page
	}
	return r, nil
}

// Instance implements render.HTMLRender.
// An unknown name yields an empty set, so execution fails with html/template's
// "no such template" error.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		t = template.New(name)
	}
	return render.HTML{Template: t, Name: layoutName, Data: data}
}

// Has reports whether a page with the given name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
