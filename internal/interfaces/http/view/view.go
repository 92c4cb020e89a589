// Package view renders the server-side HTML pages.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/Replicator56/mini-crm/internal/infrastructure/session"
	"github.com/Replicator56/mini-crm/internal/interfaces/http/flash"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names accepted by Renderer
const (
	PageIndex           = "index"
	PageLogin           = "login"
	PageRegister        = "register"
	PageClientList      = "clients/list"
	PageClientForm      = "clients/form"
	PageAppointmentList = "appointments/list"
	PageAppointmentForm = "appointments/form"
	PageNotFound        = "errors/404"
	PageTooManyRequests = "errors/429"
	PageInternalError   = "errors/500"
)

// ParseFS names each template after its file's base name.
const (
	layoutTemplate = "layout.tmpl"
	layoutFile     = "templates/layout.tmpl"
	pageFile       = "templates/%s.tmpl"
)

var pages = []string{
	PageIndex,
	PageLogin,
	PageRegister,
	PageClientList,
	PageClientForm,
	PageAppointmentList,
	PageAppointmentForm,
	PageNotFound,
	PageTooManyRequests,
	PageInternalError,
}

// Page holds the locals every template receives
type Page struct {
	Title     string
	User      *session.Principal
	Notice    *flash.Notice
	CSRFToken string
	Path      string
	Data      any
}

// Renderer implements gin's render.HTMLRender over the embedded
// templates. Each page is parsed together with the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every page. Datetimes are displayed in loc.
func NewRenderer(loc *time.Location) (*Renderer, error) {
	if loc == nil {
		loc = time.Local
	}
	funcs := template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.In(loc).Format("Mon 02 Jan 2006, 15:04")
		},
		"join": strings.Join,
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New(layoutTemplate).Funcs(funcs).ParseFS(templateFS, layoutFile, fmt.Sprintf(pageFile, name))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Instance implements render.HTMLRender. Unknown names fall back to the
// internal error page.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		t = r.templates[PageInternalError]
	}
	return render.HTML{Template: t, Name: layoutTemplate, Data: data}
}

// Static returns the embedded public assets
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
