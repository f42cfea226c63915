package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/notify"
	"github.com/noah-isme/toko-storefront/internal/security"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names understood by Renderer.Render.
const (
	PageHome    = "home"
	PageProduct = "product"
	PageLogin   = "login"
	PageAccount = "account"
)

// Page is the data every template receives.
type Page struct {
	Title   string
	CSRF    string
	Session common.Session
	Toasts  []notify.Toast
	Data    any
}

// Renderer renders pages inside the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger zerolog.Logger) (*Renderer, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{PageHome, PageProduct, PageLogin, PageAccount} {
		tmpl, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Static serves the embedded assets; mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// MustRenderer behaves like NewRenderer but panics on error.
func MustRenderer(logger zerolog.Logger) *Renderer {
	r, err := NewRenderer(logger)
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes the named page with the given status. Session, CSRF token and
// toasts are taken from the request context.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	tmpl, ok := rd.pages[name]
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown page", nil)
		return
	}
	ctx := r.Context()
	page := Page{
		Title:   title,
		CSRF:    security.CSRFToken(ctx),
		Session: common.SessionFrom(ctx),
		Toasts:  notify.FromContext(ctx).Items(),
		Data:    data,
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		rd.logger.Error().Err(err).Str("page", name).Msg("render page")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to render page", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
