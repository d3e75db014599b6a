package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	"maragu.dev/gomponents/html"

	"hr_portal/internal/directory"
	"hr_portal/internal/middlewares"
	"hr_portal/internal/navigation"
	"hr_portal/internal/security"
	"hr_portal/internal/shell"
	"hr_portal/internal/storage"
)

// Options are the presentation and session settings shared by all handlers.
type Options struct {
	Brand       string
	Stylesheet  string
	TokenTTL    time.Duration // 0 keeps the token until logout
	Development bool
}

// Handler carries the dependencies every handler package needs.
type Handler struct {
	Directory directory.Directory
	Dashboard directory.DashboardSource
	Shells    *shell.Registry
	Store     storage.Store // unscoped client store
	Catalog   *navigation.Catalog
	Logger    *slog.Logger
	Options   Options
}

func NewHandler(dir directory.Directory, dash directory.DashboardSource, shells *shell.Registry, store storage.Store, catalog *navigation.Catalog, l *slog.Logger, opts Options) *Handler {
	if catalog == nil {
		catalog = navigation.Default
	}
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		Directory: dir,
		Dashboard: dash,
		Shells:    shells,
		Store:     store,
		Catalog:   catalog,
		Logger:    l,
		Options:   opts,
	}
}

// Controls returns the per-request values the shell views need.
func (h *Handler) Controls(r *http.Request) shell.Controls {
	return shell.Controls{
		Brand:      h.Brand(),
		CSRFToken:  security.GetCSRFToken(r),
		Stylesheet: h.Stylesheet(),
	}
}

// ClientStore returns the requesting client's scope of Store.
func (h *Handler) ClientStore(r *http.Request) (storage.Store, string, bool) {
	id, ok := middlewares.ProfileID(r.Context())
	if !ok {
		return nil, "", false
	}
	return storage.Scope(h.Store, id), id, true
}

// Render writes an HTML document with the given status.
func Render(w http.ResponseWriter, status int, node g.Node) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return node.Render(w)
}

// RenderError writes a standalone error page. It does not mount a shell so
// it is safe to use when storage or the registry is failing.
func (h *Handler) RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	title := http.StatusText(status)
	page := c.HTML5(c.HTML5Props{
		Title:    fmt.Sprintf("%s | %s", title, h.Brand()),
		Language: "en",
		Head: []g.Node{
			html.Link(html.Rel("stylesheet"), html.Href(h.Stylesheet())),
		},
		Body: []g.Node{
			html.Main(html.Class("error-page"),
				html.H1(g.Textf("%d %s", status, title)),
				g.If(message != "", html.P(g.Text(message))),
				html.A(html.Href(shell.LoginPath), g.Text("Back to sign in")),
			),
		},
	})
	if err := Render(w, status, page); err != nil {
		h.Logger.Error("failed to render error page", "error", err, "path", r.URL.Path)
	}
}

// StorageUnavailable renders client storage failures.
func (h *Handler) StorageUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	h.RenderError(w, r, http.StatusServiceUnavailable, "Session storage is unavailable. Please try again shortly.")
}

// CSRFRejected renders requests that failed token validation.
func (h *Handler) CSRFRejected(w http.ResponseWriter, r *http.Request, err error) {
	h.RenderError(w, r, http.StatusForbidden, "Your form expired. Go back, reload the page and try again.")
}

// Recover renders the page shown after a handler panic. Development builds
// include the panic value.
func (h *Handler) Recover(w http.ResponseWriter, r *http.Request, err interface{}) {
	msg := "Something went wrong on our side."
	if h.Options.Development {
		msg = fmt.Sprintf("panic: %v", err)
	}
	h.RenderError(w, r, http.StatusInternalServerError, msg)
}

func (h *Handler) Brand() string {
	if h.Options.Brand == "" {
		return "HR Portal"
	}
	return h.Options.Brand
}

func (h *Handler) Stylesheet() string {
	if h.Options.Stylesheet == "" {
		return "/static/css/portal.css"
	}
	return h.Options.Stylesheet
}
