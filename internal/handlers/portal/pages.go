package portal

import (
	"net/http"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"

	"hr_portal/internal/security"
	"hr_portal/internal/shell"
	"hr_portal/internal/widgets"
)

// Root sends visitors to the sign-in page.
func (p *Portal) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, shell.LoginPath, http.StatusSeeOther)
}

// Page renders a catalog destination inside the shell.
func (p *Portal) Page(w http.ResponseWriter, r *http.Request) {
	entry, ok := p.h.Catalog.Find(r.URL.Path)
	if !ok {
		p.NotFound(w, r)
		return
	}

	var content g.Node
	if entry.Path == DashboardPath {
		content = p.dashboard(r)
	} else {
		content = widgets.Placeholder(entry.Name)
	}
	p.renderShell(w, r, http.StatusOK, content)
}

func (p *Portal) dashboard(r *http.Request) g.Node {
	data, err := p.h.Dashboard.Dashboard(r.Context())
	if err != nil {
		p.h.Logger.Error("failed to load dashboard", "error", err)
		return html.P(html.Class("empty"), g.Text("Dashboard content is unavailable right now."))
	}
	return widgets.Dashboard(data)
}

// NotFound renders unknown paths inside the shell with status 404. No
// sidebar row is selected and the title falls back to the default.
func (p *Portal) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderShell(w, r, http.StatusNotFound, widgets.NotFound(r.URL.Path))
}

// ToggleSidebar flips the client's sidebar and returns to the page the
// form was posted from.
func (p *Portal) ToggleSidebar(w http.ResponseWriter, r *http.Request) {
	_, profileID, ok := p.h.ClientStore(r)
	if !ok {
		p.h.RenderError(w, r, http.StatusInternalServerError, "")
		return
	}

	from := security.LocalPath(r.PostFormValue(shell.FromField), DashboardPath)
	sh := p.h.Shells.Mount(profileID)
	sh.Sidebar.Toggle()

	newRequestRoute(w, r, from).RequestNavigate(from)
}
