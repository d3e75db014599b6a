package portal

import (
	"net/http"

	g "maragu.dev/gomponents"

	"hr_portal/internal/handlers"
)

// DashboardPath is where a successful sign-in lands.
const DashboardPath = "/employeedashboard"

type Portal struct {
	h *handlers.Handler
}

func NewPortal(h *handlers.Handler) *Portal {
	return &Portal{h: h}
}

// renderShell frames content in the client's shell and writes the page.
func (p *Portal) renderShell(w http.ResponseWriter, r *http.Request, status int, content g.Node) {
	_, profileID, ok := p.h.ClientStore(r)
	if !ok {
		p.h.RenderError(w, r, http.StatusInternalServerError, "")
		return
	}

	sh := p.h.Shells.Mount(profileID)
	view := sh.Render(newRequestRoute(w, r, r.URL.Path), content)

	if err := handlers.Render(w, status, view.Node(p.h.Controls(r))); err != nil {
		p.h.Logger.Error("failed to render page", "error", err, "path", r.URL.Path)
	}
}
