// Package portal serves the employee portal pages: sign-in, the shell
// framed destinations, the sidebar toggle and sign-out.
package portal

import "net/http"

// requestRoute adapts one request/response pair to shell.RouteState.
// Navigation requests become 303 redirects; only the first one is written.
type requestRoute struct {
	w         http.ResponseWriter
	r         *http.Request
	path      string
	navigated string
}

func newRequestRoute(w http.ResponseWriter, r *http.Request, path string) *requestRoute {
	return &requestRoute{w: w, r: r, path: path}
}

func (rr *requestRoute) CurrentPath() string {
	return rr.path
}

func (rr *requestRoute) RequestNavigate(path string) {
	if rr.navigated != "" {
		return
	}
	rr.navigated = path
	http.Redirect(rr.w, rr.r, path, http.StatusSeeOther)
}
