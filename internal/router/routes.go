package router

import (
	"net/http"

	"hr_portal/internal/handlers/portal"
	"hr_portal/internal/navigation"
	"hr_portal/internal/shell"
)

// Deps are the handlers and middlewares the portal routes are built from.
type Deps struct {
	Portal  *portal.Portal
	Catalog *navigation.Catalog

	// Ambient wraps every route: access log, recovery, headers, metrics.
	Ambient []Middleware

	// Profile resolves the client profile. It runs outside Ambient so the
	// access log can report the profile ID.
	Profile Middleware
	// CSRF guards state-changing posts. Logout is exempt: it only clears
	// the token and must succeed even with a stale form.
	CSRF Middleware

	// RequireToken gates the shell pages.
	RequireToken Middleware

	// LoginLimit throttles credential posts.
	LoginLimit Middleware

	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc
	Metrics   http.Handler
}

// SetupRoutes registers the portal, health and metrics routes.
func SetupRoutes(r *Router, d *Deps) {
	catalog := d.Catalog
	if catalog == nil {
		catalog = navigation.Default
	}

	client := append([]Middleware{d.Profile}, d.Ambient...)
	page := append(append([]Middleware{}, client...), d.CSRF)
	gated := append(append([]Middleware{}, page...), d.RequireToken)

	r.RegisterGroup(&RouteGroup{
		Middlewares: d.Ambient,
		Routes: []*Route{
			{Method: http.MethodGet, Path: "/health/live", HandlerFunc: d.Liveness},
			{Method: http.MethodGet, Path: "/health/ready", HandlerFunc: d.Readiness},
			{Method: http.MethodGet, Path: "/metrics", HandlerFunc: d.Metrics.ServeHTTP},
			{Method: http.MethodGet, Path: "/{$}", HandlerFunc: d.Portal.Root},
		},
	})

	r.RegisterGroup(&RouteGroup{
		Middlewares: page,
		Routes: []*Route{
			{Method: http.MethodGet, Path: shell.LoginPath, HandlerFunc: d.Portal.LoginPage},
			{Method: http.MethodPost, Path: shell.LoginPath, HandlerFunc: d.Portal.Login, Middlewares: []Middleware{d.LoginLimit}},
		},
	})

	r.RegisterGroup(&RouteGroup{
		Middlewares: client,
		Routes: []*Route{
			{Method: http.MethodPost, Path: shell.LogoutAction, HandlerFunc: d.Portal.Logout},
		},
	})

	shellRoutes := []*Route{
		{Method: http.MethodPost, Path: shell.ToggleAction, HandlerFunc: d.Portal.ToggleSidebar},
		{Method: http.MethodGet, Path: "/", HandlerFunc: d.Portal.NotFound},
	}
	for _, e := range catalog.Entries() {
		shellRoutes = append(shellRoutes, &Route{Method: http.MethodGet, Path: e.Path, HandlerFunc: d.Portal.Page})
	}
	r.RegisterGroup(&RouteGroup{Middlewares: gated, Routes: shellRoutes})
}
