package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMaxRequestBodySize caps form posts. The portal only accepts small forms.
const DefaultMaxRequestBodySize = 1 << 20

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Route is one method and path pattern served by the router.
type Route struct {
	Method      string
	Path        string
	HandlerFunc http.HandlerFunc
	Middlewares []Middleware
}

// RouteGroup shares a prefix and middlewares between routes.
type RouteGroup struct {
	Prefix      string
	Middlewares []Middleware
	Routes      []*Route
}

// StaticConfig holds static file serving configuration
type StaticConfig struct {
	Dir       string
	URLPrefix string // default "/static/"
}

// Config holds router configuration
type Config struct {
	Static             *StaticConfig
	MaxRequestBodySize int64 // default DefaultMaxRequestBodySize
}

// RouteConflictError is raised when a pattern is registered twice.
type RouteConflictError struct {
	NewRoute      string
	ExistingRoute string
	Message       string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("route conflict: %s conflicts with existing route %s - %s",
		e.NewRoute, e.ExistingRoute, e.Message)
}

type compiledRoute struct {
	pattern      string
	registeredAt time.Time
}

// Router registers routes on a ServeMux, applying the global middlewares
// before each route's own.
type Router struct {
	config            *Config
	mux               *http.ServeMux
	logger            *slog.Logger
	globalMiddlewares []Middleware
	compiledRoutes    map[string]*compiledRoute
	routesMu          sync.RWMutex
	activeRequests    atomic.Int64
	isShuttingDown    atomic.Bool
}

func NewRouter(config *Config, logger *slog.Logger, globalMiddlewares ...Middleware) *Router {
	if config == nil {
		config = &Config{}
	}
	if config.MaxRequestBodySize <= 0 {
		config.MaxRequestBodySize = DefaultMaxRequestBodySize
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Router{
		config:         config,
		mux:            http.NewServeMux(),
		logger:         logger,
		compiledRoutes: make(map[string]*compiledRoute),
	}

	r.globalMiddlewares = append(r.globalMiddlewares, r.shutdownAwareMiddleware(), r.bodySizeLimitMiddleware())
	r.globalMiddlewares = append(r.globalMiddlewares, globalMiddlewares...)

	if config.Static != nil {
		r.setupStaticFiles()
	}
	return r
}

// setupStaticFiles serves Static.Dir under Static.URLPrefix without the
// global middlewares.
func (r *Router) setupStaticFiles() {
	staticDir := r.config.Static.Dir
	if staticDir == "" {
		return
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		r.logger.Warn("static directory does not exist", "dir", staticDir)
		return
	}

	urlPrefix := r.config.Static.URLPrefix
	if urlPrefix == "" {
		urlPrefix = "/static/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}

	fileServer := http.FileServer(http.Dir(staticDir))
	r.mux.Handle("GET "+urlPrefix+"{path...}", http.StripPrefix(strings.TrimSuffix(urlPrefix, "/"), fileServer))

	r.logger.Info("static files enabled", "dir", staticDir, "prefix", urlPrefix)
}

// Register adds a route. Registering the same pattern twice panics.
func (r *Router) Register(route *Route) {
	pattern := strings.ToUpper(route.Method) + " " + route.Path
	if route.Method == "" {
		pattern = route.Path
	}

	r.routesMu.Lock()
	if existing, ok := r.compiledRoutes[pattern]; ok {
		r.routesMu.Unlock()
		err := &RouteConflictError{
			NewRoute:      pattern,
			ExistingRoute: existing.pattern,
			Message:       fmt.Sprintf("registered at %s", existing.registeredAt.Format(time.RFC3339)),
		}
		r.logger.Error("route conflict detected", "error", err)
		panic(err)
	}
	r.compiledRoutes[pattern] = &compiledRoute{pattern: pattern, registeredAt: time.Now()}
	r.routesMu.Unlock()

	all := make([]Middleware, 0, len(r.globalMiddlewares)+len(route.Middlewares))
	all = append(all, r.globalMiddlewares...)
	all = append(all, route.Middlewares...)
	r.mux.Handle(pattern, chainMiddlewares(route.HandlerFunc, all))

	r.logger.Debug("route registered", "pattern", pattern)
}

// RegisterGroup registers a group of routes with shared configuration
func (r *Router) RegisterGroup(group *RouteGroup) {
	if group == nil {
		return
	}

	for _, route := range group.Routes {
		if group.Prefix != "" {
			prefix := strings.TrimSuffix(group.Prefix, "/")
			route.Path = prefix + "/" + strings.TrimPrefix(route.Path, "/")
		}
		if len(group.Middlewares) > 0 {
			route.Middlewares = append(append([]Middleware{}, group.Middlewares...), route.Middlewares...)
		}
		r.Register(route)
	}

	r.logger.Debug("route group registered", "prefix", group.Prefix, "routes", len(group.Routes))
}

// Routes returns the registered patterns, sorted.
func (r *Router) Routes() []string {
	r.routesMu.RLock()
	defer r.routesMu.RUnlock()

	patterns := make([]string, 0, len(r.compiledRoutes))
	for p := range r.compiledRoutes {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	return patterns
}

// Handler returns the root handler to hand to an http.Server.
func (r *Router) Handler() http.Handler {
	return r.mux
}

// chainMiddlewares applies middlewares so the first one is outermost.
func chainMiddlewares(handler http.Handler, middlewares []Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

func (r *Router) bodySizeLimitMiddleware() Middleware {
	maxSize := r.config.MaxRequestBodySize
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			req.Body = http.MaxBytesReader(w, req.Body, maxSize)
			next.ServeHTTP(w, req)
		})
	}
}

// shutdownAwareMiddleware rejects requests once Close has been called
func (r *Router) shutdownAwareMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if r.isShuttingDown.Load() {
				w.Header().Set("Connection", "close")
				w.Header().Set("Retry-After", "30")
				http.Error(w, "Service Unavailable - Shutting Down", http.StatusServiceUnavailable)
				return
			}

			r.activeRequests.Add(1)
			defer r.activeRequests.Add(-1)

			next.ServeHTTP(w, req)
		})
	}
}

// ShuttingDown reports whether Close has been called.
func (r *Router) ShuttingDown() bool {
	return r.isShuttingDown.Load()
}

func (r *Router) Name() string {
	return "router"
}

// Close stops accepting requests and waits for in-flight ones until ctx ends.
func (r *Router) Close(ctx context.Context) error {
	r.isShuttingDown.Store(true)
	r.logger.Info("draining requests", "active_requests", r.activeRequests.Load())

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for r.activeRequests.Load() > 0 {
		select {
		case <-ctx.Done():
			r.logger.Warn("timeout waiting for active requests", "remaining", r.activeRequests.Load())
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
