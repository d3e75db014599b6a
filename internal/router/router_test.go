package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietRouter(cfg *Config, global ...Middleware) *Router {
	return NewRouter(cfg, slog.New(slog.DiscardHandler), global...)
}

func tag(name string, trail *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trail = append(*trail, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var trail []string
	r := quietRouter(nil, tag("global", &trail))
	r.RegisterGroup(&RouteGroup{
		Prefix:      "/shell",
		Middlewares: []Middleware{tag("group", &trail)},
		Routes: []*Route{{
			Method:      http.MethodPost,
			Path:        "/sidebar/toggle",
			Middlewares: []Middleware{tag("route", &trail)},
			HandlerFunc: func(w http.ResponseWriter, r *http.Request) { trail = append(trail, "handler") },
		}},
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/shell/sidebar/toggle", nil))

	assert.Equal(t, []string{"global", "group", "route", "handler"}, trail)
	assert.Equal(t, []string{"POST /shell/sidebar/toggle"}, r.Routes())
}

func TestDuplicateRoutePanics(t *testing.T) {
	r := quietRouter(nil)
	ok := func(w http.ResponseWriter, r *http.Request) {}
	r.Register(&Route{Method: "get", Path: "/profile", HandlerFunc: ok})

	var conflict *RouteConflictError
	func() {
		defer func() {
			if v := recover(); v != nil {
				conflict, _ = v.(*RouteConflictError)
			}
		}()
		r.Register(&Route{Method: http.MethodGet, Path: "/profile", HandlerFunc: ok})
	}()

	require.NotNil(t, conflict)
	assert.Equal(t, "GET /profile", conflict.NewRoute)
	assert.Equal(t, "GET /profile", conflict.ExistingRoute)
	assert.Len(t, r.Routes(), 1)
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "portal.css"), []byte("body{}"), 0o644))

	r := quietRouter(&Config{Static: &StaticConfig{Dir: dir}})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/portal.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestBodySizeLimit(t *testing.T) {
	r := quietRouter(&Config{MaxRequestBodySize: 8})
	r.Register(&Route{Method: http.MethodPost, Path: "/echo", HandlerFunc: func(w http.ResponseWriter, req *http.Request) {
		if _, err := io.ReadAll(req.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		}
	}})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCloseDrainsAndRejects(t *testing.T) {
	r := quietRouter(nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	r.Register(&Route{Method: http.MethodGet, Path: "/slow", HandlerFunc: func(w http.ResponseWriter, req *http.Request) {
		close(entered)
		<-release
	}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)
	assert.True(t, r.ShuttingDown())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	close(release)
	<-done
	require.NoError(t, r.Close(context.Background()))
}
