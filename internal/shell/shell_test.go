package shell

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	"pgregory.net/rapid"

	"hr_portal/internal/navigation"
	"hr_portal/internal/storage"
)

// eventLog is shared between fakes so tests can assert ordering.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeRoute struct {
	path string
	log  *eventLog
	navs []string
}

func (r *fakeRoute) CurrentPath() string { return r.path }

func (r *fakeRoute) RequestNavigate(path string) {
	r.navs = append(r.navs, path)
	if r.log != nil {
		r.log.add("navigate " + path)
	}
}

// loggingStore wraps a store and records deletes.
type loggingStore struct {
	storage.Store
	log       *eventLog
	deleteErr error
}

func (s *loggingStore) Delete(ctx context.Context, key string) error {
	s.log.add("delete " + key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Store.Delete(ctx, key)
}

type countingRecorder struct {
	mu        sync.Mutex
	toggles   int
	logouts   []error
	unmatched []string
}

func (r *countingRecorder) SidebarToggled(bool) {
	r.mu.Lock()
	r.toggles++
	r.mu.Unlock()
}

func (r *countingRecorder) LoggedOut(err error) {
	r.mu.Lock()
	r.logouts = append(r.logouts, err)
	r.mu.Unlock()
}

func (r *countingRecorder) UnmatchedRoute(p string) {
	r.mu.Lock()
	r.unmatched = append(r.unmatched, p)
	r.mu.Unlock()
}

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestFrame_DashboardExpanded(t *testing.T) {
	view := NewFrame(navigation.Default, navigation.MatchExact).Render("/employeedashboard", false, nil)

	require.Len(t, view.Sidebar.Rows, 9)
	assert.Equal(t, "Dashboard", view.Title)
	assert.Equal(t, WidthExpanded, view.Width)
	assert.Equal(t, 0, view.Sidebar.Selected())
	for i, row := range view.Sidebar.Rows {
		assert.True(t, row.ShowLabel, "row %d", i)
		assert.Equal(t, i == 0, row.Selected, "row %d", i)
	}
}

func TestFrame_CollapsedPerformance(t *testing.T) {
	sc := NewSidebarController(navigation.Default, navigation.MatchExact, nil)
	sc.Toggle()
	require.True(t, sc.Collapsed())

	view := NewFrame(navigation.Default, navigation.MatchExact).Render("/performance", sc.Collapsed(), nil)

	assert.Equal(t, "Performance", view.Title)
	assert.Equal(t, WidthCollapsed, view.Width)
	assert.Equal(t, 2, view.Sidebar.Selected())
	for _, row := range view.Sidebar.Rows {
		assert.False(t, row.ShowLabel)
	}
}

func TestFrame_UnknownRoute(t *testing.T) {
	view := NewFrame(nil, navigation.MatchExact).Render("/unknown", false, nil)

	assert.Equal(t, navigation.DefaultTitle, view.Title)
	assert.Equal(t, -1, view.Sidebar.Selected())
}

func TestFrame_ContentPassedThrough(t *testing.T) {
	content := g.Text("opaque")
	view := NewFrame(nil, navigation.MatchExact).Render("/payroll", false, content)
	assert.Equal(t, content, view.Content)
}

func TestSidebar_ToggleTwiceRestores(t *testing.T) {
	rec := &countingRecorder{}
	sc := NewSidebarController(nil, navigation.MatchExact, rec)

	before := sc.Render("/profile")
	sc.Toggle()
	sc.Toggle()
	after := sc.Render("/profile")

	assert.Equal(t, before, after)
	assert.Equal(t, 2, rec.toggles)
}

func TestSidebar_ConcurrentToggles(t *testing.T) {
	sc := NewSidebarController(nil, navigation.MatchExact, nil)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.Toggle()
		}()
	}
	wg.Wait()

	assert.False(t, sc.Collapsed(), "an even number of toggles leaves the sidebar expanded")
}

func TestSidebar_SelectRequestsNavigation(t *testing.T) {
	sc := NewSidebarController(nil, navigation.MatchExact, nil)
	route := &fakeRoute{path: "/employeedashboard"}

	entry, ok := navigation.Default.Find("/leave-management")
	require.True(t, ok)
	sc.Select(route, entry)

	assert.Equal(t, []string{"/leave-management"}, route.navs)
	assert.False(t, sc.Collapsed(), "selection never touches collapse state")
}

func TestSession_LogoutDeletesBeforeNavigating(t *testing.T) {
	ctx := context.Background()
	log := &eventLog{}
	base := storage.NewMemoryStore(0)
	require.NoError(t, base.Set(ctx, TokenKey, "abc", 0))

	sess := NewSessionController(&loggingStore{Store: base, log: log}, nil, nil)
	route := &fakeRoute{path: "/payroll", log: log}

	require.Equal(t, Authenticated, sess.State())
	sess.Logout(ctx, route)

	assert.Equal(t, []string{"delete authToken", "navigate /employeelogin"}, log.all())
	assert.Equal(t, LoggedOut, sess.State())

	ok, err := storage.Has(ctx, base, TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_LogoutWithoutToken(t *testing.T) {
	ctx := context.Background()
	sess := NewSessionController(storage.NewMemoryStore(0), nil, nil)
	route := &fakeRoute{}

	sess.Logout(ctx, route)
	sess.Logout(ctx, route)

	assert.Equal(t, []string{LoginPath, LoginPath}, route.navs)
}

func TestSession_LogoutStoreFailureStillNavigates(t *testing.T) {
	ctx := context.Background()
	log := &eventLog{}
	rec := &countingRecorder{}
	failure := errors.New("redis unavailable")

	sess := NewSessionController(&loggingStore{Store: storage.NewMemoryStore(0), log: log, deleteErr: failure}, nil, rec)
	route := &fakeRoute{log: log}
	sess.Logout(ctx, route)

	assert.Equal(t, []string{"delete authToken", "navigate /employeelogin"}, log.all())
	require.Len(t, rec.logouts, 1)
	assert.ErrorIs(t, rec.logouts[0], failure)
}

func TestRegistry_MountIsPerProfile(t *testing.T) {
	reg := NewRegistry(RegistryConfig{Store: storage.NewMemoryStore(0)})

	a := reg.Mount("a")
	assert.Same(t, a, reg.Mount("a"))
	assert.NotSame(t, a, reg.Mount("b"))
	assert.Equal(t, 2, reg.Len())

	a.Sidebar.Toggle()
	assert.False(t, reg.Mount("b").Sidebar.Collapsed())
}

func TestRegistry_UnmountResetsState(t *testing.T) {
	reg := NewRegistry(RegistryConfig{Store: storage.NewMemoryStore(0)})

	reg.Mount("a").Sidebar.Toggle()
	reg.Unmount("a")

	_, ok := reg.Lookup("a")
	assert.False(t, ok)
	assert.False(t, reg.Mount("a").Sidebar.Collapsed(), "a fresh mount starts expanded")
}

func TestRegistry_IdleExpiry(t *testing.T) {
	reg := NewRegistry(RegistryConfig{Store: storage.NewMemoryStore(0), IdleTTL: 20 * time.Millisecond})
	reg.Mount("a")

	assert.Eventually(t, func() bool {
		_, ok := reg.Lookup("a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestRegistry_ShellLogoutUsesProfileScope(t *testing.T) {
	ctx := context.Background()
	base := storage.NewMemoryStore(0)
	require.NoError(t, storage.Scope(base, "a").Set(ctx, TokenKey, "ta", 0))
	require.NoError(t, storage.Scope(base, "b").Set(ctx, TokenKey, "tb", 0))

	reg := NewRegistry(RegistryConfig{Store: base})
	reg.Mount("a").Logout(ctx, &fakeRoute{})

	ok, err := storage.Has(ctx, storage.Scope(base, "a"), TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = storage.Has(ctx, storage.Scope(base, "b"), TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShell_RenderRecordsUnmatchedRoute(t *testing.T) {
	rec := &countingRecorder{}
	reg := NewRegistry(RegistryConfig{Store: storage.NewMemoryStore(0), Recorder: rec})
	s := reg.Mount("a")

	s.Render(&fakeRoute{path: "/payroll"}, nil)
	view := s.Render(&fakeRoute{path: "/nowhere"}, nil)

	assert.Equal(t, []string{"/nowhere"}, rec.unmatched)
	assert.Equal(t, "Dashboard", view.Title)
}

func TestFrameView_HTML(t *testing.T) {
	view := NewFrame(nil, navigation.MatchExact).Render("/attendances", false, g.Text("hello"))
	out := render(t, view.Node(Controls{CSRFToken: "tok"}))

	assert.Contains(t, out, "<!doctype html>")
	assert.Contains(t, out, "<h1>Attendances</h1>")
	assert.Contains(t, out, "HR Portal")
	assert.Contains(t, out, "w-64")
	assert.Contains(t, out, "hello")
	assert.Equal(t, 1, strings.Count(out, `aria-current="page"`))
	assert.Equal(t, 10, strings.Count(out, `class="nav-label"`), "nine entries and the logout label")
	assert.Contains(t, out, `href="/attendances"`)
	assert.Contains(t, out, `data-icon="x"`)
	assert.Equal(t, 2, strings.Count(out, `name="csrf_token" value="tok"`))
	assert.Contains(t, out, `name="from" value="/attendances"`)
}

func TestFrameView_HTMLCollapsed(t *testing.T) {
	view := NewFrame(nil, navigation.MatchExact).Render("/nowhere", true, nil)
	out := render(t, view.Node(Controls{Brand: "Acme HR"}))

	assert.Contains(t, out, "w-20")
	assert.NotContains(t, out, `class="nav-label"`)
	assert.NotContains(t, out, `aria-current`)
	assert.NotContains(t, out, `<span class="brand">`)
	assert.Contains(t, out, `data-icon="menu"`)
	assert.Contains(t, out, "<title>Dashboard | Acme HR</title>")

	sidebar := render(t, view.Sidebar.Node(Controls{Brand: "Acme HR"}))
	for _, e := range navigation.Default.Entries() {
		assert.NotContains(t, sidebar, e.Name, "collapsed sidebar shows %q", e.Name)
		assert.Contains(t, sidebar, `data-icon="`+string(e.Icon)+`"`)
	}
	assert.GreaterOrEqual(t, strings.Count(sidebar, "data-icon="), navigation.Default.Len())
}

func TestSidebarView_CollapsedHidesEveryLabel(t *testing.T) {
	for _, current := range []string{"/nowhere", "/employeedashboard", "/payroll"} {
		view := RenderSidebar(current, navigation.Default, true, navigation.MatchExact)
		out := render(t, view.Node(Controls{}))

		for _, e := range navigation.Default.Entries() {
			assert.NotContains(t, out, e.Name, "path %s", current)
		}
		assert.Equal(t, 9, strings.Count(out, "nav-item"), "path %s", current)
		// one per row plus the toggle and logout buttons
		assert.Equal(t, 11, strings.Count(out, `aria-label="`), "path %s", current)
	}
}

func TestRenderSidebar_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		paths := rapid.SliceOfNDistinct(rapid.StringMatching(`/[a-z]{1,6}(/[a-z]{1,4})?`), 1, 8, rapid.ID[string]).Draw(t, "paths")
		entries := make([]navigation.Entry, len(paths))
		for i, p := range paths {
			entries[i] = navigation.Entry{Name: "E" + p, Icon: navigation.IconHome, Path: p}
		}
		catalog, err := navigation.NewCatalog(entries...)
		if err != nil {
			t.Fatalf("catalog: %v", err)
		}

		policy := rapid.SampledFrom([]navigation.MatchPolicy{navigation.MatchExact, navigation.MatchLongestPrefix}).Draw(t, "policy")
		current := rapid.OneOf(rapid.SampledFrom(paths), rapid.StringMatching(`/[a-z]{0,8}(/[a-z]{1,4})?`)).Draw(t, "current")
		toggles := rapid.IntRange(0, 6).Draw(t, "toggles")

		sc := NewSidebarController(catalog, policy, nil)
		for i := 0; i < toggles; i++ {
			sc.Toggle()
		}
		view := sc.Render(current)

		if view.Collapsed != (toggles%2 == 1) {
			t.Fatalf("collapsed=%v after %d toggles", view.Collapsed, toggles)
		}
		if len(view.Rows) != len(paths) {
			t.Fatalf("got %d rows for %d entries", len(view.Rows), len(paths))
		}
		selected := 0
		for i, row := range view.Rows {
			if row.Path != paths[i] {
				t.Fatalf("row %d out of catalog order", i)
			}
			if row.ShowLabel == view.Collapsed {
				t.Fatalf("row %d label shown=%v while collapsed=%v", i, row.ShowLabel, view.Collapsed)
			}
			if row.Selected {
				selected++
			}
		}
		if selected > 1 {
			t.Fatalf("%d rows selected", selected)
		}
		_, listed := catalog.Find(current)
		if policy == navigation.MatchExact && listed != (selected == 1) {
			t.Fatalf("exact match selection mismatch for %q", current)
		}
	})
}
