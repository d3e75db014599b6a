package shell

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	g "maragu.dev/gomponents"

	"hr_portal/internal/navigation"
	"hr_portal/internal/storage"
)

// Shell is the frame mounted for one client profile.
type Shell struct {
	ProfileID string
	Sidebar   *SidebarController
	Session   *SessionController
	Frame     *Frame

	recorder Recorder
}

// Render frames content for the route's current path.
func (s *Shell) Render(route RouteState, content g.Node) FrameView {
	path := route.CurrentPath()
	view := s.Frame.Render(path, s.Sidebar.Collapsed(), content)
	if view.Sidebar.Selected() < 0 {
		s.recorder.UnmatchedRoute(path)
	}
	return view
}

func (s *Shell) Logout(ctx context.Context, route RouteState) {
	s.Session.Logout(ctx, route)
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Catalog  *navigation.Catalog
	Policy   navigation.MatchPolicy
	Store    storage.Store // unscoped; each shell gets its profile scope
	IdleTTL  time.Duration // default 30m
	Logger   *slog.Logger
	Recorder Recorder
}

// Registry tracks live shell instances by client profile. Instances that
// are not touched for IdleTTL are dropped; the next Mount starts expanded.
type Registry struct {
	mu        sync.Mutex
	instances *cache.Cache
	idleTTL   time.Duration

	catalog  *navigation.Catalog
	policy   navigation.MatchPolicy
	store    storage.Store
	logger   *slog.Logger
	recorder Recorder
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Catalog == nil {
		cfg.Catalog = navigation.Default
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := &Registry{
		instances: cache.New(cfg.IdleTTL, cfg.IdleTTL/2),
		idleTTL:   cfg.IdleTTL,
		catalog:   cfg.Catalog,
		policy:    cfg.Policy,
		store:     cfg.Store,
		logger:    cfg.Logger,
		recorder:  recorderOrNop(cfg.Recorder),
	}
	r.instances.OnEvicted(func(profileID string, _ interface{}) {
		r.logger.Debug("shell unmounted", "profile_id", profileID)
	})
	return r
}

// Mount returns the profile's shell, creating an expanded one if none is
// live, and resets its idle timer.
func (r *Registry) Mount(profileID string) *Shell {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.instances.Get(profileID); ok {
		s := v.(*Shell)
		r.instances.Set(profileID, s, cache.DefaultExpiration)
		return s
	}

	s := &Shell{
		ProfileID: profileID,
		Sidebar:   NewSidebarController(r.catalog, r.policy, r.recorder),
		Session:   NewSessionController(storage.Scope(r.store, profileID), r.logger.With("profile_id", profileID), r.recorder),
		Frame:     NewFrame(r.catalog, r.policy),
		recorder:  r.recorder,
	}
	r.instances.Set(profileID, s, cache.DefaultExpiration)
	r.logger.Debug("shell mounted", "profile_id", profileID)
	return s
}

// Lookup returns the live shell for profileID without touching its timer.
func (r *Registry) Lookup(profileID string) (*Shell, bool) {
	v, ok := r.instances.Get(profileID)
	if !ok {
		return nil, false
	}
	return v.(*Shell), true
}

// Unmount discards the profile's shell and its sidebar state.
func (r *Registry) Unmount(profileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances.Delete(profileID)
}

// Len returns the number of live shells.
func (r *Registry) Len() int {
	return r.instances.ItemCount()
}
