package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hr_portal/internal/storage"
)

// ShutdownConfig holds configuration for graceful shutdown
type ShutdownConfig struct {
	Logger *slog.Logger

	// Timeout for graceful shutdown
	Timeout time.Duration

	// Signals to listen for (default: SIGINT, SIGTERM, SIGQUIT)
	Signals []os.Signal

	// OnShutdownStart is called when shutdown begins
	OnShutdownStart func()

	// OnShutdownComplete is called when shutdown completes
	OnShutdownComplete func()
}

// DefaultShutdownConfig returns a default shutdown configuration
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{
			syscall.SIGINT,  // Ctrl+C
			syscall.SIGTERM, // Kubernetes/Docker stop
			syscall.SIGQUIT, // Ctrl+\
		},
	}
}

// Resource represents a resource that needs cleanup during shutdown
type Resource interface {
	Name() string
	Close(ctx context.Context) error
}

// ShutdownManager manages graceful shutdown of the application
type ShutdownManager struct {
	config    *ShutdownConfig
	logger    *slog.Logger
	first     []Resource
	resources []Resource
	mu        sync.RWMutex
}

// NewShutdownManager creates a new shutdown manager
func NewShutdownManager(config *ShutdownConfig) *ShutdownManager {
	if config == nil {
		config = DefaultShutdownConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ShutdownManager{
		config: config,
		logger: logger,
	}
}

// Register adds a resource to be cleaned up during shutdown
func (sm *ShutdownManager) Register(resource Resource) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.resources = append(sm.resources, resource)
	sm.logger.Debug("resource registered for shutdown", "resource", resource.Name())
}

// RegisterFirst adds a resource that is closed, and waited for, before any
// resource added with Register. Request serving belongs here so in-flight
// handlers finish while their backends are still open.
func (sm *ShutdownManager) RegisterFirst(resource Resource) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.first = append(sm.first, resource)
	sm.logger.Debug("resource registered for first-phase shutdown", "resource", resource.Name())
}

// Wait blocks until a shutdown signal arrives or failed reports an error,
// then shuts everything down.
func (sm *ShutdownManager) Wait(failed <-chan error) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, sm.config.Signals...)
	defer signal.Stop(sigChan)

	var cause error
	select {
	case sig := <-sigChan:
		sm.logger.Info("shutdown signal received", "signal", sig.String())
	case cause = <-failed:
		sm.logger.Error("server failed", "error", cause)
	}

	if sm.config.OnShutdownStart != nil {
		sm.config.OnShutdownStart()
	}

	ctx, cancel := context.WithTimeout(context.Background(), sm.config.Timeout)
	defer cancel()

	err := sm.Shutdown(ctx)

	if sm.config.OnShutdownComplete != nil {
		sm.config.OnShutdownComplete()
	}

	return errors.Join(cause, err)
}

// Shutdown closes the RegisterFirst resources, then all other resources
// concurrently, waiting until ctx is done. The returned error joins every
// close failure.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.mu.RLock()
	first := append([]Resource(nil), sm.first...)
	resources := append([]Resource(nil), sm.resources...)
	sm.mu.RUnlock()

	sm.logger.Info("initiating graceful shutdown",
		"timeout", sm.config.Timeout.String(),
		"resources", len(first)+len(resources),
	)

	firstErr := sm.closeAll(ctx, first)
	if ctx.Err() != nil {
		return errors.Join(firstErr, ctx.Err())
	}
	return errors.Join(firstErr, sm.closeAll(ctx, resources))
}

// closeAll closes resources concurrently and returns their joined errors, or
// ctx's error on timeout.
func (sm *ShutdownManager) closeAll(ctx context.Context, resources []Resource) error {
	if len(resources) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(resources))

	for i := len(resources) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(r Resource) {
			defer wg.Done()

			start := time.Now()
			if err := r.Close(ctx); err != nil {
				sm.logger.Error("failed to close resource",
					"resource", r.Name(),
					"error", err,
					"duration", time.Since(start).String(),
				)
				errs <- fmt.Errorf("%s: %w", r.Name(), err)
				return
			}
			sm.logger.Info("resource closed", "resource", r.Name(), "duration", time.Since(start).String())
		}(resources[i])
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(errs)
		var all []error
		for err := range errs {
			all = append(all, err)
		}
		return errors.Join(all...)
	case <-ctx.Done():
		sm.logger.Warn("shutdown timeout exceeded, forcing shutdown")
		return ctx.Err()
	}
}

// HTTPServerResource wraps an HTTP server for graceful shutdown
type HTTPServerResource struct {
	server *http.Server
	name   string
}

func NewHTTPServerResource(name string, server *http.Server) *HTTPServerResource {
	return &HTTPServerResource{server: server, name: name}
}

func (h *HTTPServerResource) Name() string {
	return h.name
}

func (h *HTTPServerResource) Close(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// DatabaseResource wraps a database pool for graceful shutdown
type DatabaseResource struct {
	pool *pgxpool.Pool
	name string
}

func NewDatabaseResource(name string, pool *pgxpool.Pool) *DatabaseResource {
	return &DatabaseResource{pool: pool, name: name}
}

func (d *DatabaseResource) Name() string {
	return d.name
}

// pgxpool.Close blocks until connections are returned; ctx bounds the wait.
func (d *DatabaseResource) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.pool.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StoreResource closes the client storage backend.
type StoreResource struct {
	store storage.Store
	name  string
}

func NewStoreResource(name string, store storage.Store) *StoreResource {
	return &StoreResource{store: store, name: name}
}

func (s *StoreResource) Name() string {
	return s.name
}

func (s *StoreResource) Close(ctx context.Context) error {
	return s.store.Close()
}

// CustomResource wraps a custom cleanup function
type CustomResource struct {
	name      string
	closeFunc func(ctx context.Context) error
}

func NewCustomResource(name string, closeFunc func(ctx context.Context) error) *CustomResource {
	return &CustomResource{name: name, closeFunc: closeFunc}
}

func (c *CustomResource) Name() string {
	return c.name
}

func (c *CustomResource) Close(ctx context.Context) error {
	return c.closeFunc(ctx)
}

// run serves with listen in the background and shuts down on a signal or
// listener failure. The HTTP server drains before the other resources close.
func run(server *http.Server, listen func() error, resources []Resource, config *ShutdownConfig) error {
	sm := NewShutdownManager(config)
	sm.RegisterFirst(NewHTTPServerResource("http-server", server))
	for _, resource := range resources {
		sm.Register(resource)
	}

	failed := make(chan error, 1)
	go func() {
		sm.logger.Info("starting http server", "addr", server.Addr)
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	return sm.Wait(failed)
}
