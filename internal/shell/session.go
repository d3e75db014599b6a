package shell

import (
	"context"
	"log/slog"
	"sync/atomic"

	"hr_portal/internal/storage"
)

const (
	// TokenKey is the storage key holding the session token.
	TokenKey = "authToken"

	// LoginPath is where logout sends the client.
	LoginPath = "/employeelogin"
)

type SessionState int32

const (
	Authenticated SessionState = iota
	LoggedOut
)

func (s SessionState) String() string {
	if s == LoggedOut {
		return "logged_out"
	}
	return "authenticated"
}

// SessionController ends the session of one client profile. store must be
// scoped to that profile.
type SessionController struct {
	store    storage.Store
	logger   *slog.Logger
	recorder Recorder
	state    atomic.Int32
}

func NewSessionController(store storage.Store, logger *slog.Logger, recorder Recorder) *SessionController {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionController{
		store:    store,
		logger:   logger,
		recorder: recorderOrNop(recorder),
	}
}

// Logout deletes the token and then requests navigation to the login page.
// A failed delete is logged and the navigation still happens. Calling
// Logout again repeats both steps.
func (s *SessionController) Logout(ctx context.Context, route RouteState) {
	err := s.store.Delete(ctx, TokenKey)
	if err != nil {
		s.logger.Warn("failed to remove session token", "error", err)
	}
	s.state.Store(int32(LoggedOut))
	s.recorder.LoggedOut(err)

	route.RequestNavigate(LoginPath)
}

func (s *SessionController) State() SessionState {
	return SessionState(s.state.Load())
}
