package middlewares

import (
	"errors"
	"log/slog"
	"net/http"

	"hr_portal/internal/shell"
	"hr_portal/internal/storage"
)

var ErrNoProfile = errors.New("no client profile")

// TokenGateConfig configures RequireToken.
type TokenGateConfig struct {
	// Store is the unscoped client store; the gate reads the requesting
	// profile's scope.
	Store storage.Store

	TokenKey  string // default shell.TokenKey
	LoginPath string // default shell.LoginPath
	Logger    *slog.Logger

	// ErrorHandler renders storage failures. Default: plain 503.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// RequireToken lets a request through only when a session token is
// present. The token is never inspected. Clients without one are sent to
// the login page with 303.
func RequireToken(config *TokenGateConfig) func(http.Handler) http.Handler {
	if config.TokenKey == "" {
		config.TokenKey = shell.TokenKey
	}
	if config.LoginPath == "" {
		config.LoginPath = shell.LoginPath
	}
	if config.ErrorHandler == nil {
		config.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scopeFor := ProfileStore(config.Store)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, ok := scopeFor(r)
			if !ok {
				config.ErrorHandler(w, r, ErrNoProfile)
				return
			}

			present, err := storage.Has(r.Context(), scope, config.TokenKey)
			if err != nil {
				logger.Error("session token lookup failed", "error", err, "path", r.URL.Path)
				config.ErrorHandler(w, r, err)
				return
			}
			if !present {
				logger.Debug("no session token, redirecting to login", "path", r.URL.Path)
				http.Redirect(w, r, config.LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
