package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"hr_portal/internal/storage"
)

type profileContextKey struct{}

// ProfileConfig configures the client profile cookie.
type ProfileConfig struct {
	CookieName string // default "portal_profile"
	Secure     bool
	MaxAge     time.Duration // default 400 days
	Logger     *slog.Logger
}

// Profile gives every client a stable random profile ID, carried in a
// long-lived cookie. All client-side state lives under that ID, so it
// plays the part of the browser's own storage. Malformed IDs are replaced.
func Profile(config *ProfileConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = &ProfileConfig{}
	}
	if config.CookieName == "" {
		config.CookieName = "portal_profile"
	}
	if config.MaxAge <= 0 {
		config.MaxAge = 400 * 24 * time.Hour
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(config.CookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				logger.Debug("issued client profile", "profile_id", id)
			}

			// refreshed on every response so active clients never expire
			http.SetCookie(w, &http.Cookie{
				Name:     config.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(config.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   config.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(WithProfileID(r.Context(), id)))
		})
	}
}

// WithProfileID returns a context carrying the client profile ID
func WithProfileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileContextKey{}, id)
}

// ProfileID returns the client profile ID placed by Profile
func ProfileID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(profileContextKey{}).(string)
	return id, ok && id != ""
}

// ProfileStore returns a function resolving the requesting client's scope of base.
func ProfileStore(base storage.Store) func(r *http.Request) (storage.Store, bool) {
	return func(r *http.Request) (storage.Store, bool) {
		id, ok := ProfileID(r.Context())
		if !ok {
			return nil, false
		}
		return storage.Scope(base, id), true
	}
}
