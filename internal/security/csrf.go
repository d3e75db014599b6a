package security

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hr_portal/internal/storage"
)

type csrfContextKey struct{}

// CSRFConfig holds CSRF protection configuration
type CSRFConfig struct {
	// StoreFor returns the storage scope of the requesting client.
	StoreFor func(r *http.Request) (storage.Store, bool)

	// Token length in bytes (default: 32)
	TokenLength int

	// Token lifetime (default: 24 hours)
	TokenLifetime time.Duration

	// Form field name for CSRF token (default: csrf_token)
	FieldName string

	// Header name for CSRF token (default: X-CSRF-Token)
	HeaderName string

	// Key the token is stored under (default: csrfToken)
	StorageKey string

	Logger *slog.Logger

	// ErrorHandler renders rejected requests. Default: plain 403.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// DefaultCSRFConfig returns a default CSRF configuration
func DefaultCSRFConfig() *CSRFConfig {
	return &CSRFConfig{
		TokenLength:   32,
		TokenLifetime: 24 * time.Hour,
		FieldName:     "csrf_token",
		HeaderName:    "X-CSRF-Token",
		StorageKey:    "csrfToken",
	}
}

// CSRFProtection issues one token per client profile on safe requests and
// requires it back on unsafe ones.
type CSRFProtection struct {
	config *CSRFConfig
	logger *slog.Logger
}

func NewCSRFProtection(config *CSRFConfig) *CSRFProtection {
	defaults := DefaultCSRFConfig()
	if config == nil {
		config = defaults
	}
	if config.TokenLength <= 0 {
		config.TokenLength = defaults.TokenLength
	}
	if config.TokenLifetime <= 0 {
		config.TokenLifetime = defaults.TokenLifetime
	}
	if config.FieldName == "" {
		config.FieldName = defaults.FieldName
	}
	if config.HeaderName == "" {
		config.HeaderName = defaults.HeaderName
	}
	if config.StorageKey == "" {
		config.StorageKey = defaults.StorageKey
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CSRFProtection{config: config, logger: logger}
}

// Middleware returns a middleware that protects against CSRF attacks
func (c *CSRFProtection) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, ok := c.storeFor(r)
		if !ok {
			c.reject(w, r, ErrNoProfile)
			return
		}

		if isSafeMethod(r.Method) {
			token, err := c.Token(r.Context(), store)
			if err != nil {
				c.logger.Error("failed to issue CSRF token", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfContextKey{}, token)))
			return
		}

		if err := c.Validate(r.Context(), store, c.requestToken(r)); err != nil {
			c.logger.Warn("CSRF validation failed",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
			)
			c.reject(w, r, err)
			return
		}

		token, _ := store.Get(r.Context(), c.config.StorageKey)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfContextKey{}, token)))
	})
}

// Token returns the client's current token, issuing one if none is stored.
func (c *CSRFProtection) Token(ctx context.Context, store storage.Store) (string, error) {
	token, err := store.Get(ctx, c.config.StorageKey)
	if err == nil && token != "" {
		return token, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	token, err = GenerateToken(c.config.TokenLength)
	if err != nil {
		return "", err
	}
	if err := store.Set(ctx, c.config.StorageKey, token, c.config.TokenLifetime); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Validate compares submitted with the stored token in constant time.
func (c *CSRFProtection) Validate(ctx context.Context, store storage.Store, submitted string) error {
	if submitted == "" {
		return ErrInvalidToken
	}
	stored, err := store.Get(ctx, c.config.StorageKey)
	if err != nil {
		return ErrInvalidToken
	}
	if !SecureCompare(submitted, stored) {
		return ErrInvalidToken
	}
	return nil
}

// GetCSRFToken retrieves the CSRF token placed on the request by Middleware
func GetCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	return token
}

func (c *CSRFProtection) storeFor(r *http.Request) (storage.Store, bool) {
	if c.config.StoreFor == nil {
		return nil, false
	}
	return c.config.StoreFor(r)
}

func (c *CSRFProtection) requestToken(r *http.Request) string {
	if token := r.Header.Get(c.config.HeaderName); token != "" {
		return token
	}
	return r.PostFormValue(c.config.FieldName)
}

func (c *CSRFProtection) reject(w http.ResponseWriter, r *http.Request, err error) {
	if c.config.ErrorHandler != nil {
		c.config.ErrorHandler(w, r, err)
		return
	}
	http.Error(w, "CSRF token validation failed", http.StatusForbidden)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
