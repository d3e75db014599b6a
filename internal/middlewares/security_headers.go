package middlewares

import (
	"log/slog"
	"net/http"
	"strconv"
)

// SecurityConfig holds configuration for security headers middleware
type SecurityConfig struct {
	Logger *slog.Logger

	ContentTypeNosniff    string // default "nosniff"
	XFrameOptions         string // default "DENY"
	ContentSecurityPolicy string
	ReferrerPolicy        string
	PermissionsPolicy     string

	// HSTS is sent only over TLS
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	// NoStore marks matching responses uncacheable, so the back button
	// cannot resurrect a page after logout.
	NoStore func(r *http.Request) bool
}

// DefaultSecurityConfig returns a default security configuration
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self'; img-src 'self' data:; object-src 'none'; frame-ancestors 'none'; form-action 'self'; base-uri 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
		HSTSMaxAge:            31536000,
	}
}

// Security returns a middleware that sets security headers
func Security(config *SecurityConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = DefaultSecurityConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("security headers middleware initialized",
		"hsts_max_age", config.HSTSMaxAge,
		"x_frame_options", config.XFrameOptions,
	)

	static := map[string]string{
		"X-Content-Type-Options":  config.ContentTypeNosniff,
		"X-Frame-Options":         config.XFrameOptions,
		"Content-Security-Policy": config.ContentSecurityPolicy,
		"Referrer-Policy":         config.ReferrerPolicy,
		"Permissions-Policy":      config.PermissionsPolicy,
	}

	hsts := ""
	if config.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(config.HSTSMaxAge)
		if config.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range static {
				if value != "" {
					h.Set(name, value)
				}
			}
			if r.TLS != nil && hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if config.NoStore != nil && config.NoStore(r) {
				h.Set("Cache-Control", "no-store")
			}

			next.ServeHTTP(w, r)
		})
	}
}
