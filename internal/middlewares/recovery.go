package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"hr_portal/internal/observability"
)

// RecoveryConfig holds configuration for recovery middleware
type RecoveryConfig struct {
	Logger *slog.Logger

	// DisableStackTrace leaves the stack out of the log entry
	DisableStackTrace bool

	// RecoveryHandler writes the response after a panic. Default: plain 500.
	RecoveryHandler func(w http.ResponseWriter, r *http.Request, err interface{})
}

func defaultRecoveryHandler(w http.ResponseWriter, r *http.Request, err interface{}) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Recovery returns a recovery middleware that recovers from panics
func Recovery(config *RecoveryConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = &RecoveryConfig{}
	}
	if config.RecoveryHandler == nil {
		config.RecoveryHandler = defaultRecoveryHandler
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				logAttrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"client_ip", clientIP(r),
					"error", fmt.Sprintf("%v", err),
				}
				if id := observability.GetRequestID(r.Context()); id != "" {
					logAttrs = append(logAttrs, "request_id", id)
				}
				if !config.DisableStackTrace {
					logAttrs = append(logAttrs, "stack", string(debug.Stack()))
				}
				logger.Error("panic recovered", logAttrs...)

				config.RecoveryHandler(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
