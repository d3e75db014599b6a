package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) (HealthStatus, string, error)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthConfig holds configuration for health check endpoints
type HealthConfig struct {
	Logger       *slog.Logger
	Version      string
	CheckTimeout time.Duration
	Checks       *Checker
}

var startTime = time.Now()

// PingCheck turns a ping function into a HealthCheck. A failed ping reports
// failStatus, so optional dependencies can degrade instead of failing.
func PingCheck(ping func(context.Context) error, failStatus HealthStatus) HealthCheck {
	return func(ctx context.Context) (HealthStatus, string, error) {
		if err := ping(ctx); err != nil {
			return failStatus, "ping failed", err
		}
		return StatusHealthy, "ok", nil
	}
}

// Checker runs registered health checks concurrently.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]HealthCheck
}

func NewChecker() *Checker {
	return &Checker{checks: make(map[string]HealthCheck)}
}

// Register adds a health check
func (c *Checker) Register(name string, check HealthCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RunAll executes all health checks concurrently
func (c *Checker) RunAll(ctx context.Context) map[string]CheckResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make(map[string]CheckResult, len(c.checks))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, check := range c.checks {
		wg.Add(1)
		go func(n string, chk HealthCheck) {
			defer wg.Done()
			result := runHealthCheck(ctx, chk)
			mu.Lock()
			results[n] = result
			mu.Unlock()
		}(name, check)
	}

	wg.Wait()
	return results
}

// Overall folds results into one status: any unhealthy check wins, then degraded.
func Overall(results map[string]CheckResult) HealthStatus {
	status := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// ReadinessHandler returns an HTTP handler for readiness checks
// Endpoint: GET /health/ready
func ReadinessHandler(config *HealthConfig) http.HandlerFunc {
	if config == nil {
		config = &HealthConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := config.CheckTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	checks := config.Checks
	if checks == nil {
		checks = NewChecker()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		results := checks.RunAll(ctx)
		status := Overall(results)

		statusCode := http.StatusOK
		if status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
			logger.Warn("readiness check failed", "checks", results)
		}

		writeJSON(w, statusCode, map[string]interface{}{
			"ready":     status != StatusUnhealthy,
			"status":    status,
			"version":   config.Version,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    results,
		})
	}
}

// LivenessHandler returns an HTTP handler for liveness checks
// Endpoint: GET /health/live
func LivenessHandler(config *HealthConfig) http.HandlerFunc {
	version := ""
	if config != nil {
		version = config.Version
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"alive":     true,
			"version":   version,
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startTime).String(),
		})
	}
}

func runHealthCheck(ctx context.Context, check HealthCheck) CheckResult {
	start := time.Now()

	resultChan := make(chan CheckResult, 1)
	go func() {
		status, message, err := check(ctx)
		result := CheckResult{
			Status:  status,
			Message: message,
			Latency: time.Since(start).String(),
		}
		if err != nil {
			result.Error = err.Error()
			if result.Status == StatusHealthy {
				result.Status = StatusUnhealthy
			}
		}
		resultChan <- result
	}()

	select {
	case result := <-resultChan:
		return result
	case <-ctx.Done():
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "health check timed out",
			Error:   ctx.Err().Error(),
			Latency: time.Since(start).String(),
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
