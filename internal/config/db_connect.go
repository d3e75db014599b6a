package config

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DBConfig holds database connection configuration
type DBConfig struct {
	DatabaseURL string
	Logger      *slog.Logger

	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration // 0 = infinite, for use behind an external pooler
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration

	// MaxRetries is the maximum number of connection attempts
	MaxRetries int

	// RetryDelay is the initial delay between attempts; it doubles each time
	RetryDelay time.Duration
}

// DefaultDBConfig returns a default database configuration
func DefaultDBConfig(databaseURL string) *DBConfig {
	return &DBConfig{
		DatabaseURL:       databaseURL,
		MaxConns:          10,
		MinConns:          2,
		HealthCheckPeriod: 1 * time.Minute,
		ConnectTimeout:    10 * time.Second,
		MaxRetries:        3,
		RetryDelay:        1 * time.Second,
	}
}

// DBConfig builds pool settings from the loaded database section.
func (d DatabaseConfig) DBConfig(logger *slog.Logger) *DBConfig {
	cfg := DefaultDBConfig(d.URL)
	cfg.Logger = logger
	cfg.MaxConns = d.MaxConns
	cfg.MinConns = d.MinConns
	cfg.MaxConnLifetime = d.MaxConnLifetime
	cfg.MaxConnIdleTime = d.MaxConnIdleTime
	if d.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = d.HealthCheckPeriod
	}
	if d.ConnectTimeout > 0 {
		cfg.ConnectTimeout = d.ConnectTimeout
	}
	if d.MaxRetries > 0 {
		cfg.MaxRetries = d.MaxRetries
	}
	if d.RetryDelay > 0 {
		cfg.RetryDelay = d.RetryDelay
	}
	return cfg
}

// NewPool creates a connection pool, retrying with exponential backoff
// until it can ping the database or ctx is done.
func NewPool(ctx context.Context, config *DBConfig) (*pgxpool.Pool, error) {
	if config == nil {
		return nil, fmt.Errorf("database config cannot be nil")
	}
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("initializing database connection pool",
		"max_conns", config.MaxConns,
		"min_conns", config.MinConns,
		"health_check_period", config.HealthCheckPeriod.String(),
	)

	dbConfig, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	dbConfig.MaxConns = config.MaxConns
	dbConfig.MinConns = config.MinConns
	dbConfig.MaxConnLifetime = config.MaxConnLifetime
	dbConfig.MaxConnIdleTime = config.MaxConnIdleTime
	dbConfig.HealthCheckPeriod = config.HealthCheckPeriod
	if config.ConnectTimeout > 0 {
		dbConfig.ConnConfig.ConnectTimeout = config.ConnectTimeout
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		pool, err := connect(ctx, dbConfig, config.ConnectTimeout)
		if err == nil {
			logger.Info("database connection pool established",
				"attempt", attempt,
				"total_conns", pool.Stat().TotalConns(),
			)
			return pool, nil
		}

		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, config.MaxRetries, err)
		logger.Warn("database connection failed",
			"attempt", attempt,
			"max_retries", config.MaxRetries,
			"error", err,
		)

		if attempt == config.MaxRetries {
			break
		}

		delay := calculateBackoff(config.RetryDelay, attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("database connection cancelled: %w", ctx.Err())
		}
	}

	logger.Error("failed to establish database connection after all retries",
		"max_retries", config.MaxRetries,
		"error", lastErr,
	)
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", config.MaxRetries, lastErr)
}

func connect(ctx context.Context, cfg *pgxpool.Config, timeout time.Duration) (*pgxpool.Pool, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// calculateBackoff returns baseDelay * 2^(attempt-1), capped at 30 seconds.
func calculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	multiplier := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(baseDelay) * multiplier)

	if maxDelay := 30 * time.Second; delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// GracefulShutdown closes the pool, giving up after timeout.
func GracefulShutdown(pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	if pool == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("initiating graceful database shutdown", "timeout", timeout.String())

	done := make(chan struct{})
	go func() {
		pool.Close()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("database connection pool closed gracefully")
		return nil
	case <-time.After(timeout):
		logger.Warn("database shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
