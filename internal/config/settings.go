package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hr_portal/internal/navigation"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	TLS       TLSConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Rendering RenderingConfig
	Shell     ShellConfig
	Session   SessionConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Version     string
	Environment string // development, staging, production
	LogLevel    slog.Level
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port     string
	Protocol string // http or https
	Domain   string
}

// TLSConfig holds TLS/HTTPS certificate settings
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// portal against the in-memory employee directory.
type DatabaseConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	HealthCheckPeriod time.Duration
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	ConnectTimeout    time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
}

// RedisConfig holds the client storage backend. An empty Addr keeps client
// state in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RenderingConfig holds static file settings
type RenderingConfig struct {
	StaticDir string
}

// ShellConfig holds navigation shell settings
type ShellConfig struct {
	MatchPolicy navigation.MatchPolicy
	IdleTTL     time.Duration
	BrandName   string
}

// SessionConfig holds client profile and token settings
type SessionConfig struct {
	ProfileCookieName string
	CookieSecure      bool
	TokenTTL          time.Duration // 0 keeps the token until logout
}

// LoadConfig loads configuration from environment variables
func LoadConfig(logger *slog.Logger) (*Config, error) {
	// Load .env file (ignore error if it doesn't exist)
	godotenv.Load()

	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("loading application configuration")

	config := &Config{}

	if err := loadAppConfig(&config.App, logger); err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	if err := loadServerConfig(&config.Server, logger); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	loadTLSConfig(&config.TLS, logger)
	loadDatabaseConfig(&config.Database, logger)
	loadRedisConfig(&config.Redis, logger)
	loadRenderingConfig(&config.Rendering, logger)

	if err := loadShellConfig(&config.Shell, logger); err != nil {
		return nil, fmt.Errorf("failed to load shell config: %w", err)
	}

	if err := loadSessionConfig(&config.Session, config.IsProduction(), logger); err != nil {
		return nil, fmt.Errorf("failed to load session config: %w", err)
	}

	logger.Info("configuration loaded successfully",
		"environment", config.App.Environment,
		"version", config.App.Version,
		"port", config.Server.Port,
	)

	return config, nil
}

func loadAppConfig(cfg *AppConfig, logger *slog.Logger) error {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "1.0.0"
		logger.Warn("VERSION not set, using default", "default", version)
	}
	cfg.Version = version

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
		logger.Warn("ENV not set, using default", "default", env)
	}
	cfg.Environment = env

	level, err := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return err
	}
	cfg.LogLevel = level

	return nil
}

func loadServerConfig(cfg *ServerConfig, logger *slog.Logger) error {
	port := os.Getenv("PORT")
	if port == "" {
		return fmt.Errorf("PORT environment variable is required")
	}
	cfg.Port = port

	protocol := os.Getenv("PROTOCOL")
	if protocol == "" {
		protocol = "http"
		logger.Warn("PROTOCOL not set, using default", "default", protocol)
	}
	cfg.Protocol = protocol

	domain := os.Getenv("DOMAIN")
	if domain == "" {
		domain = "localhost"
		logger.Warn("DOMAIN not set, using default", "default", domain)
	}
	cfg.Domain = domain

	return nil
}

func loadTLSConfig(cfg *TLSConfig, logger *slog.Logger) {
	certFile := os.Getenv("TLS_CERT_FILE")
	keyFile := os.Getenv("TLS_KEY_FILE")

	cfg.CertFile = certFile
	cfg.KeyFile = keyFile
	cfg.Enabled = certFile != "" && keyFile != ""

	if cfg.Enabled {
		logger.Info("TLS enabled", "cert_file", certFile, "key_file", keyFile)
	}
}

func loadDatabaseConfig(cfg *DatabaseConfig, logger *slog.Logger) {
	cfg.URL = os.Getenv("DB_URL")
	if cfg.URL == "" {
		logger.Warn("DB_URL not set, using in-memory employee directory")
	}

	cfg.MaxConns = getEnvAsInt32("DB_MAX_CONNS", 10)
	cfg.MinConns = getEnvAsInt32("DB_MIN_CONNS", 2)

	healthCheckSec := getEnvAsInt32("DB_HEALTH_CHECK_PERIOD_SECONDS", 60)
	cfg.HealthCheckPeriod = time.Duration(healthCheckSec) * time.Second

	maxLifetimeMin := getEnvAsInt32("DB_MAX_CONN_LIFETIME_MINUTES", 0)
	cfg.MaxConnLifetime = time.Duration(maxLifetimeMin) * time.Minute

	maxIdleMin := getEnvAsInt32("DB_MAX_CONN_IDLE_TIME_MINUTES", 0)
	cfg.MaxConnIdleTime = time.Duration(maxIdleMin) * time.Minute

	cfg.ConnectTimeout = 10 * time.Second
	cfg.MaxRetries = 3
	cfg.RetryDelay = 1 * time.Second

	logger.Debug("database config loaded",
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	)
}

func loadRedisConfig(cfg *RedisConfig, logger *slog.Logger) {
	cfg.Addr = os.Getenv("REDIS_ADDR")
	cfg.Password = os.Getenv("REDIS_PASSWORD")
	cfg.DB = getEnvAsInt("REDIS_DB", 0)

	if cfg.Addr != "" {
		logger.Debug("Redis config loaded", "addr", cfg.Addr, "db", cfg.DB)
	} else {
		logger.Warn("REDIS_ADDR not set, client state is kept in memory")
	}
}

func loadRenderingConfig(cfg *RenderingConfig, logger *slog.Logger) {
	cfg.StaticDir = os.Getenv("STATIC_DIR")
	if cfg.StaticDir == "" {
		cfg.StaticDir = "web/static"
		logger.Warn("STATIC_DIR not set, using default", "default", cfg.StaticDir)
	}
}

func loadShellConfig(cfg *ShellConfig, logger *slog.Logger) error {
	policy, err := navigation.ParseMatchPolicy(os.Getenv("NAV_MATCH"))
	if err != nil {
		return fmt.Errorf("NAV_MATCH: %w", err)
	}
	cfg.MatchPolicy = policy

	idle, err := getEnvAsDuration("SHELL_IDLE_TTL", 30*time.Minute)
	if err != nil {
		return err
	}
	if idle <= 0 {
		return fmt.Errorf("SHELL_IDLE_TTL must be positive, got %s", idle)
	}
	cfg.IdleTTL = idle

	cfg.BrandName = os.Getenv("BRAND_NAME")
	if cfg.BrandName == "" {
		cfg.BrandName = "HR Portal"
	}

	logger.Debug("shell config loaded", "match_policy", cfg.MatchPolicy, "idle_ttl", cfg.IdleTTL)
	return nil
}

func loadSessionConfig(cfg *SessionConfig, production bool, logger *slog.Logger) error {
	cfg.ProfileCookieName = os.Getenv("PROFILE_COOKIE_NAME")
	if cfg.ProfileCookieName == "" {
		cfg.ProfileCookieName = "portal_profile"
	}

	cfg.CookieSecure = getEnvAsBool("COOKIE_SECURE", production)
	if production && !cfg.CookieSecure {
		logger.Warn("COOKIE_SECURE disabled in production")
	}

	ttl, err := getEnvAsDuration("TOKEN_TTL", 0)
	if err != nil {
		return err
	}
	if ttl < 0 {
		return fmt.Errorf("TOKEN_TTL must not be negative, got %s", ttl)
	}
	cfg.TokenTTL = ttl

	return nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Helper functions

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvAsInt32(key string, defaultVal int32) int32 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return int32(parsed)
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetServerAddress returns the full server address (protocol://domain:port)
func (c *Config) GetServerAddress() string {
	if c.Server.Protocol == "https" && c.Server.Port == "443" {
		return fmt.Sprintf("https://%s", c.Server.Domain)
	}
	if c.Server.Protocol == "http" && c.Server.Port == "80" {
		return fmt.Sprintf("http://%s", c.Server.Domain)
	}
	return fmt.Sprintf("%s://%s:%s", c.Server.Protocol, c.Server.Domain, c.Server.Port)
}
