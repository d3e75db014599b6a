package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"hr_portal/internal/app"
	"hr_portal/internal/config"
	"hr_portal/internal/server"
)

func main() {
	// Setup logger
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// Load configuration
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level.Set(cfg.App.LogLevel)
	slog.SetDefault(logger)

	portal, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to assemble portal: %v", err)
	}

	addr := ":" + cfg.Server.Port
	var srvCfg *server.Config
	switch {
	case cfg.IsProduction():
		srvCfg = server.ProductionConfig(addr)
	case cfg.IsDevelopment():
		srvCfg = server.DevelopmentConfig(addr)
	default:
		srvCfg = server.DefaultConfig(addr)
	}
	srvCfg.Logger = logger
	if cfg.TLS.Enabled {
		srvCfg.TLSCertFile = cfg.TLS.CertFile
		srvCfg.TLSKeyFile = cfg.TLS.KeyFile
	}

	logger.Info("Starting server", "address", cfg.GetServerAddress())

	if err := server.Start(portal.Handler(), srvCfg, portal.Resources()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
