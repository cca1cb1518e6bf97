package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/MirkoGilioli/open-weather-mcp-server/internal/api"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/config"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/gateway"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/geocode"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/mcpapi"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/scheduler"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/snapshot"
	"github.com/MirkoGilioli/open-weather-mcp-server/pkg/client"
)

func main() {
	// Logs go to stderr, which keeps stdout clean for the stdio transport.
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting OpenWeather MCP server")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if level, parseErr := zapcore.ParseLevel(cfg.Server.LogLevel); parseErr == nil && level != zapcore.InfoLevel {
		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		if leveled, buildErr := zapCfg.Build(); buildErr == nil {
			logger = leveled
			zap.ReplaceGlobals(logger)
		}
	}

	owm := client.NewOpenWeatherClient(cfg.OpenWeather.APIKey, cfg.OpenWeather.BaseURL, client.ClientConfig{
		Timeout:        cfg.OpenWeather.Timeout,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}, logger)

	resolver := geocode.NewResolver(owm, geocode.NewCache(), logger)
	gw := gateway.New(resolver, owm, logger)

	snapshots := snapshot.NewStore(logger)
	refresher := scheduler.NewRefresher(gw, snapshots, cfg.Snapshot.Cities, cfg.Snapshot.RefreshInterval, logger)
	if err := refresher.Start(); err != nil {
		logger.Fatal("Failed to start snapshot refresher", zap.Error(err))
	}
	defer refresher.Stop()

	mcpServer := mcpapi.NewServer(gw, snapshots, cfg.Snapshot.Cities, logger).Build()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cfg.Server.Transport {
	case config.TransportStdio:
		runStdio(ctx, mcpServer, logger)
	case config.TransportHTTP:
		runHTTP(ctx, mcpServer, snapshots, cfg, logger)
	}
}

func runStdio(ctx context.Context, mcpServer *mcp.Server, logger *zap.Logger) {
	logger.Info("MCP server listening", zap.String("transport", config.TransportStdio))

	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Fatal("MCP server failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func runHTTP(ctx context.Context, mcpServer *mcp.Server, snapshots *snapshot.Store, cfg *config.Config, logger *zap.Logger) {
	app := api.NewApp(mcpServer, snapshots, api.ServerConfig{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("MCP server listening",
			zap.String("transport", config.TransportHTTP),
			zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
