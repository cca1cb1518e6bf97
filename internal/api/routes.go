// Package api hosts the streamable-http MCP transport behind a Fiber app,
// alongside a health endpoint for orchestration probes.
package api

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/MirkoGilioli/open-weather-mcp-server/internal/snapshot"
)

var startTime = time.Now()

type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the Fiber app serving /mcp and /health.
func NewApp(mcpServer *mcp.Server, snapshots *snapshot.Store, cfg ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "open-weather-mcp-server",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	// Browser-based MCP clients (e.g. the inspector) need the session header
	// exposed through CORS.
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,DELETE,OPTIONS",
		AllowHeaders:  "Content-Type,Authorization,Mcp-Session-Id,Mcp-Protocol-Version",
		ExposeHeaders: "Mcp-Session-Id,Content-Type,Cache-Control",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	streamable := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return mcpServer
	}, nil)
	app.All("/mcp", adaptor.HTTPHandler(streamable))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":       "healthy",
			"server":       "open-weather-mcp-server",
			"mcp_endpoint": "/mcp",
			"uptime":       time.Since(startTime).String(),
			"snapshots":    snapshots.Stats(),
		})
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	zap.L().Error("HTTP error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   err.Error(),
		"success": false,
	})
}
