// Package mcpapi exposes the weather gateway as MCP tools and resources
// using the official Go SDK. Handlers return domain failures as ordinary
// text results; the protocol layer only sees errors for invalid arguments.
package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/MirkoGilioli/open-weather-mcp-server/internal/gateway"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/snapshot"
)

const (
	serverName    = "openweather-mcp"
	serverVersion = "0.3.0"
)

type weatherInput struct {
	City string `json:"city" jsonschema:"The name of the city, e.g. London or Tokyo"`
}

type forecastInput struct {
	City  string `json:"city" jsonschema:"The name of the city, e.g. London or Tokyo"`
	Slots int    `json:"slots,omitempty" jsonschema:"Number of 3-hour forecast slots to return. Defaults to 5, capped at 40."`
}

type airPollutionInput struct {
	City     string `json:"city" jsonschema:"The name of the city, e.g. London or Tokyo"`
	Forecast bool   `json:"forecast,omitempty" jsonschema:"If true, fetch the air pollution forecast instead of current data."`
	Limit    int    `json:"limit,omitempty" jsonschema:"Number of forecast entries to return when forecast is true. Defaults to 5."`
}

type Server struct {
	gateway   *gateway.Gateway
	snapshots *snapshot.Store
	cities    []string
	logger    *zap.Logger
}

func NewServer(gw *gateway.Gateway, snapshots *snapshot.Store, cities []string, logger *zap.Logger) *Server {
	return &Server{
		gateway:   gw,
		snapshots: snapshots,
		cities:    cities,
		logger:    logger,
	}
}

// Build assembles the MCP server with all tools and resources registered.
func (s *Server) Build() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_weather",
		Description: "Fetch current weather for a city using OpenWeather (via geocoding).",
	}, s.getWeather)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_forecast",
		Description: "Fetch the 5-day weather forecast for a city in 3-hour intervals.",
	}, s.getForecast)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_air_pollution",
		Description: "Fetch current or forecast air pollution data for a city.",
	}, s.getAirPollution)

	for _, city := range s.cities {
		s.addSnapshotResource(server, city)
	}

	return server
}

func (s *Server) getWeather(ctx context.Context, req *mcp.CallToolRequest, input weatherInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Tool called", zap.String("tool", "get_weather"), zap.String("city", input.City))

	summary, err := s.gateway.CurrentWeather(ctx, gateway.WeatherParams{City: input.City})
	if err != nil {
		return nil, nil, err
	}
	return textResult(summary), nil, nil
}

func (s *Server) getForecast(ctx context.Context, req *mcp.CallToolRequest, input forecastInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Tool called",
		zap.String("tool", "get_forecast"),
		zap.String("city", input.City),
		zap.Int("slots", input.Slots))

	summary, err := s.gateway.Forecast(ctx, gateway.ForecastParams{City: input.City, Slots: input.Slots})
	if err != nil {
		return nil, nil, err
	}
	return textResult(summary), nil, nil
}

func (s *Server) getAirPollution(ctx context.Context, req *mcp.CallToolRequest, input airPollutionInput) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Tool called",
		zap.String("tool", "get_air_pollution"),
		zap.String("city", input.City),
		zap.Bool("forecast", input.Forecast),
		zap.Int("limit", input.Limit))

	summary, err := s.gateway.AirPollution(ctx, gateway.AirPollutionParams{
		City:     input.City,
		Forecast: input.Forecast,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, nil, err
	}
	return textResult(summary), nil, nil
}

// addSnapshotResource registers weather://<city>/current serving the stored
// raw provider payload. Reads never resolve the city name; the refresher
// seeds coordinates once and keeps payloads warm.
func (s *Server) addSnapshotResource(server *mcp.Server, city string) {
	uri := SnapshotURI(city)

	server.AddResource(&mcp.Resource{
		URI:         uri,
		Name:        fmt.Sprintf("%s current weather", city),
		Description: fmt.Sprintf("Latest raw OpenWeather current-weather payload for %s.", city),
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return s.readSnapshot(ctx, uri, city)
	})
}

func (s *Server) readSnapshot(ctx context.Context, uri, city string) (*mcp.ReadResourceResult, error) {
	entry, ok := s.snapshots.Get(city)
	if !ok {
		// No snapshot yet; fall back to a direct fetch.
		payload, err := s.fetchSnapshot(ctx, city)
		if err != nil {
			s.logger.Warn("Resource read failed",
				zap.String("uri", uri),
				zap.Error(err))
			return snapshotResult(uri, errorPayload(err)), nil
		}
		s.snapshots.Set(city, payload)
		return snapshotResult(uri, payload), nil
	}

	return snapshotResult(uri, entry.Payload), nil
}

func (s *Server) fetchSnapshot(ctx context.Context, city string) ([]byte, error) {
	coord, err := s.gateway.ResolveCity(ctx, city)
	if err != nil {
		return nil, err
	}
	return s.gateway.CurrentWeatherPayload(ctx, coord)
}

// SnapshotURI returns the resource identifier for a snapshot city.
func SnapshotURI(city string) string {
	slug := strings.ToLower(strings.ReplaceAll(city, " ", "-"))
	return "weather://" + slug + "/current"
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func snapshotResult(uri string, payload []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(payload),
		}},
	}
}

// errorPayload is the structured-mode failure shape: the payload is replaced
// by an object whose only field is the error text.
func errorPayload(err error) []byte {
	data, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return []byte(`{"error":"snapshot unavailable"}`)
	}
	return data
}
