// Package gateway orchestrates tool invocations: resolve the city, fetch the
// requested provider data, normalize the response. Resolution and transport
// failures are embedded in the returned summary text so the protocol layer
// always sees a successful call; only invalid parameters surface as errors.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MirkoGilioli/open-weather-mcp-server/internal/format"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/geocode"
	"github.com/MirkoGilioli/open-weather-mcp-server/pkg/client"
)

const (
	// DefaultSlots is the number of forecast entries rendered when the
	// caller does not ask for a specific count.
	DefaultSlots = 5
	// MaxSlots clips slot requests to the provider's maximum: the 5-day
	// forecast carries 40 three-hour entries.
	MaxSlots = 40
)

var validate = validator.New()

// WeatherParams are the arguments of the get_weather tool.
type WeatherParams struct {
	City string `validate:"required"`
}

// ForecastParams are the arguments of the get_forecast tool. Slots defaults
// to DefaultSlots and is clipped to MaxSlots.
type ForecastParams struct {
	City  string `validate:"required"`
	Slots int    `validate:"gte=0"`
}

// AirPollutionParams are the arguments of the get_air_pollution tool. Limit
// only applies when Forecast is true and defaults to DefaultSlots.
type AirPollutionParams struct {
	City     string `validate:"required"`
	Forecast bool
	Limit    int `validate:"gte=0"`
}

type Gateway struct {
	resolver *geocode.Resolver
	client   *client.OpenWeatherClient
	logger   *zap.Logger
}

func New(resolver *geocode.Resolver, owm *client.OpenWeatherClient, logger *zap.Logger) *Gateway {
	return &Gateway{
		resolver: resolver,
		client:   owm,
		logger:   logger,
	}
}

// CurrentWeather resolves the city and renders current conditions as a short
// summary. A city the provider cannot geocode yields the literal
// "Could not resolve city '<city>'" text without any weather fetch.
func (g *Gateway) CurrentWeather(ctx context.Context, p WeatherParams) (string, error) {
	if err := validate.Struct(p); err != nil {
		return "", fmt.Errorf("invalid weather params: %w", err)
	}

	coord, errText := g.resolve(ctx, p.City)
	if errText != "" {
		return errText, nil
	}

	weather, err := g.client.CurrentWeather(ctx, coord)
	if err != nil {
		return fetchFailure("Weather API", err), nil
	}

	return format.WeatherShort(weather), nil
}

// Forecast resolves the city and renders the first Slots forecast entries.
func (g *Gateway) Forecast(ctx context.Context, p ForecastParams) (string, error) {
	if err := validate.Struct(p); err != nil {
		return "", fmt.Errorf("invalid forecast params: %w", err)
	}
	slots := clampSlots(p.Slots)

	coord, errText := g.resolve(ctx, p.City)
	if errText != "" {
		return errText, nil
	}

	forecast, err := g.client.Forecast(ctx, coord)
	if err != nil {
		return fetchFailure("Forecast API", err), nil
	}

	return format.ForecastShort(forecast, slots), nil
}

// AirPollution resolves the city and renders either current air quality or,
// when p.Forecast is set, the first Limit forecast entries.
func (g *Gateway) AirPollution(ctx context.Context, p AirPollutionParams) (string, error) {
	if err := validate.Struct(p); err != nil {
		return "", fmt.Errorf("invalid air pollution params: %w", err)
	}
	limit := clampSlots(p.Limit)

	coord, errText := g.resolve(ctx, p.City)
	if errText != "" {
		return errText, nil
	}

	pollution, err := g.client.AirPollution(ctx, coord, p.Forecast)
	if err != nil {
		return fetchFailure("Air Pollution API", err), nil
	}

	if p.Forecast {
		return format.AirPollutionForecast(pollution, limit), nil
	}
	return format.AirPollutionCurrent(pollution), nil
}

// CurrentWeatherPayload fetches the undecoded current-weather payload for a
// known coordinate, bypassing resolution. Resource snapshots use it so the
// structured success path loses no provider fields.
func (g *Gateway) CurrentWeatherPayload(ctx context.Context, coord client.Coordinate) ([]byte, error) {
	return g.client.CurrentWeatherRaw(ctx, coord)
}

// ResolveCity exposes resolution for callers that need the coordinate itself,
// such as the snapshot refresher seeding its fixed cities.
func (g *Gateway) ResolveCity(ctx context.Context, city string) (client.Coordinate, error) {
	return g.resolver.Resolve(ctx, city)
}

// resolve maps a city to a coordinate, converting failures into the
// error-shaped result text returned to the caller.
func (g *Gateway) resolve(ctx context.Context, city string) (client.Coordinate, string) {
	coord, err := g.resolver.Resolve(ctx, city)
	if err == nil {
		return coord, ""
	}

	if errors.Is(err, geocode.ErrCityNotFound) {
		g.logger.Info("City not resolved", zap.String("city", city))
		return client.Coordinate{}, fmt.Sprintf("Could not resolve city '%s'", city)
	}

	g.logger.Warn("Geocoding failed", zap.String("city", city), zap.Error(err))
	return client.Coordinate{}, fetchFailure("Geocoding API", err)
}

// fetchFailure embeds the upstream status body when the failure was a non-2xx
// response, and the transport error text otherwise.
func fetchFailure(api string, err error) string {
	var statusErr *client.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("%s failed: %s", api, statusErr.Body)
	}
	return fmt.Sprintf("%s failed: %v", api, err)
}

func clampSlots(n int) int {
	if n == 0 {
		return DefaultSlots
	}
	if n > MaxSlots {
		return MaxSlots
	}
	return n
}
