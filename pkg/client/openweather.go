package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const DefaultBaseURL = "https://api.openweathermap.org"

const (
	geocodingPath            = "/geo/1.0/direct"
	currentWeatherPath       = "/data/2.5/weather"
	forecastPath             = "/data/2.5/forecast"
	airPollutionCurrentPath  = "/data/2.5/air_pollution"
	airPollutionForecastPath = "/data/2.5/air_pollution/forecast"
)

// Coordinate is an immutable latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeocodeResult is a single match from the OpenWeather Geocoding API,
// ordered by provider-assigned rank.
type GeocodeResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
}

// CurrentWeatherResponse covers the fields of /data/2.5/weather needed for
// formatting. Optional numeric fields are pointers so absence is detectable.
type CurrentWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  float64  `json:"humidity"`
		Pressure  float64  `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Dt int64 `json:"dt"`
}

type ForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	DtTxt string `json:"dt_txt"`
}

// ForecastResponse covers /data/2.5/forecast. The provider returns entries in
// chronological order; no re-sorting happens anywhere downstream.
type ForecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []ForecastEntry `json:"list"`
}

type AirPollutionEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		AQI *int `json:"aqi"`
	} `json:"main"`
	// Components keeps the raw pollutant map so absent pollutants stay absent.
	Components map[string]float64 `json:"components"`
}

// AirPollutionResponse covers both /data/2.5/air_pollution and its
// /forecast variant; the shapes are identical.
type AirPollutionResponse struct {
	List []AirPollutionEntry `json:"list"`
}

// OpenWeatherClient issues parameterized requests to the OpenWeather
// geocoding, weather, forecast, and air-pollution endpoints.
type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

func NewOpenWeatherClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseClient := NewBaseClient("openweather", config, logger)
	return &OpenWeatherClient{
		BaseClient: baseClient,
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

// Geocode looks up coordinates for a free-form place name. The provider
// returns at most limit matches, best first.
func (c *OpenWeatherClient) Geocode(ctx context.Context, query string, limit int) ([]GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("appid", c.apiKey)

	data, err := c.Get(ctx, c.baseURL+geocodingPath+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch geocoding data: %w", err)
	}

	var results []GeocodeResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}
	return results, nil
}

// CurrentWeather fetches and decodes the current conditions at a coordinate.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, coord Coordinate) (*CurrentWeatherResponse, error) {
	data, err := c.CurrentWeatherRaw(ctx, coord)
	if err != nil {
		return nil, err
	}

	var response CurrentWeatherResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse weather response: %w", err)
	}
	return &response, nil
}

// CurrentWeatherRaw returns the undecoded current-weather payload. Resource
// reads serve this verbatim so no provider fields are lost.
func (c *OpenWeatherClient) CurrentWeatherRaw(ctx context.Context, coord Coordinate) ([]byte, error) {
	data, err := c.Get(ctx, c.dataURL(currentWeatherPath, coord, true))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current weather: %w", err)
	}
	return data, nil
}

// Forecast fetches the 5-day/3-hour forecast at a coordinate.
func (c *OpenWeatherClient) Forecast(ctx context.Context, coord Coordinate) (*ForecastResponse, error) {
	data, err := c.Get(ctx, c.dataURL(forecastPath, coord, true))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	var response ForecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}
	return &response, nil
}

// AirPollution fetches current air quality at a coordinate, or the air
// quality forecast when forecast is true.
func (c *OpenWeatherClient) AirPollution(ctx context.Context, coord Coordinate, forecast bool) (*AirPollutionResponse, error) {
	path := airPollutionCurrentPath
	if forecast {
		path = airPollutionForecastPath
	}

	// Air pollution endpoints take no units parameter.
	data, err := c.Get(ctx, c.dataURL(path, coord, false))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch air pollution data: %w", err)
	}

	var response AirPollutionResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse air pollution response: %w", err)
	}
	return &response, nil
}

func (c *OpenWeatherClient) dataURL(path string, coord Coordinate, metric bool) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	if metric {
		params.Set("units", "metric")
	}
	return c.baseURL + path + "?" + params.Encode()
}
