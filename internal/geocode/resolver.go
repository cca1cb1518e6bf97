package geocode

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/MirkoGilioli/open-weather-mcp-server/pkg/client"
)

// ErrCityNotFound means the provider returned zero geocoding matches.
// It is never cached, so an identical later query retries the provider.
var ErrCityNotFound = errors.New("city not found")

// GeocodeClient is the provider-side contract the resolver needs.
type GeocodeClient interface {
	Geocode(ctx context.Context, query string, limit int) ([]client.GeocodeResult, error)
}

// Resolver maps city names to coordinates via the OpenWeather Geocoding API,
// consulting the shared cache first. The cache is injected rather than held
// as a package singleton.
type Resolver struct {
	client GeocodeClient
	cache  *Cache
	logger *zap.Logger
}

func NewResolver(geocoder GeocodeClient, cache *Cache, logger *zap.Logger) *Resolver {
	return &Resolver{
		client: geocoder,
		cache:  cache,
		logger: logger,
	}
}

// Resolve returns the coordinate for a city name. Cache hits answer without
// a provider call. On a miss, the top-ranked match (limit=1) is cached and
// returned; zero matches yield ErrCityNotFound and transport failures
// propagate as-is. Neither failure populates the cache.
func (r *Resolver) Resolve(ctx context.Context, city string) (client.Coordinate, error) {
	if coord, ok := r.cache.Get(city); ok {
		r.logger.Debug("Geocode cache hit", zap.String("city", city))
		return coord, nil
	}

	r.logger.Debug("Geocode cache miss", zap.String("city", city))

	results, err := r.client.Geocode(ctx, city, 1)
	if err != nil {
		return client.Coordinate{}, err
	}
	if len(results) == 0 {
		return client.Coordinate{}, ErrCityNotFound
	}

	coord := client.Coordinate{Lat: results[0].Lat, Lon: results[0].Lon}
	coord = r.cache.Put(city, coord)

	r.logger.Debug("Geocode resolved",
		zap.String("city", city),
		zap.Float64("lat", coord.Lat),
		zap.Float64("lon", coord.Lon))

	return coord, nil
}
