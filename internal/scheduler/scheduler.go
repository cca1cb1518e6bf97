// Package scheduler refreshes the resource snapshots on a fixed interval so
// resource reads stay cheap and idempotent.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/MirkoGilioli/open-weather-mcp-server/internal/gateway"
	"github.com/MirkoGilioli/open-weather-mcp-server/internal/snapshot"
)

const refreshTimeout = 60 * time.Second

type Refresher struct {
	gateway  *gateway.Gateway
	store    *snapshot.Store
	cities   []string
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewRefresher(gw *gateway.Gateway, store *snapshot.Store, cities []string, interval time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		gateway:  gw,
		store:    store,
		cities:   cities,
		interval: interval,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start runs one immediate refresh and then schedules periodic ones.
func (r *Refresher) Start() error {
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, r.RefreshAll); err != nil {
		return fmt.Errorf("scheduling snapshot refresh: %w", err)
	}

	r.logger.Info("Snapshot refresher started",
		zap.Strings("cities", r.cities),
		zap.Duration("interval", r.interval))

	go r.RefreshAll()
	r.cron.Start()
	return nil
}

func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("Snapshot refresher stopped")
}

// RefreshAll fetches a fresh payload for every configured city. Failures are
// logged and skipped; a stale snapshot beats an overwritten-with-nothing one.
func (r *Refresher) RefreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	refreshed := 0

	for _, city := range r.cities {
		if err := r.refreshCity(ctx, city); err != nil {
			r.logger.Warn("Snapshot refresh failed",
				zap.String("city", city),
				zap.Error(err))
			continue
		}
		refreshed++
	}

	r.logger.Info("Snapshot refresh completed",
		zap.Int("cities", len(r.cities)),
		zap.Int("refreshed", refreshed),
		zap.Duration("duration", time.Since(start)))
}

func (r *Refresher) refreshCity(ctx context.Context, city string) error {
	coord, err := r.gateway.ResolveCity(ctx, city)
	if err != nil {
		return err
	}

	payload, err := r.gateway.CurrentWeatherPayload(ctx, coord)
	if err != nil {
		return err
	}

	r.store.Set(city, payload)
	return nil
}
