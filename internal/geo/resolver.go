// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package geo

import (
	"context"
	"net"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/hmassawe/karatasi/internal/config"
	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/metrics"
	"github.com/hmassawe/karatasi/internal/models"
)

// Resolver is the cache-then-providers-then-default resolution chain.
type Resolver struct {
	cfg       *config.GeolocationConfig
	cache     *Cache
	providers []*breakerProvider
}

// breakerProvider wraps a Provider with a circuit breaker so a dead
// upstream is skipped instead of probed on every lookup.
type breakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker[*models.Geolocation]
}

func wrapProvider(p Provider) *breakerProvider {
	cb := gobreaker.NewCircuitBreaker[*models.Geolocation](gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("geolocation provider circuit state changed")
		},
	})
	return &breakerProvider{provider: p, cb: cb}
}

func (bp *breakerProvider) lookup(ctx context.Context, ip string) (*models.Geolocation, error) {
	return bp.cb.Execute(func() (*models.Geolocation, error) {
		return bp.provider.Lookup(ctx, ip)
	})
}

// NewResolver builds the resolution chain. With no explicit providers the
// production chain (ipapi.co then ip-api.com) is used.
func NewResolver(cfg *config.GeolocationConfig, providers ...Provider) (*Resolver, error) {
	cache, err := NewCache(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	if len(providers) == 0 {
		providers = []Provider{
			NewIPAPICoProvider(cfg.LookupTimeout, ""),
			NewIPAPIComProvider(cfg.LookupTimeout, ""),
		}
	}

	wrapped := make([]*breakerProvider, 0, len(providers))
	for _, p := range providers {
		wrapped = append(wrapped, wrapProvider(p))
	}

	return &Resolver{cfg: cfg, cache: cache, providers: wrapped}, nil
}

// Resolve maps an IP address to a location. It never fails: unresolvable,
// private, or erroring inputs all yield the configured default location.
func (r *Resolver) Resolve(ctx context.Context, ip string) models.Geolocation {
	start := time.Now()

	if !r.cfg.Enabled {
		return r.defaultLocation()
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		metrics.RecordGeoLookup("default", start)
		return r.defaultLocation()
	}

	if loc, ok := r.cache.Get(ip); ok {
		metrics.RecordGeoLookup("cache", start)
		return *loc
	}

	for _, bp := range r.providers {
		loc, err := bp.lookup(ctx, ip)
		if err != nil {
			logging.Debug().
				Err(err).
				Str("provider", bp.provider.Name()).
				Msg("geolocation lookup failed, trying next")
			continue
		}
		r.cache.Put(ip, loc)
		metrics.RecordGeoLookup(loc.Source, start)
		return *loc
	}

	logging.Debug().Str("ip_prefix", truncateIP(ip)).Msg("all geolocation providers failed, using default")
	metrics.RecordGeoLookup("default", start)
	return r.defaultLocation()
}

// Close releases the cache.
func (r *Resolver) Close() error {
	return r.cache.Close()
}

func (r *Resolver) defaultLocation() models.Geolocation {
	return models.Geolocation{
		Country:   r.cfg.DefaultCountry,
		Region:    r.cfg.DefaultRegion,
		Latitude:  r.cfg.DefaultLatitude,
		Longitude: r.cfg.DefaultLongitude,
		Source:    "default",
		Resolved:  time.Now().UTC(),
	}
}

// truncateIP keeps only the leading octets so full addresses never reach
// the logs.
func truncateIP(ip string) string {
	if len(ip) > 7 {
		return ip[:7] + "..."
	}
	return ip
}
