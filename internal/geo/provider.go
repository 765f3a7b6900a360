// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

package geo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/hmassawe/karatasi/internal/models"
)

// Provider resolves one IP address to a location. Implementations must be
// safe for concurrent use.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (*models.Geolocation, error)
}

// ipapiProvider queries ipapi.co, the primary provider.
type ipapiProvider struct {
	client  *http.Client
	baseURL string
}

// NewIPAPICoProvider returns the ipapi.co provider. baseURL overrides the
// production endpoint; pass "" outside tests.
func NewIPAPICoProvider(timeout time.Duration, baseURL string) Provider {
	if baseURL == "" {
		baseURL = "https://ipapi.co"
	}
	return &ipapiProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (p *ipapiProvider) Name() string { return "ipapi.co" }

func (p *ipapiProvider) Lookup(ctx context.Context, ip string) (*models.Geolocation, error) {
	url := fmt.Sprintf("%s/%s/json/", p.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ipapi.co request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipapi.co request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipapi.co returned status %d", resp.StatusCode)
	}

	var body struct {
		CountryName string  `json:"country_name"`
		Region      string  `json:"region"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Error       bool    `json:"error"`
		Reason      string  `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode ipapi.co response: %w", err)
	}
	if body.Error {
		return nil, fmt.Errorf("ipapi.co error: %s", body.Reason)
	}
	if body.CountryName == "" {
		return nil, fmt.Errorf("ipapi.co returned no country for %s", ip)
	}

	return &models.Geolocation{
		Country:   body.CountryName,
		Region:    body.Region,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Source:    p.Name(),
		Resolved:  time.Now().UTC(),
	}, nil
}

// ipAPIComProvider queries ip-api.com, the secondary provider. The free tier
// allows 45 requests per minute; the limiter rejects rather than queues so a
// burst of lookups degrades to the next fallback instead of piling up.
type ipAPIComProvider struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewIPAPIComProvider returns the ip-api.com provider.
func NewIPAPIComProvider(timeout time.Duration, baseURL string) Provider {
	if baseURL == "" {
		baseURL = "http://ip-api.com"
	}
	return &ipAPIComProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(time.Minute/45), 45),
	}
}

func (p *ipAPIComProvider) Name() string { return "ip-api.com" }

func (p *ipAPIComProvider) Lookup(ctx context.Context, ip string) (*models.Geolocation, error) {
	if !p.limiter.Allow() {
		return nil, fmt.Errorf("ip-api.com rate limit exhausted")
	}

	url := fmt.Sprintf("%s/json/%s?fields=status,message,country,regionName,lat,lon", p.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ip-api.com request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ip-api.com request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api.com returned status %d", resp.StatusCode)
	}

	var body struct {
		Status     string  `json:"status"`
		Message    string  `json:"message"`
		Country    string  `json:"country"`
		RegionName string  `json:"regionName"`
		Lat        float64 `json:"lat"`
		Lon        float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode ip-api.com response: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("ip-api.com lookup failed: %s", body.Message)
	}

	return &models.Geolocation{
		Country:   body.Country,
		Region:    body.RegionName,
		Latitude:  body.Lat,
		Longitude: body.Lon,
		Source:    p.Name(),
		Resolved:  time.Now().UTC(),
	}, nil
}
