// Karatasi - Library Archive with Real-time Global Access Analytics
// Copyright 2026 H. Massawe (hmassawe)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/hmassawe/karatasi

// Package main is the entry point for the Karatasi server.
//
// Karatasi is a self-hosted digital library archive with real-time access
// analytics. It serves a searchable document catalog, records every access
// as an immutable event, geolocates visitors, aggregates the event log into
// dashboard analytics, and pushes live activity to connected dashboards over
// a websocket channel.
//
// The server initializes components in this order:
//
//  1. Configuration: Koanf v2 with layered sources (env > file > defaults)
//  2. Database: DuckDB catalog and event log, optionally seeded
//  3. Geolocation: provider chain with BadgerDB cache and circuit breakers
//  4. Event bus: in-process Watermill channel feeding the live hub
//  5. HTTP surface: chi router with the API, live channel, and static files
//  6. Supervisor: suture tree running the hub, forwarder, and HTTP server
//
// Shutdown on SIGINT/SIGTERM is graceful: the HTTP server drains in-flight
// requests, the hub closes every live client, and the database checkpoints
// before closing.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hmassawe/karatasi/internal/api"
	"github.com/hmassawe/karatasi/internal/archive"
	"github.com/hmassawe/karatasi/internal/auth"
	"github.com/hmassawe/karatasi/internal/blob"
	"github.com/hmassawe/karatasi/internal/config"
	"github.com/hmassawe/karatasi/internal/database"
	"github.com/hmassawe/karatasi/internal/events"
	"github.com/hmassawe/karatasi/internal/geo"
	"github.com/hmassawe/karatasi/internal/logging"
	"github.com/hmassawe/karatasi/internal/supervisor"
	"github.com/hmassawe/karatasi/internal/supervisor/services"
	"github.com/hmassawe/karatasi/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("geolocation", cfg.Geolocation.Enabled).
		Msg("Starting Karatasi")

	if cfg.Security.AuthMode == "none" && !cfg.IsDevelopment() {
		logging.Warn().Msg("Authentication disabled outside development")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	resolver, err := geo.NewResolver(&cfg.Geolocation)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize geolocation resolver")
	}
	defer func() {
		if err := resolver.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing geolocation resolver")
		}
	}()

	bus := events.NewBus(events.NewLoggerAdapter())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	blobs, err := blob.NewStore(&cfg.Uploads)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize upload store")
	}

	adminOnly, err := auth.Middleware(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure authentication")
	}

	hub := websocket.NewHub()
	svc := archive.NewService(db, bus, resolver)
	forwarder := events.NewForwarder(bus, hub)

	handler := api.NewHandler(cfg, svc, db, resolver, hub, blobs)
	router := api.NewRouter(handler, adminOnly)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(forwarder)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Karatasi stopped gracefully")
}
