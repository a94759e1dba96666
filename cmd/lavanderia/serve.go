// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lavanderia/internal/cache"
	"lavanderia/internal/database"
	"lavanderia/internal/handlers"
	"lavanderia/internal/middleware"
	"lavanderia/internal/router"
	"lavanderia/internal/store"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Seed development data (no-op if the catalog is not empty).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	opts := router.Options{CORSOrigins: cfg.CORSOrigins, TrustProxy: cfg.TrustProxy}

	if cfg.ValkeyEnabled() {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Idempotency = cache.NewIdempotencyStore(client, cache.DefaultIdempotencyTTL)
	} else {
		slog.Warn("valkey not configured, Idempotency-Key is ignored")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()
	opts.RateLimiter = limiter

	counters := store.NewCounterStore(db)
	if err := checkCounters(ctx, counters); err != nil {
		return err
	}
	api := handlers.New(
		store.NewArticleStore(db, counters),
		store.NewClientStore(db),
		store.NewOrderStore(db, counters),
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(api, opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}
