// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/config"
	"github.com/courtsidehq/courtbook/internal/db"
	"github.com/courtsidehq/courtbook/internal/discount"
	"github.com/courtsidehq/courtbook/internal/scheduler"
	"github.com/courtsidehq/courtbook/internal/tenant"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	clock := booking.SystemClock{}
	resolver := tenant.NewResolver(database, cfg.Booking.DefaultFacilitySlug)
	availabilitySvc := booking.NewAvailabilityService(resolver, database, log.Logger)
	admissionSvc := booking.NewAdmissionService(resolver, database, clock, log.Logger)
	evaluator := discount.NewEvaluator(database, clock)

	// A misconfigured default tenant should fail at startup, not per request.
	if cfg.Booking.DefaultFacilitySlug != "" {
		if _, err := resolver.ResolveDefault(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Default facility misconfigured")
		}
	}

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	if err := scheduler.RegisterExpirySweep(database, clock, cfg.PendingTTL(), cfg.Booking.ExpirySweepCron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register expiry sweep")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}()

	server := newServer(cfg, serverDeps{
		availability: availabilitySvc,
		admission:    admissionSvc,
		resolver:     resolver,
		evaluator:    evaluator,
		store:        database,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
