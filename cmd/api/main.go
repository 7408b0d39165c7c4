// @title       SMSHub Activation API
// @version     1.0
// @description Orders numbers from SMSHub and tracks their activations.
// @BasePath    /
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

	"github.com/oggyb/smshub/internal/cache/redis"
	"github.com/oggyb/smshub/internal/config"
	"github.com/oggyb/smshub/internal/db/gormdb"
	"github.com/oggyb/smshub/internal/handler"
	"github.com/oggyb/smshub/internal/logger"
	activationgorm "github.com/oggyb/smshub/internal/repository/gorm/activation"
	routes "github.com/oggyb/smshub/internal/router"
	"github.com/oggyb/smshub/internal/scheduler"
	"github.com/oggyb/smshub/internal/server"
	"github.com/oggyb/smshub/internal/service"
	"github.com/oggyb/smshub/internal/transport"
)

func main() {
	rootCtx := context.Background()

	cfg := config.New()
	log := logger.New(cfg.IsDevelopment(), cfg.App.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Cache
	cache := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cache.Ping(rootCtx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
	}
	defer cache.Close()

	// DB
	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect db")
	}
	defer db.Close()

	// Provider
	provider, err := transport.NewProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build smshub client")
	}
	log.Info().
		Str("endpoint", provider.Endpoint()).
		Str("transport", cfg.SMSHub.Transport).
		Msg("smshub client ready")

	// Services
	activationRepo := activationgorm.NewRepository(db)
	activationSvc := service.NewActivationService(
		activationRepo,
		provider,
		cache,
		log,
		service.Settings{
			BatchSize:            cfg.Worker.BatchSize,
			MaxWorkers:           cfg.Worker.MaxWorkers,
			PerActivationTimeout: cfg.Worker.PerActivationTimeout,
			PricesTTL:            cfg.Cache.PricesTTL,
			BalanceTTL:           cfg.Cache.BalanceTTL,
			StatusTTL:            cfg.Cache.StatusTTL,
		},
	)

	cron := scheduler.NewSchedulerService(
		activationSvc,
		cfg.Scheduler.Interval,
		cfg.Scheduler.BatchTimeout,
		log,
	)

	// HTTP
	deps := routes.AppDeps{
		Home:       handler.NewHomeHandler(),
		Activation: handler.NewActivationHandler(activationSvc, cron, log),
	}

	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	srv := server.New(addr, deps, log)

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	if err := cron.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Waits for an in-flight batch.
	if err := cron.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler did not stop cleanly")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server graceful shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}
