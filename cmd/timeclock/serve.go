package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	_ "github.com/99minutos/timeclock/docs"
	"github.com/99minutos/timeclock/internal/api"
	"github.com/99minutos/timeclock/internal/api/handler"
	"github.com/99minutos/timeclock/internal/core/ports"
	"github.com/99minutos/timeclock/internal/core/service"
	"github.com/99minutos/timeclock/internal/infrastructure/db/redis"
	"github.com/99minutos/timeclock/internal/infrastructure/queue"
	"github.com/99minutos/timeclock/internal/pkg/config"
	"github.com/99minutos/timeclock/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func envLookuper() envconfig.Lookuper {
	return envconfig.OsLookuper()
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWith(cmd.Context(), envLookuper())
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "timeclock",
		Version: version,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()
	checks := []handler.DependencyCheck{st.Check}

	// --- Cache ---
	var cache ports.HoursCache
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		cache = redis.NewHoursCache(rdb, cfg.Redis.HoursTTL)
		checks = append(checks, handler.DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("hours cache enabled")
	}

	// --- Services ---
	clockOpts := []service.ClockOption{service.WithEventRepository(st.Events)}
	if cache != nil {
		clockOpts = append(clockOpts, service.WithHoursCache(cache))
	}
	clockService := service.NewClockService(st.Statuses, st.Ledger, st.Tx, logger.Component("clock"), clockOpts...)
	hoursService := service.NewHoursService(st.Ledger, st.Statuses, cache, cfg.Location(), logger.Component("hours"))
	authService := service.NewAuthService(st.Users, clockService, st.Tx, cfg.JWTSecret, cfg.JWTTTL, logger.Component("auth"))

	dispatcherCtx, stopDispatcher := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.ClockWorkers, clockService, logger.Component("dispatcher"))
	dispatcher.Start(dispatcherCtx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:       log,
		JWTSecret: cfg.JWTSecret,
		Auth:      authService,
		Commands:  dispatcher,
		Clock:     clockService,
		Hours:     hoursService,
		Checks:    checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("store", cfg.StoreDriver).
			Str("timezone", cfg.Location().String()).
			Msg("timeclock listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			stopDispatcher()
			dispatcher.Wait()
			return err
		}
	}

	// Drain HTTP first so in-flight clock commands still reach a worker.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopDispatcher()
	dispatcher.Wait()

	log.Info().Msg("stopped")
	return nil
}
