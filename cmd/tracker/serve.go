package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/constants"
	fxmodules "unfc-tracker/internal/fx"
	"unfc-tracker/internal/scheduler"
	"unfc-tracker/internal/server"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and the daily scheduler",
		Action: func(c *cli.Context) error {
			app := fx.New(
				fxmodules.Server,
				fx.Invoke(runServer),
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

func runServer(
	lc fx.Lifecycle,
	trackerServer *server.TrackerServer,
	sched *scheduler.Scheduler,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           trackerServer.Handler(),
		ReadHeaderTimeout: constants.RequestTimeout,
	}

	schedCtx, cancelSched := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			sched.Start(schedCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			// an in-flight scheduled run aborts between chunks
			cancelSched()
			sched.Stop()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
