package fx

import (
	"database/sql"
	"unfc-tracker/internal/api"
	"unfc-tracker/internal/config"
	"unfc-tracker/internal/database"
	"unfc-tracker/internal/db"
	"unfc-tracker/internal/logger"
	"unfc-tracker/internal/metrics"
	"unfc-tracker/internal/repository"
	"unfc-tracker/internal/scheduler"
	"unfc-tracker/internal/server"
	"unfc-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// Core is everything a one-shot command needs.
var Core = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	metrics.Module,
	// repos
	fx.Provide(fx.Annotate(repository.NewRecordRepository, fx.As(new(service.Store)))),
	fx.Provide(fx.Annotate(repository.NewLeaseRepository, fx.As(new(service.Locker)))),
	// api client
	fx.Provide(fx.Annotate(api.NewOsuClient, fx.As(new(service.Fetcher)))),
	// svc
	fx.Provide(service.NewPipeline),
	fx.Provide(service.NewTrackerService),
)

// Server adds the HTTP surface and the daily scheduler.
var Server = fx.Options(
	Core,
	fx.Provide(func(t *service.TrackerService) server.Tracker { return t }),
	fx.Provide(func(t *service.TrackerService) scheduler.Runner { return t }),
	fx.Provide(server.NewTrackerServer),
	fx.Provide(scheduler.New),
)
