package fx

import (
	"database/sql"

	"tabletennis-tracker/internal/analytics"
	"tabletennis-tracker/internal/api"
	"tabletennis-tracker/internal/config"
	"tabletennis-tracker/internal/database"
	"tabletennis-tracker/internal/db"
	"tabletennis-tracker/internal/logger"
	"tabletennis-tracker/internal/repository"
	"tabletennis-tracker/internal/server"
	"tabletennis-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideAggregator(cfg *config.Config) *analytics.Aggregator {
	return analytics.NewAggregator(analytics.Lines{
		MatchTotal: cfg.TotalPointsLine,
		SetTotal:   cfg.SetPointsLine,
	}, nil)
}

func ProvideDocumentFetcher(client *api.PageClient) service.DocumentFetcher {
	return client
}

// Core is everything but the transport: both binaries start from it.
var Core = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewAnalyticsRepository),
	// analytics
	fx.Provide(ProvideAggregator),
	fx.Provide(service.NewPairLocker),
	// page client
	fx.Provide(api.NewPageClient),
	fx.Provide(ProvideDocumentFetcher),
	// svc
	fx.Provide(service.NewAnalyticsService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewCollectorService),
)

var Module = fx.Options(
	Core,
	// server
	fx.Provide(server.NewTrackerServer),
)
