package main

import (
	"context"
	"database/sql"
	"flag"

	"tabletennis-tracker/internal/config"
	fxmodules "tabletennis-tracker/internal/fx"
	"tabletennis-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	listingURL := flag.String("url", "", "listing page to collect from (default SCRAPE_LISTING_URL)")
	recompute := flag.Bool("recompute", false, "recompute every matchup after collecting")
	flag.Parse()

	fx.New(
		fxmodules.Core,
		fx.Supply(runOptions{listingURL: *listingURL, recompute: *recompute}),
		fx.Invoke(runCollector),
	).Run()
}

type runOptions struct {
	listingURL string
	recompute  bool
}

// runCollector does a single pass once the app has started, then shuts the
// app down with a non-zero exit code on failure.
func runCollector(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	opts runOptions,
	collector *service.CollectorService,
	analyticsSvc *service.AnalyticsService,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	url := opts.listingURL
	if url == "" {
		url = cfg.ScrapeListingURL
	}

	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				exitCode := 0
				if err := collect(ctx, collector, analyticsSvc, url, opts.recompute, logger); err != nil {
					logger.Error().Err(err).Msg("collection failed")
					exitCode = 1
				}
				if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					logger.Error().Err(err).Msg("shutdown failed")
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
}

func collect(ctx context.Context, collector *service.CollectorService, analyticsSvc *service.AnalyticsService, url string, recompute bool, logger zerolog.Logger) error {
	result, err := collector.Run(ctx, url)
	if err != nil {
		return err
	}
	logger.Info().
		Str("run_id", result.RunID).
		Int("recorded", result.Recorded).
		Int("skipped", result.Skipped).
		Int("rate_limit_remaining", result.RateLimit.Remaining).
		Int("rate_limit_reset", result.RateLimit.Reset).
		Int("last_status", result.RateLimit.LastStatus).
		Msg("collection pass done")

	if !recompute {
		return nil
	}
	n, err := analyticsSvc.RecomputeAll(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("pairs", n).Msg("matchups recomputed")
	return nil
}
