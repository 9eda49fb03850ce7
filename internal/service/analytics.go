package service

import (
	"context"
	"errors"
	"fmt"

	"tabletennis-tracker/internal/analytics"
	"tabletennis-tracker/internal/constants"
	"tabletennis-tracker/internal/domain"
	"tabletennis-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService struct {
	matchRepo     *repository.MatchRepository
	analyticsRepo *repository.AnalyticsRepository
	aggregator    *analytics.Aggregator
	locker        *PairLocker
	logger        zerolog.Logger
}

func NewAnalyticsService(matchRepo *repository.MatchRepository, analyticsRepo *repository.AnalyticsRepository, aggregator *analytics.Aggregator, locker *PairLocker, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		matchRepo:     matchRepo,
		analyticsRepo: analyticsRepo,
		aggregator:    aggregator,
		locker:        locker,
		logger:        logger,
	}
}

// Recompute rebuilds the pair's snapshot from its stored history. A pair
// with no completed match has no row: any existing one is deleted and the
// zero snapshot is returned.
func (s *AnalyticsService) Recompute(ctx context.Context, pair domain.PairKey) (*domain.MatchupAnalytics, error) {
	unlock := s.locker.Lock(pair)
	defer unlock()

	return s.recomputeLocked(ctx, pair)
}

func (s *AnalyticsService) recomputeLocked(ctx context.Context, pair domain.PairKey) (*domain.MatchupAnalytics, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	history, err := s.matchRepo.GetByPair(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", pair, err)
	}

	snap, err := s.aggregator.Aggregate(pair, history)
	if err != nil {
		s.logger.Error().Err(err).Str("pair", pair.String()).Int("records", len(history)).Msg("history rejected")
		return nil, fmt.Errorf("failed to aggregate %s: %w", pair, err)
	}

	if snap.TotalMatches == 0 {
		if err := s.analyticsRepo.Delete(ctx, pair); err != nil {
			return nil, fmt.Errorf("failed to drop analytics for %s: %w", pair, err)
		}
		s.logger.Debug().Str("pair", pair.String()).Msg("no completed matches, snapshot dropped")
		return snap, nil
	}

	if err := s.analyticsRepo.Upsert(ctx, snap); err != nil {
		return nil, err
	}

	stored, err := s.analyticsRepo.Get(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("failed to reload analytics for %s: %w", pair, err)
	}

	s.logger.Debug().Str("pair", pair.String()).Int("total_matches", stored.TotalMatches).Msg("analytics recomputed")
	return stored, nil
}

// RecomputeAll rebuilds every pair with a completed match or a stored
// snapshot and returns how many were processed. The first failure cancels
// the rest.
func (s *AnalyticsService) RecomputeAll(ctx context.Context) (int, error) {
	pairs, err := s.matchRepo.ListTrackedPairs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pairs: %w", err)
	}

	s.logger.Info().Int("pairs", len(pairs)).Msg("recomputing all matchups")

	if err := s.recomputePairs(ctx, pairs); err != nil {
		return 0, err
	}

	s.logger.Info().Int("pairs", len(pairs)).Msg("all matchups recomputed")
	return len(pairs), nil
}

func (s *AnalyticsService) recomputePairs(ctx context.Context, pairs []domain.PairKey) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.RecomputeConcurrency)

	for _, pair := range pairs {
		g.Go(func() error {
			if _, err := s.Recompute(gCtx, pair); err != nil {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func (s *AnalyticsService) Get(ctx context.Context, pair domain.PairKey) (*domain.MatchupAnalytics, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	snap, err := s.analyticsRepo.Get(ctx, pair)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error().Err(err).Str("pair", pair.String()).Msg("failed to get analytics")
		return nil, fmt.Errorf("failed to get analytics: %w", err)
	}
	return snap, nil
}

// Top lists snapshots with the most completed matches first. The limit is
// clamped to [1, TopMatchupsMaxLimit].
func (s *AnalyticsService) Top(ctx context.Context, limit int) ([]*domain.MatchupAnalytics, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.TopMatchupsDefaultLimit
	}
	limit = min(limit, constants.TopMatchupsMaxLimit)

	return s.analyticsRepo.ListTop(ctx, limit)
}
