package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tabletennis-tracker/internal/analytics"
	"tabletennis-tracker/internal/constants"
	"tabletennis-tracker/internal/domain"
	"tabletennis-tracker/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type MatchService struct {
	matchRepo    *repository.MatchRepository
	analyticsSvc *AnalyticsService
	lines        analytics.Lines
	logger       zerolog.Logger
}

func NewMatchService(matchRepo *repository.MatchRepository, analyticsSvc *AnalyticsService, aggregator *analytics.Aggregator, logger zerolog.Logger) *MatchService {
	return &MatchService{
		matchRepo:    matchRepo,
		analyticsSvc: analyticsSvc,
		lines:        aggregator.Lines(),
		logger:       logger,
	}
}

// MatchDetail is a stored match with its per-set rows.
type MatchDetail struct {
	Match domain.MatchRecord
	Sets  []domain.SetStats
}

func (s *MatchService) RecordMatch(ctx context.Context, rec domain.MatchRecord) (*domain.MatchRecord, error) {
	stored, err := s.RecordBatch(ctx, []domain.MatchRecord{rec})
	if err != nil {
		return nil, err
	}
	return &stored[0], nil
}

// RecordBatch stores the records and their set rows in one transaction, then
// recomputes every pair the batch touched: the pair of each record and, for
// a record that replaces a stored match, the stored match's pair. A single
// invalid record rejects the whole batch before anything is written.
func (s *MatchService) RecordBatch(ctx context.Context, recs []domain.MatchRecord) ([]domain.MatchRecord, error) {
	if len(recs) == 0 {
		return []domain.MatchRecord{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	now := time.Now().UTC()
	out := make([]domain.MatchRecord, len(recs))
	setStats := make([]domain.SetStats, 0, len(recs)*constants.MaxSetsPerMatch)
	touched := make(map[domain.PairKey]struct{})

	for i := range recs {
		rec, err := s.prepare(recs[i], now)
		if err != nil {
			s.logger.Warn().Err(err).Int("index", i).Str("match_id", recs[i].ID).Msg("rejected match record")
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = rec
		setStats = append(setStats, analytics.SetBreakdown(&rec, s.lines)...)
		touched[rec.Pair()] = struct{}{}
	}

	for _, rec := range out {
		prev, err := s.matchRepo.GetByID(ctx, rec.ID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up match %s: %w", rec.ID, err)
		}
		touched[prev.Pair()] = struct{}{}
	}

	if err := s.matchRepo.UpsertBatch(ctx, out, setStats); err != nil {
		s.logger.Error().Err(err).Int("count", len(out)).Msg("failed to store matches")
		return nil, fmt.Errorf("failed to store matches: %w", err)
	}

	pairs := make([]domain.PairKey, 0, len(touched))
	for pair := range touched {
		pairs = append(pairs, pair)
	}
	if err := s.analyticsSvc.recomputePairs(ctx, pairs); err != nil {
		s.logger.Error().Err(err).Int("pairs", len(pairs)).Msg("failed to recompute analytics")
		return nil, fmt.Errorf("failed to recompute analytics: %w", err)
	}

	s.logger.Info().Int("matches", len(out)).Int("pairs", len(pairs)).Msg("matches recorded")
	return out, nil
}

func (s *MatchService) prepare(rec domain.MatchRecord, now time.Time) (domain.MatchRecord, error) {
	rec.PlayerA = strings.TrimSpace(rec.PlayerA)
	rec.PlayerB = strings.TrimSpace(rec.PlayerB)
	rec.Winner = strings.TrimSpace(rec.Winner)
	rec.League = strings.TrimSpace(rec.League)
	if rec.Source == "" {
		rec.Source = domain.SourceManual
	}

	if rec.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return rec, fmt.Errorf("failed to generate nanoid: %w", err)
		}
		rec.ID = id
	}
	if rec.MatchDate.IsZero() {
		rec.MatchDate = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := analytics.ValidateRecord(&rec); err != nil {
		return rec, err
	}
	analytics.DeriveFlags(&rec, s.lines)
	return rec, nil
}

func (s *MatchService) History(ctx context.Context, pair domain.PairKey) ([]domain.MatchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.matchRepo.GetByPair(ctx, pair)
}

func (s *MatchService) Get(ctx context.Context, id string) (*MatchDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	rec, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	sets, err := s.matchRepo.GetSetStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get set stats: %w", err)
	}
	return &MatchDetail{Match: *rec, Sets: sets}, nil
}

func (s *MatchService) SearchPlayers(ctx context.Context, query string, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = constants.TopMatchupsDefaultLimit
	}
	return s.matchRepo.SearchPlayers(ctx, query, min(limit, constants.TopMatchupsMaxLimit))
}
