package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tabletennis-tracker/internal/constants"
	"tabletennis-tracker/internal/db"
	"tabletennis-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("not found")

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (*domain.MatchRecord, error) {
	row, err := r.queries.GetMatch(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := fromDBMatch(row)
	return &rec, nil
}

// GetByPair returns the pair's whole history, oldest first.
func (r *MatchRepository) GetByPair(ctx context.Context, pair domain.PairKey) ([]domain.MatchRecord, error) {
	rows, err := r.queries.ListMatchesByPair(ctx, db.Pair{Player1: pair.Player1, Player2: pair.Player2})
	if err != nil {
		return nil, err
	}

	results := make([]domain.MatchRecord, len(rows))
	for i, row := range rows {
		results[i] = fromDBMatch(row)
	}
	return results, nil
}

// ListTrackedPairs lists pairs that have a completed match or a stored
// analytics row, so a recompute also reaches snapshots whose matches are gone.
func (r *MatchRepository) ListTrackedPairs(ctx context.Context) ([]domain.PairKey, error) {
	rows, err := r.queries.ListTrackedPairs(ctx)
	if err != nil {
		return nil, err
	}

	pairs := make([]domain.PairKey, len(rows))
	for i, row := range rows {
		pairs[i] = domain.PairKey{Player1: row.Player1, Player2: row.Player2}
	}
	return pairs, nil
}

func (r *MatchRepository) SearchPlayers(ctx context.Context, query string, limit int) ([]string, error) {
	names, err := r.queries.SearchPlayers(ctx, query, int64(limit))
	if err != nil {
		return nil, err
	}
	if names == nil {
		return []string{}, nil
	}
	return names, nil
}

func (r *MatchRepository) GetSetStats(ctx context.Context, matchID string) ([]domain.SetStats, error) {
	rows, err := r.queries.ListSetStatsByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.SetStats, len(rows))
	for i, s := range rows {
		result[i] = domain.SetStats{
			ID:             s.ID,
			MatchID:        s.MatchID,
			SetNumber:      int(s.SetNumber),
			ScoreA:         int(s.ScoreA),
			ScoreB:         int(s.ScoreB),
			TotalPoints:    int(s.SetTotalPoints),
			IsOdd:          s.IsSetOdd,
			WentToOvertime: s.WentToOvertime,
			TotalLine:      s.SetTotalSpread,
			Spread:         s.SetSpread,
			IsTotalOver:    s.IsSetTotalOver,
			CreatedAt:      s.CreatedAt,
		}
	}
	return result, nil
}

// UpsertBatch writes the matches and replaces the set rows of every match in
// the batch, all in one transaction.
func (r *MatchRepository) UpsertBatch(ctx context.Context, matches []domain.MatchRecord, setStats []domain.SetStats) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for i := 0; i < len(matches); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(matches))

		for _, match := range matches[i:end] {
			if match.ID == "" {
				return fmt.Errorf("match %s vs %s has no id", match.PlayerA, match.PlayerB)
			}
			if err := qtx.UpsertMatch(ctx, toDBMatch(match)); err != nil {
				return fmt.Errorf("failed to upsert match %s: %w", match.ID, err)
			}
			if err := qtx.DeleteSetStatsByMatch(ctx, match.ID); err != nil {
				return fmt.Errorf("failed to clear set stats for match %s: %w", match.ID, err)
			}
		}
	}

	for _, s := range setStats {
		id := s.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}
		createdAt := s.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		err := qtx.InsertSetStat(ctx, db.SetStat{
			ID:             id,
			MatchID:        s.MatchID,
			SetNumber:      int64(s.SetNumber),
			ScoreA:         int64(s.ScoreA),
			ScoreB:         int64(s.ScoreB),
			SetTotalPoints: int64(s.TotalPoints),
			IsSetOdd:       s.IsOdd,
			WentToOvertime: s.WentToOvertime,
			IsSetTotalOver: s.IsTotalOver,
			SetTotalSpread: s.TotalLine,
			SetSpread:      s.Spread,
			CreatedAt:      createdAt,
		})
		if err != nil {
			return fmt.Errorf("failed to insert set %d of match %s: %w", s.SetNumber, s.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match batch: %w", err)
	}

	r.logger.Debug().Int("matches", len(matches)).Int("sets", len(setStats)).Msg("match batch stored")
	return nil
}

func toDBMatch(m domain.MatchRecord) db.Match {
	pair := m.Pair()
	row := db.Match{
		ID:          m.ID,
		PlayerA:     m.PlayerA,
		PlayerB:     m.PlayerB,
		PairPlayer1: pair.Player1,
		PairPlayer2: pair.Player2,
		League:      m.League,
		MatchDate:   m.MatchDate.UTC(),
		Completed:   m.Completed(),
		IsSweep:     m.IsSweep,
		IsSplit:     m.IsSplit,
		SetsPlayed:  int64(m.SetsPlayed),
		Overtimes:   int64(m.Overtimes),
		IsTotalOver: m.IsTotalOver,
		IsTotalOdd:  m.IsTotalOdd,
		Source:      m.Source,
		SourceURL:   m.SourceURL,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),

		TotalPointsSpread: m.TotalPointsLine,
		MatchSpread:       m.MatchSpread,
	}
	if m.Winner != "" {
		winner := m.Winner
		row.Winner = &winner
	}
	for i, s := range m.Sets {
		if i >= len(row.SetA) {
			break
		}
		a, b := int64(s.ScoreA), int64(s.ScoreB)
		row.SetA[i], row.SetB[i] = &a, &b
	}
	if m.TotalPoints != nil {
		total := int64(*m.TotalPoints)
		row.TotalPoints = &total
	}
	return row
}

func fromDBMatch(row db.Match) domain.MatchRecord {
	m := domain.MatchRecord{
		ID:          row.ID,
		PlayerA:     row.PlayerA,
		PlayerB:     row.PlayerB,
		League:      row.League,
		MatchDate:   row.MatchDate,
		IsSweep:     row.IsSweep,
		IsSplit:     row.IsSplit,
		SetsPlayed:  int(row.SetsPlayed),
		Overtimes:   int(row.Overtimes),
		IsTotalOver: row.IsTotalOver,
		IsTotalOdd:  row.IsTotalOdd,
		Source:      row.Source,
		SourceURL:   row.SourceURL,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,

		TotalPointsLine: row.TotalPointsSpread,
		MatchSpread:     row.MatchSpread,
	}
	if row.Winner != nil {
		m.Winner = *row.Winner
	}
	for i := range row.SetA {
		if row.SetA[i] == nil || row.SetB[i] == nil {
			break
		}
		m.Sets = append(m.Sets, domain.SetScore{ScoreA: int(*row.SetA[i]), ScoreB: int(*row.SetB[i])})
	}
	if row.TotalPoints != nil {
		total := int(*row.TotalPoints)
		m.TotalPoints = &total
	}
	return m
}
