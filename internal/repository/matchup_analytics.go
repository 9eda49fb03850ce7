package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tabletennis-tracker/internal/db"
	"tabletennis-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type AnalyticsRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewAnalyticsRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Upsert stores the snapshot keyed by its pair. An existing row keeps its id.
func (r *AnalyticsRepository) Upsert(ctx context.Context, a *domain.MatchupAnalytics) error {
	id := a.ID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	row := toDBAnalytics(a)
	row.ID = id
	if err := r.queries.UpsertMatchupAnalytics(ctx, row); err != nil {
		return fmt.Errorf("failed to upsert analytics for %s: %w", a.Pair(), err)
	}
	return nil
}

func (r *AnalyticsRepository) Get(ctx context.Context, pair domain.PairKey) (*domain.MatchupAnalytics, error) {
	row, err := r.queries.GetMatchupAnalytics(ctx, db.Pair{Player1: pair.Player1, Player2: pair.Player2})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromDBAnalytics(row), nil
}

func (r *AnalyticsRepository) ListTop(ctx context.Context, limit int) ([]*domain.MatchupAnalytics, error) {
	rows, err := r.queries.ListMatchupAnalytics(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	result := make([]*domain.MatchupAnalytics, len(rows))
	for i, row := range rows {
		result[i] = fromDBAnalytics(row)
	}
	return result, nil
}

func (r *AnalyticsRepository) Delete(ctx context.Context, pair domain.PairKey) error {
	return r.queries.DeleteMatchupAnalytics(ctx, db.Pair{Player1: pair.Player1, Player2: pair.Player2})
}

func toDBAnalytics(a *domain.MatchupAnalytics) db.MatchupAnalytic {
	row := db.MatchupAnalytic{
		ID:                   a.ID,
		Player1:              a.Player1,
		Player2:              a.Player2,
		TotalMatches:         int64(a.TotalMatches),
		Player1Wins:          int64(a.Player1Wins),
		Player2Wins:          int64(a.Player2Wins),
		Player1WinPct:        a.Player1WinPct,
		Player2WinPct:        a.Player2WinPct,
		Player1AvgWinMargin:  a.Player1AvgWinMargin,
		Player2AvgWinMargin:  a.Player2AvgWinMargin,
		LongestPlayer1Streak: int64(a.LongestPlayer1Streak),
		LongestPlayer2Streak: int64(a.LongestPlayer2Streak),
		CurrentStreakLength:  int64(a.CurrentStreakLength),
		SweepCount:           int64(a.SweepCount),
		SweepRate:            a.SweepRate,
		SplitCount:           int64(a.SplitCount),
		SplitRate:            a.SplitRate,
		FourSetMatches:       int64(a.FourSetMatches),
		FiveSetMatches:       int64(a.FiveSetMatches),
		FourSetRate:          a.FourSetRate,
		FiveSetRate:          a.FiveSetRate,
		OverTotalCount:       int64(a.OverTotalCount),
		UnderTotalCount:      int64(a.UnderTotalCount),
		OverTotalRate:        a.OverTotalRate,
		LongestOverStreak:    int64(a.LongestOverStreak),
		LongestUnderStreak:   int64(a.LongestUnderStreak),
		Last5Player1Wins:     int64(a.Last5Player1Wins),
		Last5Player2Wins:     int64(a.Last5Player2Wins),
		Last10OverCount:      int64(a.Last10OverCount),
		Last20OverCount:      int64(a.Last20OverCount),
		Last30OverCount:      int64(a.Last30OverCount),
		OddTotalCount:        int64(a.OddTotalCount),
		EvenTotalCount:       int64(a.EvenTotalCount),
		OddTotalRate:         a.OddTotalRate,
		AvgTotalPoints:       a.AvgTotalPoints,
		AvgOvertimes:         a.AvgOvertimes,
		LastUpdated:          a.LastUpdated.UTC(),
	}
	if a.CurrentStreakPlayer != "" {
		player := a.CurrentStreakPlayer
		row.CurrentStreakPlayer = &player
	}
	if a.LastMeetingDate != nil {
		d := a.LastMeetingDate.UTC()
		row.LastMeetingDate = &d
	}
	if a.LastMeetingTotalPoints != nil {
		p := int64(*a.LastMeetingTotalPoints)
		row.LastMeetingTotalPoints = &p
	}
	return row
}

func fromDBAnalytics(row db.MatchupAnalytic) *domain.MatchupAnalytics {
	a := &domain.MatchupAnalytics{
		ID:                   row.ID,
		Player1:              row.Player1,
		Player2:              row.Player2,
		TotalMatches:         int(row.TotalMatches),
		Player1Wins:          int(row.Player1Wins),
		Player2Wins:          int(row.Player2Wins),
		Player1WinPct:        row.Player1WinPct,
		Player2WinPct:        row.Player2WinPct,
		Player1AvgWinMargin:  row.Player1AvgWinMargin,
		Player2AvgWinMargin:  row.Player2AvgWinMargin,
		LongestPlayer1Streak: int(row.LongestPlayer1Streak),
		LongestPlayer2Streak: int(row.LongestPlayer2Streak),
		CurrentStreakLength:  int(row.CurrentStreakLength),
		SweepCount:           int(row.SweepCount),
		SweepRate:            row.SweepRate,
		SplitCount:           int(row.SplitCount),
		SplitRate:            row.SplitRate,
		FourSetMatches:       int(row.FourSetMatches),
		FiveSetMatches:       int(row.FiveSetMatches),
		FourSetRate:          row.FourSetRate,
		FiveSetRate:          row.FiveSetRate,
		OverTotalCount:       int(row.OverTotalCount),
		UnderTotalCount:      int(row.UnderTotalCount),
		OverTotalRate:        row.OverTotalRate,
		LongestOverStreak:    int(row.LongestOverStreak),
		LongestUnderStreak:   int(row.LongestUnderStreak),
		Last5Player1Wins:     int(row.Last5Player1Wins),
		Last5Player2Wins:     int(row.Last5Player2Wins),
		Last10OverCount:      int(row.Last10OverCount),
		Last20OverCount:      int(row.Last20OverCount),
		Last30OverCount:      int(row.Last30OverCount),
		OddTotalCount:        int(row.OddTotalCount),
		EvenTotalCount:       int(row.EvenTotalCount),
		OddTotalRate:         row.OddTotalRate,
		LastMeetingDate:      row.LastMeetingDate,
		AvgTotalPoints:       row.AvgTotalPoints,
		AvgOvertimes:         row.AvgOvertimes,
		LastUpdated:          row.LastUpdated,
	}
	if row.CurrentStreakPlayer != nil {
		a.CurrentStreakPlayer = *row.CurrentStreakPlayer
	}
	if row.LastMeetingTotalPoints != nil {
		p := int(*row.LastMeetingTotalPoints)
		a.LastMeetingTotalPoints = &p
	}
	return a
}
