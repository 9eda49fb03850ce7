package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabletennis-tracker/internal/database"
	"tabletennis-tracker/internal/db"
	"tabletennis-tracker/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return sqlDB
}

func newRepos(t *testing.T) (*MatchRepository, *AnalyticsRepository) {
	sqlDB := setupTestDB(t)
	queries := db.New(sqlDB)
	return NewMatchRepository(sqlDB, queries, zerolog.Nop()), NewAnalyticsRepository(sqlDB, queries, zerolog.Nop())
}

var day0 = time.Date(2025, 4, 10, 18, 30, 0, 0, time.UTC)

func testMatch(id string, days int, playerA, playerB, winner string, sets ...domain.SetScore) domain.MatchRecord {
	total := 0
	for _, s := range sets {
		total += s.ScoreA + s.ScoreB
	}
	odd := total%2 == 1
	return domain.MatchRecord{
		ID:          id,
		PlayerA:     playerA,
		PlayerB:     playerB,
		League:      "Setka Cup",
		MatchDate:   day0.Add(time.Duration(days) * 24 * time.Hour),
		Winner:      winner,
		Sets:        sets,
		TotalPoints: &total,
		IsTotalOdd:  &odd,
		SetsPlayed:  len(sets),
		Source:      "manual",
		CreatedAt:   day0,
		UpdatedAt:   day0,
	}
}

func TestMatchRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	matches, _ := newRepos(t)

	rec := testMatch("m1", 0, "Zed", "Adam", "Adam",
		domain.SetScore{ScoreA: 5, ScoreB: 11}, domain.SetScore{ScoreA: 12, ScoreB: 10},
		domain.SetScore{ScoreA: 7, ScoreB: 11}, domain.SetScore{ScoreA: 9, ScoreB: 11})
	over := true
	rec.IsTotalOver = &over
	rec.Overtimes = 1

	require.NoError(t, matches.UpsertBatch(ctx, []domain.MatchRecord{rec}, nil))

	got, err := matches.GetByID(ctx, "m1")
	require.NoError(t, err)

	assert.Equal(t, rec.PlayerA, got.PlayerA)
	assert.Equal(t, rec.PlayerB, got.PlayerB)
	assert.Equal(t, rec.Winner, got.Winner)
	assert.Equal(t, rec.Sets, got.Sets)
	assert.Equal(t, rec.TotalPoints, got.TotalPoints)
	assert.Equal(t, rec.IsTotalOver, got.IsTotalOver)
	assert.Equal(t, rec.IsTotalOdd, got.IsTotalOdd)
	assert.Equal(t, 4, got.SetsPlayed)
	assert.Equal(t, 1, got.Overtimes)
	assert.True(t, got.MatchDate.Equal(rec.MatchDate))

	_, err = matches.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchRepositoryHistoryByPair(t *testing.T) {
	ctx := context.Background()
	matches, _ := newRepos(t)

	sweep := []domain.SetScore{{ScoreA: 11, ScoreB: 3}, {ScoreA: 11, ScoreB: 4}, {ScoreA: 11, ScoreB: 5}}
	batch := []domain.MatchRecord{
		testMatch("c", 2, "Adam", "Zed", "Adam", sweep...),
		testMatch("a", 0, "Zed", "Adam", "Zed", sweep...),
		testMatch("b", 1, "Adam", "Zed", "", sweep[:1]...),
		testMatch("x", 1, "Adam", "Carl", "Adam", sweep...),
	}
	require.NoError(t, matches.UpsertBatch(ctx, batch, nil))

	history, err := matches.GetByPair(ctx, domain.NewPairKey("Zed", "Adam"))
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "a", history[0].ID)
	assert.Equal(t, "b", history[1].ID)
	assert.Equal(t, "c", history[2].ID)
	assert.False(t, history[1].Completed())

	pairs, err := matches.ListTrackedPairs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.PairKey{
		{Player1: "Adam", Player2: "Carl"},
		{Player1: "Adam", Player2: "Zed"},
	}, pairs)

	names, err := matches.SearchPlayers(ctx, "a", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Adam", "Carl"}, names)

	names, err = matches.SearchPlayers(ctx, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMatchRepositoryReplacesSetStats(t *testing.T) {
	ctx := context.Background()
	matches, _ := newRepos(t)

	rec := testMatch("m1", 0, "Adam", "Zed", "", domain.SetScore{ScoreA: 11, ScoreB: 9})
	require.NoError(t, matches.UpsertBatch(ctx, []domain.MatchRecord{rec}, []domain.SetStats{
		{MatchID: "m1", SetNumber: 1, ScoreA: 11, ScoreB: 9, TotalPoints: 20},
	}))

	rec.Sets = append(rec.Sets, domain.SetScore{ScoreA: 13, ScoreB: 11})
	rec.Winner = "Adam"
	over := true
	require.NoError(t, matches.UpsertBatch(ctx, []domain.MatchRecord{rec}, []domain.SetStats{
		{MatchID: "m1", SetNumber: 1, ScoreA: 11, ScoreB: 9, TotalPoints: 20},
		{MatchID: "m1", SetNumber: 2, ScoreA: 13, ScoreB: 11, TotalPoints: 24, WentToOvertime: true, IsTotalOver: &over},
	}))

	sets, err := matches.GetSetStats(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.NotEmpty(t, sets[0].ID)
	assert.Equal(t, 2, sets[1].SetNumber)
	assert.True(t, sets[1].WentToOvertime)
	require.NotNil(t, sets[1].IsTotalOver)
	assert.True(t, *sets[1].IsTotalOver)
	assert.Nil(t, sets[0].IsTotalOver)

	got, err := matches.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Adam", got.Winner)
	assert.Len(t, got.Sets, 2)
}

func TestMatchRepositoryRejectsMissingID(t *testing.T) {
	matches, _ := newRepos(t)

	err := matches.UpsertBatch(context.Background(), []domain.MatchRecord{testMatch("", 0, "Adam", "Zed", "")}, nil)
	assert.Error(t, err)
}

func TestAnalyticsRepositoryUpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	_, analytics := newRepos(t)

	margin := 6.5
	last := day0
	lastPoints := 71
	snap := &domain.MatchupAnalytics{
		Player1:                "Adam",
		Player2:                "Zed",
		TotalMatches:           3,
		Player1Wins:            2,
		Player2Wins:            1,
		Player1WinPct:          2.0 / 3.0,
		Player2WinPct:          1.0 / 3.0,
		Player1AvgWinMargin:    &margin,
		LongestPlayer1Streak:   2,
		LongestPlayer2Streak:   1,
		CurrentStreakPlayer:    "Zed",
		CurrentStreakLength:    1,
		Last10OverCount:        2,
		LastMeetingDate:        &last,
		LastMeetingTotalPoints: &lastPoints,
		LastUpdated:            day0,
	}
	require.NoError(t, analytics.Upsert(ctx, snap))

	first, err := analytics.Get(ctx, domain.NewPairKey("Zed", "Adam"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 3, first.TotalMatches)
	assert.Equal(t, "Zed", first.CurrentStreakPlayer)
	assert.InDelta(t, 2.0/3.0, first.Player1WinPct, 1e-12)
	require.NotNil(t, first.Player1AvgWinMargin)
	assert.Equal(t, 6.5, *first.Player1AvgWinMargin)
	assert.Nil(t, first.Player2AvgWinMargin)
	require.NotNil(t, first.LastMeetingTotalPoints)
	assert.Equal(t, 71, *first.LastMeetingTotalPoints)
	require.NotNil(t, first.LastMeetingDate)
	assert.True(t, first.LastMeetingDate.Equal(day0))

	snap.TotalMatches = 4
	snap.Player1Wins = 3
	require.NoError(t, analytics.Upsert(ctx, snap))

	second, err := analytics.Get(ctx, domain.NewPairKey("Adam", "Zed"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.TotalMatches)

	top, err := analytics.ListTop(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)

	require.NoError(t, analytics.Delete(ctx, domain.NewPairKey("Adam", "Zed")))
	_, err = analytics.Get(ctx, domain.NewPairKey("Adam", "Zed"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTrackedPairsIncludesOrphanedSnapshots(t *testing.T) {
	ctx := context.Background()
	matches, analytics := newRepos(t)

	require.NoError(t, matches.UpsertBatch(ctx, []domain.MatchRecord{
		testMatch("a", 0, "Adam", "Zed", "Adam", domain.SetScore{ScoreA: 11, ScoreB: 3}),
		testMatch("b", 1, "Bea", "Dan", "", domain.SetScore{ScoreA: 4, ScoreB: 2}),
	}, nil))
	require.NoError(t, analytics.Upsert(ctx, &domain.MatchupAnalytics{
		Player1: "Carl", Player2: "Erin", TotalMatches: 1, LastUpdated: day0,
	}))
	require.NoError(t, analytics.Upsert(ctx, &domain.MatchupAnalytics{
		Player1: "Adam", Player2: "Zed", TotalMatches: 1, LastUpdated: day0,
	}))

	pairs, err := matches.ListTrackedPairs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.PairKey{
		{Player1: "Adam", Player2: "Zed"},
		{Player1: "Carl", Player2: "Erin"},
	}, pairs)
}

func TestMatchRepositoryStoresLines(t *testing.T) {
	ctx := context.Background()
	matches, _ := newRepos(t)

	totalLine, spread, setLine, setSpread := 74.5, -2.5, 18.5, 1.5
	rec := testMatch("m1", 0, "Adam", "Zed", "Adam", domain.SetScore{ScoreA: 11, ScoreB: 9})
	rec.TotalPointsLine = &totalLine
	rec.MatchSpread = &spread

	over := true
	require.NoError(t, matches.UpsertBatch(ctx, []domain.MatchRecord{rec}, []domain.SetStats{
		{MatchID: "m1", SetNumber: 1, ScoreA: 11, ScoreB: 9, TotalPoints: 20, TotalLine: &setLine, Spread: &setSpread, IsTotalOver: &over},
	}))

	got, err := matches.GetByID(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got.TotalPointsLine)
	assert.Equal(t, 74.5, *got.TotalPointsLine)
	require.NotNil(t, got.MatchSpread)
	assert.Equal(t, -2.5, *got.MatchSpread)

	sets, err := matches.GetSetStats(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.NotNil(t, sets[0].TotalLine)
	assert.Equal(t, 18.5, *sets[0].TotalLine)
	require.NotNil(t, sets[0].Spread)
	assert.Equal(t, 1.5, *sets[0].Spread)

	plain := testMatch("m2", 1, "Adam", "Zed", "")
	require.NoError(t, matches.UpsertBatch(ctx, []domain.MatchRecord{plain}, nil))
	got, err = matches.GetByID(ctx, "m2")
	require.NoError(t, err)
	assert.Nil(t, got.TotalPointsLine)
	assert.Nil(t, got.MatchSpread)
}
