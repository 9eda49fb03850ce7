package db

import (
	"context"
)

const matchupAnalyticsColumns = `
    id, player_1, player_2, total_matches, player_1_wins, player_2_wins, player_1_win_pct,
    player_2_win_pct, player_1_avg_win_margin, player_2_avg_win_margin,
    longest_player_1_streak, longest_player_2_streak, current_streak_player,
    current_streak_length, sweep_count, sweep_rate, split_count, split_rate, four_set_matches,
    five_set_matches, four_set_rate, five_set_rate, over_total_count, under_total_count,
    over_total_rate, longest_over_streak, longest_under_streak, last_5_player_1_wins,
    last_5_player_2_wins, last_10_over_count, last_20_over_count, last_30_over_count,
    odd_total_count, even_total_count, odd_total_rate, last_meeting_date,
    last_meeting_total_points, avg_total_points, avg_overtimes, last_updated`

const upsertMatchupAnalytics = `
INSERT INTO matchup_analytics (` + matchupAnalyticsColumns + `
) VALUES (
    ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
    ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
    ?, ?, ?, ?
)
ON CONFLICT (player_1, player_2) DO UPDATE SET
    total_matches = excluded.total_matches,
    player_1_wins = excluded.player_1_wins,
    player_2_wins = excluded.player_2_wins,
    player_1_win_pct = excluded.player_1_win_pct,
    player_2_win_pct = excluded.player_2_win_pct,
    player_1_avg_win_margin = excluded.player_1_avg_win_margin,
    player_2_avg_win_margin = excluded.player_2_avg_win_margin,
    longest_player_1_streak = excluded.longest_player_1_streak,
    longest_player_2_streak = excluded.longest_player_2_streak,
    current_streak_player = excluded.current_streak_player,
    current_streak_length = excluded.current_streak_length,
    sweep_count = excluded.sweep_count,
    sweep_rate = excluded.sweep_rate,
    split_count = excluded.split_count,
    split_rate = excluded.split_rate,
    four_set_matches = excluded.four_set_matches,
    five_set_matches = excluded.five_set_matches,
    four_set_rate = excluded.four_set_rate,
    five_set_rate = excluded.five_set_rate,
    over_total_count = excluded.over_total_count,
    under_total_count = excluded.under_total_count,
    over_total_rate = excluded.over_total_rate,
    longest_over_streak = excluded.longest_over_streak,
    longest_under_streak = excluded.longest_under_streak,
    last_5_player_1_wins = excluded.last_5_player_1_wins,
    last_5_player_2_wins = excluded.last_5_player_2_wins,
    last_10_over_count = excluded.last_10_over_count,
    last_20_over_count = excluded.last_20_over_count,
    last_30_over_count = excluded.last_30_over_count,
    odd_total_count = excluded.odd_total_count,
    even_total_count = excluded.even_total_count,
    odd_total_rate = excluded.odd_total_rate,
    last_meeting_date = excluded.last_meeting_date,
    last_meeting_total_points = excluded.last_meeting_total_points,
    avg_total_points = excluded.avg_total_points,
    avg_overtimes = excluded.avg_overtimes,
    last_updated = excluded.last_updated
`

func (q *Queries) UpsertMatchupAnalytics(ctx context.Context, arg MatchupAnalytic) error {
	_, err := q.db.ExecContext(ctx, upsertMatchupAnalytics,
		arg.ID,
		arg.Player1,
		arg.Player2,
		arg.TotalMatches,
		arg.Player1Wins,
		arg.Player2Wins,
		arg.Player1WinPct,
		arg.Player2WinPct,
		arg.Player1AvgWinMargin,
		arg.Player2AvgWinMargin,
		arg.LongestPlayer1Streak,
		arg.LongestPlayer2Streak,
		arg.CurrentStreakPlayer,
		arg.CurrentStreakLength,
		arg.SweepCount,
		arg.SweepRate,
		arg.SplitCount,
		arg.SplitRate,
		arg.FourSetMatches,
		arg.FiveSetMatches,
		arg.FourSetRate,
		arg.FiveSetRate,
		arg.OverTotalCount,
		arg.UnderTotalCount,
		arg.OverTotalRate,
		arg.LongestOverStreak,
		arg.LongestUnderStreak,
		arg.Last5Player1Wins,
		arg.Last5Player2Wins,
		arg.Last10OverCount,
		arg.Last20OverCount,
		arg.Last30OverCount,
		arg.OddTotalCount,
		arg.EvenTotalCount,
		arg.OddTotalRate,
		arg.LastMeetingDate,
		arg.LastMeetingTotalPoints,
		arg.AvgTotalPoints,
		arg.AvgOvertimes,
		arg.LastUpdated,
	)
	return err
}

func scanMatchupAnalytic(row scanner) (MatchupAnalytic, error) {
	var a MatchupAnalytic
	err := row.Scan(
		&a.ID,
		&a.Player1,
		&a.Player2,
		&a.TotalMatches,
		&a.Player1Wins,
		&a.Player2Wins,
		&a.Player1WinPct,
		&a.Player2WinPct,
		&a.Player1AvgWinMargin,
		&a.Player2AvgWinMargin,
		&a.LongestPlayer1Streak,
		&a.LongestPlayer2Streak,
		&a.CurrentStreakPlayer,
		&a.CurrentStreakLength,
		&a.SweepCount,
		&a.SweepRate,
		&a.SplitCount,
		&a.SplitRate,
		&a.FourSetMatches,
		&a.FiveSetMatches,
		&a.FourSetRate,
		&a.FiveSetRate,
		&a.OverTotalCount,
		&a.UnderTotalCount,
		&a.OverTotalRate,
		&a.LongestOverStreak,
		&a.LongestUnderStreak,
		&a.Last5Player1Wins,
		&a.Last5Player2Wins,
		&a.Last10OverCount,
		&a.Last20OverCount,
		&a.Last30OverCount,
		&a.OddTotalCount,
		&a.EvenTotalCount,
		&a.OddTotalRate,
		&a.LastMeetingDate,
		&a.LastMeetingTotalPoints,
		&a.AvgTotalPoints,
		&a.AvgOvertimes,
		&a.LastUpdated,
	)
	return a, err
}

const getMatchupAnalytics = `SELECT ` + matchupAnalyticsColumns + `
FROM matchup_analytics
WHERE player_1 = ? AND player_2 = ?
`

func (q *Queries) GetMatchupAnalytics(ctx context.Context, arg Pair) (MatchupAnalytic, error) {
	return scanMatchupAnalytic(q.db.QueryRowContext(ctx, getMatchupAnalytics, arg.Player1, arg.Player2))
}

const listMatchupAnalytics = `SELECT ` + matchupAnalyticsColumns + `
FROM matchup_analytics
ORDER BY total_matches DESC, player_1, player_2
LIMIT ?
`

func (q *Queries) ListMatchupAnalytics(ctx context.Context, limit int64) ([]MatchupAnalytic, error) {
	rows, err := q.db.QueryContext(ctx, listMatchupAnalytics, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MatchupAnalytic
	for rows.Next() {
		a, err := scanMatchupAnalytic(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteMatchupAnalytics = `DELETE FROM matchup_analytics WHERE player_1 = ? AND player_2 = ?`

func (q *Queries) DeleteMatchupAnalytics(ctx context.Context, arg Pair) error {
	_, err := q.db.ExecContext(ctx, deleteMatchupAnalytics, arg.Player1, arg.Player2)
	return err
}
