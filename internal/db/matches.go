package db

import (
	"context"
	"strings"
)

const matchColumns = `id, player_a, player_b, pair_player_1, pair_player_2, league, match_date, winner, completed,
    set_1_a, set_1_b, set_2_a, set_2_b, set_3_a, set_3_b, set_4_a, set_4_b, set_5_a, set_5_b,
    total_points, is_sweep, is_split, sets_played, overtimes, is_total_over, is_total_odd,
    total_points_spread, match_spread, source, source_url, created_at, updated_at`

const upsertMatch = `
INSERT INTO matches (` + matchColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    player_a = excluded.player_a,
    player_b = excluded.player_b,
    pair_player_1 = excluded.pair_player_1,
    pair_player_2 = excluded.pair_player_2,
    league = excluded.league,
    match_date = excluded.match_date,
    winner = excluded.winner,
    completed = excluded.completed,
    set_1_a = excluded.set_1_a, set_1_b = excluded.set_1_b,
    set_2_a = excluded.set_2_a, set_2_b = excluded.set_2_b,
    set_3_a = excluded.set_3_a, set_3_b = excluded.set_3_b,
    set_4_a = excluded.set_4_a, set_4_b = excluded.set_4_b,
    set_5_a = excluded.set_5_a, set_5_b = excluded.set_5_b,
    total_points = excluded.total_points,
    is_sweep = excluded.is_sweep,
    is_split = excluded.is_split,
    sets_played = excluded.sets_played,
    overtimes = excluded.overtimes,
    is_total_over = excluded.is_total_over,
    is_total_odd = excluded.is_total_odd,
    total_points_spread = excluded.total_points_spread,
    match_spread = excluded.match_spread,
    source = excluded.source,
    source_url = excluded.source_url,
    updated_at = excluded.updated_at
`

func (q *Queries) UpsertMatch(ctx context.Context, arg Match) error {
	args := []interface{}{
		arg.ID, arg.PlayerA, arg.PlayerB, arg.PairPlayer1, arg.PairPlayer2, arg.League,
		arg.MatchDate, arg.Winner, arg.Completed,
	}
	for i := range arg.SetA {
		args = append(args, arg.SetA[i], arg.SetB[i])
	}
	args = append(args,
		arg.TotalPoints, arg.IsSweep, arg.IsSplit, arg.SetsPlayed, arg.Overtimes,
		arg.IsTotalOver, arg.IsTotalOdd, arg.TotalPointsSpread, arg.MatchSpread,
		arg.Source, arg.SourceURL, arg.CreatedAt, arg.UpdatedAt,
	)
	_, err := q.db.ExecContext(ctx, upsertMatch, args...)
	return err
}

func scanMatch(row scanner) (Match, error) {
	var m Match
	dest := []interface{}{
		&m.ID, &m.PlayerA, &m.PlayerB, &m.PairPlayer1, &m.PairPlayer2, &m.League,
		&m.MatchDate, &m.Winner, &m.Completed,
	}
	for i := range m.SetA {
		dest = append(dest, &m.SetA[i], &m.SetB[i])
	}
	dest = append(dest,
		&m.TotalPoints, &m.IsSweep, &m.IsSplit, &m.SetsPlayed, &m.Overtimes,
		&m.IsTotalOver, &m.IsTotalOdd, &m.TotalPointsSpread, &m.MatchSpread,
		&m.Source, &m.SourceURL, &m.CreatedAt, &m.UpdatedAt,
	)
	err := row.Scan(dest...)
	return m, err
}

const getMatch = `SELECT ` + matchColumns + ` FROM matches WHERE id = ?`

func (q *Queries) GetMatch(ctx context.Context, id string) (Match, error) {
	return scanMatch(q.db.QueryRowContext(ctx, getMatch, id))
}

const listMatchesByPair = `
SELECT ` + matchColumns + `
FROM matches
WHERE pair_player_1 = ? AND pair_player_2 = ?
ORDER BY match_date ASC, id ASC
`

func (q *Queries) ListMatchesByPair(ctx context.Context, arg Pair) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listMatchesByPair, arg.Player1, arg.Player2)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTrackedPairs = `
SELECT pair_player_1, pair_player_2 FROM matches WHERE completed = 1
UNION
SELECT player_1, player_2 FROM matchup_analytics
ORDER BY 1, 2
`

// ListTrackedPairs returns every pair with a completed match or a stored
// snapshot.
func (q *Queries) ListTrackedPairs(ctx context.Context) ([]Pair, error) {
	rows, err := q.db.QueryContext(ctx, listTrackedPairs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Pair
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.Player1, &p.Player2); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const searchPlayers = `
SELECT name FROM (
    SELECT player_a AS name FROM matches
    UNION
    SELECT player_b AS name FROM matches
)
WHERE name LIKE ? ESCAPE '\'
ORDER BY name
LIMIT ?
`

func (q *Queries) SearchPlayers(ctx context.Context, query string, limit int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, searchPlayers, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
