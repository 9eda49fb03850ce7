package db

import (
	"context"
)

const deleteSetStatsByMatch = `DELETE FROM set_stats WHERE match_id = ?`

func (q *Queries) DeleteSetStatsByMatch(ctx context.Context, matchID string) error {
	_, err := q.db.ExecContext(ctx, deleteSetStatsByMatch, matchID)
	return err
}

const insertSetStat = `
INSERT INTO set_stats (
    id, match_id, set_number, score_a, score_b, set_total_points,
    is_set_odd, went_to_overtime, is_set_total_over, set_total_spread, set_spread, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertSetStat(ctx context.Context, arg SetStat) error {
	_, err := q.db.ExecContext(ctx, insertSetStat,
		arg.ID,
		arg.MatchID,
		arg.SetNumber,
		arg.ScoreA,
		arg.ScoreB,
		arg.SetTotalPoints,
		arg.IsSetOdd,
		arg.WentToOvertime,
		arg.IsSetTotalOver,
		arg.SetTotalSpread,
		arg.SetSpread,
		arg.CreatedAt,
	)
	return err
}

const listSetStatsByMatch = `
SELECT id, match_id, set_number, score_a, score_b, set_total_points,
    is_set_odd, went_to_overtime, is_set_total_over, set_total_spread, set_spread, created_at
FROM set_stats
WHERE match_id = ?
ORDER BY set_number
`

func (q *Queries) ListSetStatsByMatch(ctx context.Context, matchID string) ([]SetStat, error) {
	rows, err := q.db.QueryContext(ctx, listSetStatsByMatch, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SetStat
	for rows.Next() {
		var s SetStat
		if err := rows.Scan(
			&s.ID,
			&s.MatchID,
			&s.SetNumber,
			&s.ScoreA,
			&s.ScoreB,
			&s.SetTotalPoints,
			&s.IsSetOdd,
			&s.WentToOvertime,
			&s.IsSetTotalOver,
			&s.SetTotalSpread,
			&s.SetSpread,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
