package server

import (
	"time"

	"tabletennis-tracker/internal/domain"
	"tabletennis-tracker/internal/service"
)

type SetScore struct {
	A         int      `json:"a"`
	B         int      `json:"b"`
	TotalLine *float64 `json:"total_line,omitempty"`
	Spread    *float64 `json:"spread,omitempty"`
}

type MatchRequest struct {
	ID        string     `json:"id,omitempty"`
	PlayerA   string     `json:"player_a"`
	PlayerB   string     `json:"player_b"`
	League    string     `json:"league,omitempty"`
	MatchDate time.Time  `json:"match_date"`
	Winner    string     `json:"winner,omitempty"`
	Sets      []SetScore `json:"sets"`
	SourceURL string     `json:"source_url,omitempty"`

	TotalPointsLine *float64 `json:"total_points_line,omitempty"`
	MatchSpread     *float64 `json:"match_spread,omitempty"`
}

type Match struct {
	ID          string     `json:"id"`
	PlayerA     string     `json:"player_a"`
	PlayerB     string     `json:"player_b"`
	League      string     `json:"league"`
	MatchDate   time.Time  `json:"match_date"`
	Winner      string     `json:"winner,omitempty"`
	Completed   bool       `json:"completed"`
	Sets        []SetScore `json:"sets"`
	SetsPlayed  int        `json:"sets_played"`
	TotalPoints *int       `json:"total_points"`
	Overtimes   int        `json:"overtimes"`
	IsSweep     bool       `json:"is_sweep"`
	IsSplit     bool       `json:"is_split"`
	IsTotalOver *bool      `json:"is_total_over"`
	IsTotalOdd  *bool      `json:"is_total_odd"`
	Source      string     `json:"source"`
	SourceURL   string     `json:"source_url,omitempty"`

	TotalPointsLine *float64 `json:"total_points_line"`
	MatchSpread     *float64 `json:"match_spread"`
}

type SetStats struct {
	SetNumber      int      `json:"set_number"`
	ScoreA         int      `json:"score_a"`
	ScoreB         int      `json:"score_b"`
	TotalPoints    int      `json:"total_points"`
	IsOdd          bool     `json:"is_odd"`
	WentToOvertime bool     `json:"went_to_overtime"`
	TotalLine      *float64 `json:"total_line"`
	Spread         *float64 `json:"spread"`
	IsTotalOver    *bool    `json:"is_total_over"`
}

type MatchDetail struct {
	Match
	SetStats []SetStats `json:"set_stats"`
}

type Matchup struct {
	Player1      string `json:"player_1"`
	Player2      string `json:"player_2"`
	TotalMatches int    `json:"total_matches"`

	Player1Wins   int     `json:"player_1_wins"`
	Player2Wins   int     `json:"player_2_wins"`
	Player1WinPct float64 `json:"player_1_win_pct"`
	Player2WinPct float64 `json:"player_2_win_pct"`

	Player1AvgWinMargin *float64 `json:"player_1_avg_win_margin"`
	Player2AvgWinMargin *float64 `json:"player_2_avg_win_margin"`

	CurrentStreakPlayer  string `json:"current_streak_player,omitempty"`
	CurrentStreakLength  int    `json:"current_streak_length"`
	LongestPlayer1Streak int    `json:"longest_player_1_streak"`
	LongestPlayer2Streak int    `json:"longest_player_2_streak"`

	SweepCount     int     `json:"sweep_count"`
	SweepRate      float64 `json:"sweep_rate"`
	SplitCount     int     `json:"split_count"`
	SplitRate      float64 `json:"split_rate"`
	FourSetMatches int     `json:"four_set_matches"`
	FourSetRate    float64 `json:"four_set_rate"`
	FiveSetMatches int     `json:"five_set_matches"`
	FiveSetRate    float64 `json:"five_set_rate"`

	OverTotalCount     int     `json:"over_total_count"`
	UnderTotalCount    int     `json:"under_total_count"`
	OverTotalRate      float64 `json:"over_total_rate"`
	LongestOverStreak  int     `json:"longest_over_streak"`
	LongestUnderStreak int     `json:"longest_under_streak"`

	Last5Player1Wins int `json:"last_5_player_1_wins"`
	Last5Player2Wins int `json:"last_5_player_2_wins"`
	Last10OverCount  int `json:"last_10_over_count"`
	Last20OverCount  int `json:"last_20_over_count"`
	Last30OverCount  int `json:"last_30_over_count"`

	OddTotalCount  int     `json:"odd_total_count"`
	EvenTotalCount int     `json:"even_total_count"`
	OddTotalRate   float64 `json:"odd_total_rate"`

	LastMeetingDate        *time.Time `json:"last_meeting_date"`
	LastMeetingTotalPoints *int       `json:"last_meeting_total_points"`
	AvgTotalPoints         *float64   `json:"avg_total_points"`
	AvgOvertimes           *float64   `json:"avg_overtimes"`

	LastUpdated time.Time `json:"last_updated"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (r MatchRequest) toDomain() domain.MatchRecord {
	rec := domain.MatchRecord{
		ID:        r.ID,
		PlayerA:   r.PlayerA,
		PlayerB:   r.PlayerB,
		League:    r.League,
		MatchDate: r.MatchDate,
		Winner:    r.Winner,
		Sets:      make([]domain.SetScore, len(r.Sets)),
		Source:    domain.SourceManual,
		SourceURL: r.SourceURL,

		TotalPointsLine: r.TotalPointsLine,
		MatchSpread:     r.MatchSpread,
	}
	for i, s := range r.Sets {
		rec.Sets[i] = domain.SetScore{ScoreA: s.A, ScoreB: s.B, TotalLine: s.TotalLine, Spread: s.Spread}
	}
	return rec
}

func toMatch(m domain.MatchRecord) Match {
	out := Match{
		ID:          m.ID,
		PlayerA:     m.PlayerA,
		PlayerB:     m.PlayerB,
		League:      m.League,
		MatchDate:   m.MatchDate,
		Winner:      m.Winner,
		Completed:   m.Completed(),
		Sets:        make([]SetScore, len(m.Sets)),
		SetsPlayed:  m.SetsPlayed,
		TotalPoints: m.TotalPoints,
		Overtimes:   m.Overtimes,
		IsSweep:     m.IsSweep,
		IsSplit:     m.IsSplit,
		IsTotalOver: m.IsTotalOver,
		IsTotalOdd:  m.IsTotalOdd,
		Source:      m.Source,
		SourceURL:   m.SourceURL,

		TotalPointsLine: m.TotalPointsLine,
		MatchSpread:     m.MatchSpread,
	}
	for i, s := range m.Sets {
		out.Sets[i] = SetScore{A: s.ScoreA, B: s.ScoreB, TotalLine: s.TotalLine, Spread: s.Spread}
	}
	return out
}

func toMatchDetail(d *service.MatchDetail) MatchDetail {
	out := MatchDetail{
		Match:    toMatch(d.Match),
		SetStats: make([]SetStats, len(d.Sets)),
	}
	for i, s := range d.Sets {
		out.SetStats[i] = SetStats{
			SetNumber:      s.SetNumber,
			ScoreA:         s.ScoreA,
			ScoreB:         s.ScoreB,
			TotalPoints:    s.TotalPoints,
			IsOdd:          s.IsOdd,
			WentToOvertime: s.WentToOvertime,
			TotalLine:      s.TotalLine,
			Spread:         s.Spread,
			IsTotalOver:    s.IsTotalOver,
		}
	}
	return out
}

func toMatchup(a *domain.MatchupAnalytics) Matchup {
	return Matchup{
		Player1:                a.Player1,
		Player2:                a.Player2,
		TotalMatches:           a.TotalMatches,
		Player1Wins:            a.Player1Wins,
		Player2Wins:            a.Player2Wins,
		Player1WinPct:          a.Player1WinPct,
		Player2WinPct:          a.Player2WinPct,
		Player1AvgWinMargin:    a.Player1AvgWinMargin,
		Player2AvgWinMargin:    a.Player2AvgWinMargin,
		CurrentStreakPlayer:    a.CurrentStreakPlayer,
		CurrentStreakLength:    a.CurrentStreakLength,
		LongestPlayer1Streak:   a.LongestPlayer1Streak,
		LongestPlayer2Streak:   a.LongestPlayer2Streak,
		SweepCount:             a.SweepCount,
		SweepRate:              a.SweepRate,
		SplitCount:             a.SplitCount,
		SplitRate:              a.SplitRate,
		FourSetMatches:         a.FourSetMatches,
		FourSetRate:            a.FourSetRate,
		FiveSetMatches:         a.FiveSetMatches,
		FiveSetRate:            a.FiveSetRate,
		OverTotalCount:         a.OverTotalCount,
		UnderTotalCount:        a.UnderTotalCount,
		OverTotalRate:          a.OverTotalRate,
		LongestOverStreak:      a.LongestOverStreak,
		LongestUnderStreak:     a.LongestUnderStreak,
		Last5Player1Wins:       a.Last5Player1Wins,
		Last5Player2Wins:       a.Last5Player2Wins,
		Last10OverCount:        a.Last10OverCount,
		Last20OverCount:        a.Last20OverCount,
		Last30OverCount:        a.Last30OverCount,
		OddTotalCount:          a.OddTotalCount,
		EvenTotalCount:         a.EvenTotalCount,
		OddTotalRate:           a.OddTotalRate,
		LastMeetingDate:        a.LastMeetingDate,
		LastMeetingTotalPoints: a.LastMeetingTotalPoints,
		AvgTotalPoints:         a.AvgTotalPoints,
		AvgOvertimes:           a.AvgOvertimes,
		LastUpdated:            a.LastUpdated,
	}
}
