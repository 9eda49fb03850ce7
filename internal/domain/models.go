package domain

import (
	"time"
)

// PairKey identifies an unordered pair of players. Player1 always sorts
// before Player2, whatever order the players appear in a record.
type PairKey struct {
	Player1 string
	Player2 string
}

func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{Player1: a, Player2: b}
}

func (k PairKey) String() string {
	return k.Player1 + "|" + k.Player2
}

func (k PairKey) Has(player string) bool {
	return player == k.Player1 || player == k.Player2
}

type SetScore struct {
	ScoreA int
	ScoreB int

	// per-set market lines; TotalLine overrides the configured set line
	TotalLine *float64
	Spread    *float64
}

const (
	SourceManual  = "manual"
	SourceAIScore = "aiscore"
)

type MatchRecord struct {
	ID          string // nanoid
	PlayerA     string
	PlayerB     string
	League      string
	MatchDate   time.Time
	Winner      string // empty while the match is not completed
	Sets        []SetScore
	TotalPoints *int
	Overtimes   int
	Source      string
	SourceURL   string

	// market lines quoted for this match. TotalPointsLine overrides the
	// configured match line; MatchSpread is the points handicap on PlayerA
	// and is stored as quoted.
	TotalPointsLine *float64
	MatchSpread     *float64

	// derived, see analytics.DeriveFlags
	IsSweep     bool
	IsSplit     bool
	SetsPlayed  int
	IsTotalOver *bool
	IsTotalOdd  *bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *MatchRecord) Pair() PairKey {
	return NewPairKey(m.PlayerA, m.PlayerB)
}

func (m *MatchRecord) Completed() bool {
	return m.Winner != ""
}

type SetStats struct {
	ID             string // nanoid
	MatchID        string
	SetNumber      int
	ScoreA         int
	ScoreB         int
	TotalPoints    int
	IsOdd          bool
	WentToOvertime bool
	TotalLine      *float64
	Spread         *float64
	IsTotalOver    *bool
	CreatedAt      time.Time
}

type MatchupAnalytics struct {
	ID      string // nanoid
	Player1 string
	Player2 string

	TotalMatches  int
	Player1Wins   int
	Player2Wins   int
	Player1WinPct float64
	Player2WinPct float64

	// mean points margin over the matches each player won
	Player1AvgWinMargin *float64
	Player2AvgWinMargin *float64

	LongestPlayer1Streak int
	LongestPlayer2Streak int
	CurrentStreakPlayer  string
	CurrentStreakLength  int

	SweepCount     int
	SweepRate      float64
	SplitCount     int
	SplitRate      float64
	FourSetMatches int
	FiveSetMatches int
	FourSetRate    float64
	FiveSetRate    float64

	OverTotalCount     int
	UnderTotalCount    int
	OverTotalRate      float64
	LongestOverStreak  int
	LongestUnderStreak int

	Last5Player1Wins int
	Last5Player2Wins int
	Last10OverCount  int
	Last20OverCount  int
	Last30OverCount  int

	OddTotalCount  int
	EvenTotalCount int
	OddTotalRate   float64

	LastMeetingDate        *time.Time
	LastMeetingTotalPoints *int
	AvgTotalPoints         *float64
	AvgOvertimes           *float64

	LastUpdated time.Time
}

func (a *MatchupAnalytics) Pair() PairKey {
	return PairKey{Player1: a.Player1, Player2: a.Player2}
}
