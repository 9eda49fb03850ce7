package db

import (
	"time"
)

type Match struct {
	ID          string
	PlayerA     string
	PlayerB     string
	PairPlayer1 string
	PairPlayer2 string
	League      string
	MatchDate   time.Time
	Winner      *string
	Completed   bool
	SetA        [5]*int64
	SetB        [5]*int64
	TotalPoints *int64
	IsSweep     bool
	IsSplit     bool
	SetsPlayed  int64
	Overtimes   int64
	IsTotalOver *bool
	IsTotalOdd  *bool

	TotalPointsSpread *float64
	MatchSpread       *float64

	Source    string
	SourceURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Pair struct {
	Player1 string
	Player2 string
}

type SetStat struct {
	ID             string
	MatchID        string
	SetNumber      int64
	ScoreA         int64
	ScoreB         int64
	SetTotalPoints int64
	IsSetOdd       bool
	WentToOvertime bool
	IsSetTotalOver *bool
	SetTotalSpread *float64
	SetSpread      *float64
	CreatedAt      time.Time
}

type MatchupAnalytic struct {
	ID                     string
	Player1                string
	Player2                string
	TotalMatches           int64
	Player1Wins            int64
	Player2Wins            int64
	Player1WinPct          float64
	Player2WinPct          float64
	Player1AvgWinMargin    *float64
	Player2AvgWinMargin    *float64
	LongestPlayer1Streak   int64
	LongestPlayer2Streak   int64
	CurrentStreakPlayer    *string
	CurrentStreakLength    int64
	SweepCount             int64
	SweepRate              float64
	SplitCount             int64
	SplitRate              float64
	FourSetMatches         int64
	FiveSetMatches         int64
	FourSetRate            float64
	FiveSetRate            float64
	OverTotalCount         int64
	UnderTotalCount        int64
	OverTotalRate          float64
	LongestOverStreak      int64
	LongestUnderStreak     int64
	Last5Player1Wins       int64
	Last5Player2Wins       int64
	Last10OverCount        int64
	Last20OverCount        int64
	Last30OverCount        int64
	OddTotalCount          int64
	EvenTotalCount         int64
	OddTotalRate           float64
	LastMeetingDate        *time.Time
	LastMeetingTotalPoints *int64
	AvgTotalPoints         *float64
	AvgOvertimes           *float64
	LastUpdated            time.Time
}
