package analytics

import (
	"sort"
	"time"

	"tabletennis-tracker/internal/constants"
	"tabletennis-tracker/internal/domain"
)

// Aggregator rolls a pair's match history up into a MatchupAnalytics
// snapshot. It holds no state between calls and does no I/O.
type Aggregator struct {
	lines Lines
	now   func() time.Time
}

func NewAggregator(lines Lines, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{lines: lines, now: now}
}

func (a *Aggregator) Lines() Lines {
	return a.lines
}

// Aggregate validates every record, keeps the completed ones in
// chronological order and computes the snapshot in one forward pass. Apart
// from LastUpdated the result depends only on pair and history.
func (a *Aggregator) Aggregate(pair domain.PairKey, history []domain.MatchRecord) (*domain.MatchupAnalytics, error) {
	for i := range history {
		if err := validate(pair, i, &history[i]); err != nil {
			return nil, err
		}
	}

	completed := make([]domain.MatchRecord, 0, len(history))
	for _, rec := range history {
		if rec.Completed() {
			completed = append(completed, rec)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		if !completed[i].MatchDate.Equal(completed[j].MatchDate) {
			return completed[i].MatchDate.Before(completed[j].MatchDate)
		}
		return completed[i].ID < completed[j].ID
	})

	snap := &domain.MatchupAnalytics{
		Player1:     pair.Player1,
		Player2:     pair.Player2,
		LastUpdated: a.now().UTC(),
	}
	total := len(completed)
	snap.TotalMatches = total
	if total == 0 {
		return snap, nil
	}

	var (
		streakPlayer       string
		streakLen          int
		overRun, underRun  int
		sumPoints, sumOT   int
		margin1, margin2   int
		marginN1, marginN2 int
	)
	overs := make([]bool, total)

	for i := range completed {
		rec := &completed[i]
		o := outcomeOf(rec)
		p1Won := rec.Winner == pair.Player1

		if p1Won {
			snap.Player1Wins++
			margin1 += o.winnerPoints - o.loserPoints
			marginN1++
		} else {
			snap.Player2Wins++
			margin2 += o.winnerPoints - o.loserPoints
			marginN2++
		}

		if rec.Winner == streakPlayer {
			streakLen++
		} else {
			streakPlayer, streakLen = rec.Winner, 1
		}
		if p1Won {
			snap.LongestPlayer1Streak = max(snap.LongestPlayer1Streak, streakLen)
		} else {
			snap.LongestPlayer2Streak = max(snap.LongestPlayer2Streak, streakLen)
		}

		if o.sweep() {
			snap.SweepCount++
		}
		if o.split() {
			snap.SplitCount++
		}
		switch o.setsPlayed {
		case 4:
			snap.FourSetMatches++
		case 5:
			snap.FiveSetMatches++
		}

		if o.totalPoints%2 == 1 {
			snap.OddTotalCount++
		} else {
			snap.EvenTotalCount++
		}

		over, under := overUnder(o.totalPoints, a.lines.matchLine(rec))
		overs[i] = over
		switch {
		case over:
			snap.OverTotalCount++
			overRun++
			underRun = 0
		case under:
			snap.UnderTotalCount++
			underRun++
			overRun = 0
		default:
			overRun, underRun = 0, 0
		}
		snap.LongestOverStreak = max(snap.LongestOverStreak, overRun)
		snap.LongestUnderStreak = max(snap.LongestUnderStreak, underRun)

		sumPoints += o.totalPoints
		sumOT += o.overtimes
	}

	snap.CurrentStreakPlayer = streakPlayer
	snap.CurrentStreakLength = streakLen

	for _, rec := range tail(completed, constants.RecentWinsWindow) {
		if rec.Winner == pair.Player1 {
			snap.Last5Player1Wins++
		} else {
			snap.Last5Player2Wins++
		}
	}
	snap.Last10OverCount = countTrue(tail(overs, constants.OverWindowShort))
	snap.Last20OverCount = countTrue(tail(overs, constants.OverWindowMedium))
	snap.Last30OverCount = countTrue(tail(overs, constants.OverWindowLong))

	snap.Player1WinPct = ratio(snap.Player1Wins, total)
	snap.Player2WinPct = ratio(snap.Player2Wins, total)
	snap.SweepRate = ratio(snap.SweepCount, total)
	snap.SplitRate = ratio(snap.SplitCount, total)
	snap.FourSetRate = ratio(snap.FourSetMatches, total)
	snap.FiveSetRate = ratio(snap.FiveSetMatches, total)
	snap.OverTotalRate = ratio(snap.OverTotalCount, total)
	snap.OddTotalRate = ratio(snap.OddTotalCount, total)

	snap.Player1AvgWinMargin = average(margin1, marginN1)
	snap.Player2AvgWinMargin = average(margin2, marginN2)
	snap.AvgTotalPoints = average(sumPoints, total)
	snap.AvgOvertimes = average(sumOT, total)

	last := completed[total-1]
	lastDate := last.MatchDate
	lastPoints := outcomeOf(&last).totalPoints
	snap.LastMeetingDate = &lastDate
	snap.LastMeetingTotalPoints = &lastPoints

	return snap, nil
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func countTrue(s []bool) int {
	n := 0
	for _, v := range s {
		if v {
			n++
		}
	}
	return n
}

func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

func average(sum, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := float64(sum) / float64(n)
	return &v
}
