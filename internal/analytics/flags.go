package analytics

import (
	"tabletennis-tracker/internal/constants"
	"tabletennis-tracker/internal/domain"
)

// Lines are the configured over/under reference totals. A line quoted on a
// record or set takes precedence. A zero line disables over/under.
type Lines struct {
	MatchTotal float64
	SetTotal   float64
}

func (l Lines) matchLine(rec *domain.MatchRecord) float64 {
	if rec.TotalPointsLine != nil {
		return *rec.TotalPointsLine
	}
	return l.MatchTotal
}

func (l Lines) setLine(s domain.SetScore) float64 {
	if s.TotalLine != nil {
		return *s.TotalLine
	}
	return l.SetTotal
}

// outcome is everything the flags and the rollup read from one record. Both
// go through outcomeOf so a record is never classified two different ways.
type outcome struct {
	winnerSets   int
	loserSets    int
	setsPlayed   int
	totalPoints  int
	winnerPoints int
	loserPoints  int
	overtimes    int
}

func outcomeOf(rec *domain.MatchRecord) outcome {
	var o outcome
	var pointsA, pointsB, setsA, setsB int
	for _, s := range rec.Sets {
		pointsA += s.ScoreA
		pointsB += s.ScoreB
		switch {
		case s.ScoreA > s.ScoreB:
			setsA++
		case s.ScoreB > s.ScoreA:
			setsB++
		}
		if wentToDeuce(s) {
			o.overtimes++
		}
	}
	o.setsPlayed = len(rec.Sets)
	o.totalPoints = pointsA + pointsB

	switch rec.Winner {
	case rec.PlayerA:
		o.winnerSets, o.loserSets = setsA, setsB
		o.winnerPoints, o.loserPoints = pointsA, pointsB
	case rec.PlayerB:
		o.winnerSets, o.loserSets = setsB, setsA
		o.winnerPoints, o.loserPoints = pointsB, pointsA
	}
	return o
}

// sweep: the loser took no set.
func (o outcome) sweep() bool {
	return o.winnerSets > 0 && o.loserSets == 0
}

// split: the loser took sets and the deciding set was played (3-2, 2-1).
// A 3-1 win is neither a sweep nor a split.
func (o outcome) split() bool {
	return o.loserSets > 0 && o.winnerSets-o.loserSets == 1
}

func wentToDeuce(s domain.SetScore) bool {
	return s.ScoreA >= constants.DeuceScore && s.ScoreB >= constants.DeuceScore
}

// overUnder compares a total with a line. Equal to the line is a push and
// reports neither.
func overUnder(total int, line float64) (over, under bool) {
	if line <= 0 {
		return false, false
	}
	t := float64(total)
	return t > line, t < line
}

func overFlag(total int, line float64) *bool {
	over, under := overUnder(total, line)
	if !over && !under {
		return nil
	}
	return &over
}

// DeriveFlags fills the derived per-record fields in place.
func DeriveFlags(rec *domain.MatchRecord, lines Lines) {
	o := outcomeOf(rec)

	rec.SetsPlayed = o.setsPlayed
	rec.Overtimes = o.overtimes
	rec.IsSweep = false
	rec.IsSplit = false
	rec.TotalPoints = nil
	rec.IsTotalOdd = nil
	rec.IsTotalOver = nil

	if o.setsPlayed == 0 {
		return
	}

	total := o.totalPoints
	odd := total%2 == 1
	rec.TotalPoints = &total
	rec.IsTotalOdd = &odd
	rec.IsTotalOver = overFlag(total, lines.matchLine(rec))

	if rec.Completed() {
		rec.IsSweep = o.sweep()
		rec.IsSplit = o.split()
	}
}

// SetBreakdown returns one SetStats row per played set. IDs are left empty
// for the repository to assign.
func SetBreakdown(rec *domain.MatchRecord, lines Lines) []domain.SetStats {
	out := make([]domain.SetStats, 0, len(rec.Sets))
	for i, s := range rec.Sets {
		total := s.ScoreA + s.ScoreB
		out = append(out, domain.SetStats{
			MatchID:        rec.ID,
			SetNumber:      i + 1,
			ScoreA:         s.ScoreA,
			ScoreB:         s.ScoreB,
			TotalPoints:    total,
			IsOdd:          total%2 == 1,
			WentToOvertime: wentToDeuce(s),
			TotalLine:      s.TotalLine,
			Spread:         s.Spread,
			IsTotalOver:    overFlag(total, lines.setLine(s)),
		})
	}
	return out
}
