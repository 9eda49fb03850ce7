package analytics

import (
	"errors"
	"fmt"
	"math"

	"tabletennis-tracker/internal/constants"
	"tabletennis-tracker/internal/domain"
)

var ErrInvalidRecord = errors.New("invalid match record")

// ValidationError reports the first malformed record of a history. The whole
// computation for the pair is rejected when one is returned.
type ValidationError struct {
	Index   int
	MatchID string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.MatchID != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Index, e.MatchID, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRecord
}

// ValidateRecord checks a single record against its own pair.
func ValidateRecord(rec *domain.MatchRecord) error {
	return validate(rec.Pair(), 0, rec)
}

func validate(pair domain.PairKey, idx int, rec *domain.MatchRecord) error {
	fail := func(format string, args ...any) error {
		return &ValidationError{Index: idx, MatchID: rec.ID, Reason: fmt.Sprintf(format, args...)}
	}

	if rec.PlayerA == "" || rec.PlayerB == "" {
		return fail("missing player")
	}
	if rec.PlayerA == rec.PlayerB {
		return fail("player %q listed on both sides", rec.PlayerA)
	}
	if got := rec.Pair(); got != pair {
		return fail("record belongs to pair %s, not %s", got, pair)
	}
	if len(rec.Sets) > constants.MaxSetsPerMatch {
		return fail("%d sets recorded, at most %d allowed", len(rec.Sets), constants.MaxSetsPerMatch)
	}
	if !validLine(rec.TotalPointsLine) {
		return fail("total points line %v is not a finite non-negative number", *rec.TotalPointsLine)
	}
	if !validSpread(rec.MatchSpread) {
		return fail("match spread %v is not finite", *rec.MatchSpread)
	}
	for i, s := range rec.Sets {
		if s.ScoreA < 0 || s.ScoreB < 0 {
			return fail("set %d has a negative score", i+1)
		}
		if !validLine(s.TotalLine) {
			return fail("set %d total line %v is not a finite non-negative number", i+1, *s.TotalLine)
		}
		if !validSpread(s.Spread) {
			return fail("set %d spread %v is not finite", i+1, *s.Spread)
		}
	}

	if !rec.Completed() {
		return nil
	}

	if !pair.Has(rec.Winner) {
		return fail("winner %q is not a player in the match", rec.Winner)
	}
	if len(rec.Sets) == 0 {
		return fail("completed match has no set scores")
	}
	for i, s := range rec.Sets {
		if s.ScoreA == s.ScoreB {
			return fail("set %d is tied at %d", i+1, s.ScoreA)
		}
	}
	o := outcomeOf(rec)
	if o.winnerSets <= o.loserSets {
		return fail("winner %q took %d sets against %d", rec.Winner, o.winnerSets, o.loserSets)
	}
	return nil
}

// validLine accepts an unset line or a finite non-negative one.
func validLine(v *float64) bool {
	return v == nil || (validSpread(v) && *v >= 0)
}

func validSpread(v *float64) bool {
	return v == nil || (!math.IsNaN(*v) && !math.IsInf(*v, 0))
}
