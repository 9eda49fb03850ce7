package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabletennis-tracker/internal/domain"
)

func TestDeriveFlags(t *testing.T) {
	tests := []struct {
		name      string
		record    domain.MatchRecord
		lines     Lines
		wantSweep bool
		wantSplit bool
		wantSets  int
		wantTotal *int
		wantOdd   *bool
		wantOver  *bool
		wantOT    int
	}{
		{
			name:      "sweep under the line",
			record:    match(1, "alice", aliceSweep...),
			lines:     Lines{MatchTotal: 60.5},
			wantSweep: true,
			wantSets:  3,
			wantTotal: intPtr(54),
			wantOdd:   boolPtr(false),
			wantOver:  boolPtr(false),
		},
		{
			name:      "five set split over the line",
			record:    match(1, "bob", s(11, 5), s(9, 11), s(12, 10), s(6, 11), s(8, 11)),
			lines:     Lines{MatchTotal: 90.5},
			wantSplit: true,
			wantSets:  5,
			wantTotal: intPtr(94),
			wantOdd:   boolPtr(false),
			wantOver:  boolPtr(true),
			wantOT:    1,
		},
		{
			name:      "four sets is neither",
			record:    match(1, "alice", s(11, 5), s(9, 11), s(11, 7), s(11, 3)),
			wantSets:  4,
			wantTotal: intPtr(68),
			wantOdd:   boolPtr(false),
		},
		{
			name:      "push leaves over unset",
			record:    match(1, "alice", s(11, 4)),
			lines:     Lines{MatchTotal: 15},
			wantSweep: true,
			wantSets:  1,
			wantTotal: intPtr(15),
			wantOdd:   boolPtr(true),
		},
		{
			name:      "quoted line beats the configured one",
			record:    withLine(match(1, "alice", aliceSweep...), 50.5),
			lines:     Lines{MatchTotal: 60.5},
			wantSweep: true,
			wantSets:  3,
			wantTotal: intPtr(54),
			wantOdd:   boolPtr(false),
			wantOver:  boolPtr(true),
		},
		{
			name:      "quoted line applies without a configured one",
			record:    withLine(match(1, "alice", aliceSweep...), 55.5),
			wantSweep: true,
			wantSets:  3,
			wantTotal: intPtr(54),
			wantOdd:   boolPtr(false),
			wantOver:  boolPtr(false),
		},
		{
			name:     "in progress without sets",
			record:   match(1, ""),
			lines:    Lines{MatchTotal: 70.5},
			wantSets: 0,
		},
		{
			name:      "in progress keeps totals but no outcome",
			record:    match(1, "", s(11, 4), s(11, 9)),
			wantSets:  2,
			wantTotal: intPtr(35),
			wantOdd:   boolPtr(true),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.record
			DeriveFlags(&rec, tt.lines)

			assert.Equal(t, tt.wantSweep, rec.IsSweep)
			assert.Equal(t, tt.wantSplit, rec.IsSplit)
			assert.False(t, rec.IsSweep && rec.IsSplit)
			assert.Equal(t, tt.wantSets, rec.SetsPlayed)
			assert.Equal(t, tt.wantTotal, rec.TotalPoints)
			assert.Equal(t, tt.wantOdd, rec.IsTotalOdd)
			assert.Equal(t, tt.wantOver, rec.IsTotalOver)
			assert.Equal(t, tt.wantOT, rec.Overtimes)
		})
	}
}

func TestDeriveFlagsMatchesAggregate(t *testing.T) {
	history := randomHistory(rand.New(rand.NewSource(3)), 40)

	snap, err := NewAggregator(Lines{MatchTotal: 70.5}, fixedTime).Aggregate(testPair, history)
	require.NoError(t, err)

	var sweeps, splits, overs int
	for i := range history {
		rec := history[i]
		if !rec.Completed() {
			continue
		}
		DeriveFlags(&rec, Lines{MatchTotal: 70.5})
		if rec.IsSweep {
			sweeps++
		}
		if rec.IsSplit {
			splits++
		}
		if rec.IsTotalOver != nil && *rec.IsTotalOver {
			overs++
		}
	}

	assert.Equal(t, snap.SweepCount, sweeps)
	assert.Equal(t, snap.SplitCount, splits)
	assert.Equal(t, snap.OverTotalCount, overs)
}

func TestSetBreakdown(t *testing.T) {
	rec := match(1, "alice", s(11, 5), s(12, 14), s(11, 9))
	rec.ID = "abc"

	got := SetBreakdown(&rec, Lines{SetTotal: 18.5})
	require.Len(t, got, 3)

	assert.Equal(t, domain.SetStats{
		MatchID: "abc", SetNumber: 1, ScoreA: 11, ScoreB: 5,
		TotalPoints: 16, IsOdd: false, WentToOvertime: false, IsTotalOver: boolPtr(false),
	}, got[0])
	assert.Equal(t, domain.SetStats{
		MatchID: "abc", SetNumber: 2, ScoreA: 12, ScoreB: 14,
		TotalPoints: 26, IsOdd: false, WentToOvertime: true, IsTotalOver: boolPtr(true),
	}, got[1])
	assert.Equal(t, 20, got[2].TotalPoints)
	assert.False(t, got[2].WentToOvertime)
}

func TestSetBreakdownQuotedLines(t *testing.T) {
	rec := match(1, "alice",
		domain.SetScore{ScoreA: 11, ScoreB: 5, TotalLine: floatPtr(15.5), Spread: floatPtr(-4.5)},
		s(11, 7),
	)

	got := SetBreakdown(&rec, Lines{SetTotal: 18.5})
	require.Len(t, got, 2)

	assert.Equal(t, floatPtr(15.5), got[0].TotalLine)
	assert.Equal(t, floatPtr(-4.5), got[0].Spread)
	assert.Equal(t, boolPtr(true), got[0].IsTotalOver)

	assert.Nil(t, got[1].TotalLine)
	assert.Nil(t, got[1].Spread)
	assert.Equal(t, boolPtr(false), got[1].IsTotalOver)
}

func TestValidateRecord(t *testing.T) {
	ok := match(1, "bob", bobSweep...)
	assert.NoError(t, ValidateRecord(&ok))

	bad := match(1, "carol", bobSweep...)
	bad.ID = "bad-id"
	err := ValidateRecord(&bad)
	require.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "bad-id")
	assert.Contains(t, err.Error(), `winner "carol"`)
}

func withLine(rec domain.MatchRecord, line float64) domain.MatchRecord {
	rec.TotalPointsLine = &line
	return rec
}

func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
