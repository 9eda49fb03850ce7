package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"tabletennis-tracker/internal/constants"
	"tabletennis-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

var ErrMatchNotFound = errors.New("no match block on page")

// A match page carries one block like:
//
//	<div class="match-detail" data-match-id="8kx2" data-status="finished" data-start="2025-04-10T18:30:00Z">
//	  <span class="league">Setka Cup</span>
//	  <div class="team home win"><span class="name">Ivan Petrov</span></div>
//	  <div class="team away"><span class="name">Oleg Sidorov</span></div>
//	  <table class="score-table">
//	    <tr class="home"><td class="set">11</td><td class="set">9</td>...</tr>
//	    <tr class="away"><td class="set">7</td><td class="set">11</td>...</tr>
//	  </table>
//	</div>
//
// data-start may also be a unix timestamp in seconds. The winner comes from
// the "win" class, or from the set count once the status is finished.
const (
	matchBlockSelector = "div.match-detail"

	statusFinished = "finished"
)

// ParseMatchPage reads a match page into a record. Unfinished matches come
// back without a winner.
func ParseMatchPage(doc *goquery.Document, pageURL string) (*domain.MatchRecord, error) {
	block := doc.Find(matchBlockSelector).First()
	if block.Length() == 0 {
		return nil, ErrMatchNotFound
	}

	home := cleanText(block.Find(".team.home .name").First())
	away := cleanText(block.Find(".team.away .name").First())
	if home == "" || away == "" {
		return nil, fmt.Errorf("%s: missing player names", pageURL)
	}

	start, err := parseStart(block.AttrOr("data-start", ""))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}

	sets, err := parseSets(block.Find(".score-table tr.home td.set"), block.Find(".score-table tr.away td.set"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}
	if len(sets) > constants.MaxSetsPerMatch {
		return nil, fmt.Errorf("%s: %d sets on page", pageURL, len(sets))
	}

	rec := &domain.MatchRecord{
		ID:        matchID(block, pageURL),
		PlayerA:   home,
		PlayerB:   away,
		League:    cleanText(block.Find(".league").First()),
		MatchDate: start,
		Source:    domain.SourceAIScore,
		SourceURL: pageURL,
		Sets:      sets,
	}
	var homeSets, awaySets int
	for _, set := range sets {
		switch {
		case set.ScoreA > set.ScoreB:
			homeSets++
		case set.ScoreB > set.ScoreA:
			awaySets++
		}
	}

	switch {
	case block.Find(".team.home").HasClass("win"):
		rec.Winner = home
	case block.Find(".team.away").HasClass("win"):
		rec.Winner = away
	case strings.EqualFold(block.AttrOr("data-status", ""), statusFinished):
		switch {
		case homeSets > awaySets:
			rec.Winner = home
		case awaySets > homeSets:
			rec.Winner = away
		default:
			return nil, fmt.Errorf("%s: finished at %d-%d sets", pageURL, homeSets, awaySets)
		}
	}

	return rec, nil
}

func matchID(block *goquery.Selection, pageURL string) string {
	id := strings.TrimSpace(block.AttrOr("data-match-id", ""))
	if id == "" {
		if u, err := url.Parse(pageURL); err == nil {
			id = path.Base(strings.TrimSuffix(u.Path, "/"))
		}
	}
	return domain.SourceAIScore + "-" + id
}

func parseStart(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing start time")
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad start time %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// parseSets pairs the two score rows column by column. A column where both
// cells are blank is an unplayed set and is skipped; a column with only one
// blank cell is an error.
func parseSets(home, away *goquery.Selection) ([]domain.SetScore, error) {
	columns := max(home.Length(), away.Length())
	sets := []domain.SetScore{}
	for i := 0; i < columns; i++ {
		homeText, awayText := scoreCell(home, i), scoreCell(away, i)
		if homeText == "" && awayText == "" {
			continue
		}
		if homeText == "" || awayText == "" {
			return nil, fmt.Errorf("set %d: home %q against away %q", i+1, homeText, awayText)
		}
		a, err := strconv.Atoi(homeText)
		if err != nil {
			return nil, fmt.Errorf("set %d: home score: %w", i+1, err)
		}
		b, err := strconv.Atoi(awayText)
		if err != nil {
			return nil, fmt.Errorf("set %d: away score: %w", i+1, err)
		}
		sets = append(sets, domain.SetScore{ScoreA: a, ScoreB: b})
	}
	return sets, nil
}

// scoreCell returns the i-th cell's text, with "-" and a missing cell read as blank.
func scoreCell(row *goquery.Selection, i int) string {
	if i >= row.Length() {
		return ""
	}
	text := cleanText(row.Eq(i))
	if text == "-" {
		return ""
	}
	return text
}

func cleanText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
