package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const matchLinkSelector = `a[href*="table-tennis/match-"]`

type MatchLink struct {
	Text string
	URL  string
}

// ExtractMatchLinks returns the match page links of a listing page in
// document order, resolved against base and without duplicates.
func ExtractMatchLinks(doc *goquery.Document, base *url.URL) []MatchLink {
	seen := make(map[string]struct{})
	links := []MatchLink{}

	doc.Find(matchLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := ref
		if base != nil {
			abs = base.ResolveReference(ref)
		}
		abs.Fragment = ""

		key := abs.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		links = append(links, MatchLink{
			Text: strings.Join(strings.Fields(s.Text()), " "),
			URL:  key,
		})
	})

	return links
}
