package service

import (
	"context"
	"fmt"
	"net/url"

	"tabletennis-tracker/internal/analytics"
	"tabletennis-tracker/internal/api"
	"tabletennis-tracker/internal/constants"
	"tabletennis-tracker/internal/domain"
	"tabletennis-tracker/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DocumentFetcher is satisfied by *api.PageClient.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)
	GetRateLimitInfo() api.RateLimitInfo
}

type CollectorService struct {
	pages    DocumentFetcher
	matchSvc *MatchService
	logger   zerolog.Logger
}

func NewCollectorService(pages DocumentFetcher, matchSvc *MatchService, logger zerolog.Logger) *CollectorService {
	return &CollectorService{pages: pages, matchSvc: matchSvc, logger: logger}
}

type CollectResult struct {
	RunID    string
	Links    int
	Recorded int
	Skipped  int

	// remote limits as of the last page fetched in this run
	RateLimit api.RateLimitInfo
}

// Run does one collection pass: the listing page, then every linked match
// page. Pages that fail to fetch or parse are skipped and counted; only a
// failing listing page or store aborts the run.
func (s *CollectorService) Run(ctx context.Context, listingURL string) (*CollectResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CollectTimeout)
	defer cancel()

	result := &CollectResult{RunID: uuid.NewString()}
	logger := s.logger.With().Str("run_id", result.RunID).Logger()

	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("bad listing url %q: %w", listingURL, err)
	}

	logger.Info().Str("url", listingURL).Msg("collection started")

	listing, err := s.fetch(ctx, listingURL)
	if err != nil {
		logger.Error().Err(err).Str("url", listingURL).Msg("failed to fetch listing page")
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	links := scraper.ExtractMatchLinks(listing, base)
	if len(links) > constants.MaxMatchLinks {
		links = links[:constants.MaxMatchLinks]
	}
	result.Links = len(links)

	records := make([]*domain.MatchRecord, len(links))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.PageFetchConcurrency)

	for i, link := range links {
		g.Go(func() error {
			doc, err := s.fetch(gCtx, link.URL)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				logger.Warn().Err(err).Str("url", link.URL).Msg("failed to fetch match page")
				return nil
			}
			rec, err := scraper.ParseMatchPage(doc, link.URL)
			if err != nil {
				logger.Warn().Err(err).Str("url", link.URL).Msg("failed to parse match page")
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collection interrupted: %w", err)
	}

	batch := make([]domain.MatchRecord, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			result.Skipped++
			continue
		}
		if err := analytics.ValidateRecord(rec); err != nil {
			logger.Warn().Err(err).Str("url", rec.SourceURL).Msg("scraped record is not valid")
			result.Skipped++
			continue
		}
		batch = append(batch, *rec)
	}

	if _, err := s.matchSvc.RecordBatch(ctx, batch); err != nil {
		return nil, err
	}
	result.Recorded = len(batch)
	result.RateLimit = s.pages.GetRateLimitInfo()

	logger.Info().
		Int("links", result.Links).
		Int("recorded", result.Recorded).
		Int("skipped", result.Skipped).
		Int("requests", result.RateLimit.Requests).
		Int("remaining", result.RateLimit.Remaining).
		Msg("collection finished")
	return result, nil
}

func (s *CollectorService) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.PageFetchTimeout)
	defer cancel()

	return s.pages.FetchDocument(ctx, pageURL)
}
