package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tabletennis-tracker/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limited by remote site")

// StatusError is returned for any non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	if e.Code == fasthttp.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// PageClient fetches HTML pages from the results site. Every request waits on
// a local limiter first, so callers may fetch in parallel.
type PageClient struct {
	userAgent   string
	client      *fasthttp.Client
	limiter     *rate.Limiter
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

// RateLimitInfo is what the remote site last said about its limits, plus
// counters for the requests this client actually sent.
type RateLimitInfo struct {
	Limit     int
	Remaining int

	// seconds until the remote window resets, or the last Retry-After
	Reset int

	LastStatus int
	Requests   int
	UpdatedAt  time.Time
}

func NewPageClient(cfg *config.Config) *PageClient {
	return &PageClient{
		userAgent: cfg.UserAgent,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.ScrapeRatePerSec), cfg.ScrapeBurst),
	}
}

func (c *PageClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *PageClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	if retry := string(resp.Header.Peek(fasthttp.HeaderRetryAfter)); retry != "" {
		if val, err := strconv.Atoi(retry); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.LastStatus = resp.StatusCode()
	c.rateLimit.Requests++
	c.rateLimit.UpdatedAt = time.Now()
}

// FetchDocument fetches url and parses it into a goquery document.
func (c *PageClient) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	return doRequest(ctx, c, url, func(b []byte) (*goquery.Document, error) {
		return goquery.NewDocumentFromReader(bytes.NewReader(b))
	})
}

// decode must not retain body: it is released with the response.
func doRequest[T any](ctx context.Context, client *PageClient, url string, decode func(body []byte) (*T, error)) (*T, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(client.userAgent)
	req.Header.Set(fasthttp.HeaderAccept, "text/html,application/xhtml+xml")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, &StatusError{URL: url, Code: resp.StatusCode()}
	}

	result, err := decode(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return result, nil
}
