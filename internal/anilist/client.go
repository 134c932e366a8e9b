package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public AniList GraphQL endpoint.
	DefaultEndpoint = "https://graphql.anilist.co"
	// DefaultPerPage is the page size requested from AniList.
	DefaultPerPage = 50

	defaultRetryAfter = 300 * time.Second
	defaultRetryDelay = 60 * time.Second
	defaultMaxRetries = 5
)

const pageQuery = `query ($page:Int,$perPage:Int){
  Page(page:$page, perPage:$perPage){
    media(type:MANGA, countryOfOrigin:"KR", sort:POPULARITY_DESC){
      id
      title { romaji english native userPreferred }
      description(asHtml:false)
      averageScore
      popularity
      startDate { year month day }
      coverImage { extraLarge }
      bannerImage
      chapters
      genres
      isAdult
      tags { name isAdult }
      staff(sort:RELEVANCE, perPage:1){
        nodes { name { full } }
      }
    }
  }
}`

// Options tunes the client. Zero values pick the defaults.
type Options struct {
	Endpoint   string
	HTTPClient *http.Client
	// PageInterval is the minimum gap between page requests.
	PageInterval time.Duration
	// RetryDelay is the pause after a transport error or 5xx.
	RetryDelay time.Duration
	MaxRetries int
	Logger     *logrus.Logger
}

// Client pages through AniList media.
type Client struct {
	endpoint   string
	http       *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	maxRetries int
	log        *logrus.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient builds an AniList client.
func NewClient(opts Options) *Client {
	c := &Client{
		endpoint:   opts.Endpoint,
		http:       opts.HTTPClient,
		retryDelay: opts.RetryDelay,
		maxRetries: opts.MaxRetries,
		log:        opts.Logger,
		sleep:      sleepContext,
	}
	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	interval := opts.PageInterval
	if interval <= 0 {
		interval = 700 * time.Millisecond
	}
	c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	return c
}

// FetchPage returns one page of media, waiting out rate limits. An empty
// slice means there are no more pages.
func (c *Client) FetchPage(ctx context.Context, page, perPage int) ([]Media, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	body, err := json.Marshal(map[string]any{
		"query":     pageQuery,
		"variables": map[string]int{"page": page, "perPage": perPage},
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	failures := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		payload, retryAfter, err := c.post(ctx, body)
		switch {
		case err == nil:
			return ParsePage(payload)
		case retryAfter > 0:
			c.log.WithFields(logrus.Fields{"page": page, "wait": retryAfter}).Warn("anilist rate limited")
			if err := c.sleep(ctx, retryAfter); err != nil {
				return nil, err
			}
		default:
			failures++
			if failures > c.maxRetries {
				return nil, fmt.Errorf("fetch page %d: %w", page, err)
			}
			c.log.WithError(err).WithField("page", page).Warn("anilist request failed, retrying")
			if err := c.sleep(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}
	}
}

// post returns the body on success, or a positive retryAfter on HTTP 429.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		wait := defaultRetryAfter
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			wait = time.Duration(secs) * time.Second
		}
		if wait <= 0 {
			wait = time.Millisecond
		}
		return nil, wait, fmt.Errorf("rate limited")
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return data, 0, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
