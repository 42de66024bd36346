/*
Package kabutan fetches per-instrument snapshot pages from kabutan.jp and flattens them
to plain text.
*/
package kabutan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const stockPath = "/stock/"

// ErrFetchFailure covers every reason a page could not be retrieved.
var ErrFetchFailure = errors.New("fetch failure")

// PageCache stores flattened page text by instrument code.
type PageCache interface {
	Get(code string) (string, bool)
	Put(code, text string) error
}

type Options struct {
	BaseURL          string
	UserAgent        string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	RatePerSecond    float64
	Cache            PageCache // optional
}

// Client retrieves snapshot pages politely: every network attempt, retries included,
// waits for the shared rate limiter.
type Client struct {
	logger arbor.ILogger
	http   *resty.Client
	cache  PageCache
}

func NewClient(logger arbor.ILogger, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWaitTime <= 0 {
		opts.RetryWaitTime = 500 * time.Millisecond
	}
	if opts.RetryMaxWaitTime <= 0 {
		opts.RetryMaxWaitTime = 5 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 1
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetHeader("Accept-Language", "ja,en;q=0.8").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWaitTime).
		SetRetryMaxWaitTime(opts.RetryMaxWaitTime).
		SetLogger(restyLogger{logger: logger}).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			if resp == nil {
				return false
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		}).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})

	return &Client{
		logger: logger,
		http:   client,
		cache:  opts.Cache,
	}
}

// FetchText returns the visible text of the snapshot page for code.
func (c *Client) FetchText(ctx context.Context, code string) (string, error) {
	if c.cache != nil {
		if text, ok := c.cache.Get(code); ok {
			c.logger.Debug().Str("code", code).Msg("Page served from cache")
			return text, nil
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("code", code).
		Get(stockPath)
	if err != nil {
		return "", fmt.Errorf("%w: code %s: %w", ErrFetchFailure, code, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("%w: code %s: received non-OK status code %d", ErrFetchFailure, code, resp.StatusCode())
	}

	text, err := PageText(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("%w: code %s: %w", ErrFetchFailure, code, err)
	}

	if c.cache != nil {
		if err := c.cache.Put(code, text); err != nil {
			c.logger.Warn().Err(err).Str("code", code).Msg("Failed to cache page text")
		}
	}

	return text, nil
}

// restyLogger routes resty's retry and transport chatter through arbor.
type restyLogger struct {
	logger arbor.ILogger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
