// Package collyfetcher implements crawler.Fetcher using gocolly.
package collyfetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"go.uber.org/zap"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
)

const defaultTimeout = 15 * time.Second

// Config controls collector behavior.
type Config struct {
	UserAgent       string
	RandomUserAgent bool
	RespectRobots   bool
	Timeout         time.Duration
	AcceptLanguage  string
}

// Fetcher implements crawler.Fetcher using the Colly collector. Requests are
// synchronous; the crawl engine owns pacing.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	// Pagination revisits are decided by the engine, not by colly's store.
	c.AllowURLRevisit = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch executes a single HTTP GET using Colly.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (crawler.Page, error) {
	var (
		result   crawler.Page
		fetchErr error
		status   int
	)
	collector := f.buildCollector(rawURL, &result, &fetchErr, &status)

	finished, err := f.runCollector(ctx, collector, rawURL, &fetchErr)
	if err != nil {
		netErr := &crawler.NetworkError{URL: rawURL, Err: err}
		if finished {
			netErr.StatusCode = status
		}
		return crawler.Page{}, netErr
	}
	return result, nil
}

func (f *Fetcher) buildCollector(
	rawURL string,
	result *crawler.Page,
	fetchErr *error,
	status *int,
) *colly.Collector {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !f.cfg.RespectRobots
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	collector.SetRequestTimeout(timeout)
	if f.cfg.RandomUserAgent {
		extensions.RandomUserAgent(collector)
	}

	f.configureCollectorHooks(collector, rawURL, time.Now(), result, fetchErr, status)
	return collector
}

func (f *Fetcher) configureCollectorHooks(
	hooks collectorHooks,
	rawURL string,
	start time.Time,
	result *crawler.Page,
	fetchErr *error,
	status *int,
) {
	hooks.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
		if f.cfg.AcceptLanguage != "" {
			r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
		}
	})

	hooks.OnResponse(func(r *colly.Response) {
		*status = r.StatusCode
		var headers http.Header
		if r.Headers != nil {
			headers = r.Headers.Clone()
		}
		*result = crawler.Page{
			URL:        rawURL,
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte(nil), r.Body...),
		}
		f.logger.Debug("Fetched page",
			zap.String("url", rawURL),
			zap.Int("status_code", r.StatusCode),
			zap.Int("bytes", len(r.Body)),
			zap.Duration("duration", time.Since(start)),
		)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil {
			*status = r.StatusCode
		}
		if err == nil {
			err = errors.New("unknown colly error")
		}
		*fetchErr = err
	})
}

// runCollector visits url and reports whether the visit finished. On
// cancellation the visit goroutine may still be writing its results, so
// callers must not read them unless finished is true.
func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) (bool, error) {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return true, fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		if err != nil {
			return true, fmt.Errorf("colly visit failed: %w", err)
		}
		return true, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
