package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultDelay is the pause between two consecutive fetches.
const DefaultDelay = 500 * time.Millisecond

// FailurePolicy controls what happens when a page cannot be fetched.
type FailurePolicy string

// Supported failure policies.
const (
	// FailAbort stops the crawl and reports the *NetworkError.
	FailAbort FailurePolicy = "abort"
	// FailSkip logs the lost page and continues with the queue.
	FailSkip FailurePolicy = "skip"
)

// ParseFailurePolicy validates a policy name. Empty selects FailAbort.
func ParseFailurePolicy(raw string) (FailurePolicy, error) {
	switch FailurePolicy(raw) {
	case "", FailAbort:
		return FailAbort, nil
	case FailSkip:
		return FailSkip, nil
	default:
		return FailAbort, &ConfigurationError{Field: "failure policy", Reason: fmt.Sprintf("unknown policy %q", raw)}
	}
}

// Config holds the settings for a crawl session.
type Config struct {
	Category      Category
	Delay         time.Duration
	FailurePolicy FailurePolicy
}

// Engine fetches listing pages one at a time and feeds them to an Extractor.
// An Engine holds no per-crawl state; every call to Crawl starts afresh.
type Engine struct {
	cfg       Config
	fetcher   Fetcher
	extractor Extractor
	retry     RetryPolicy
	archive   PageArchive
	pauser    pauseController
	logger    *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRetryPolicy sets the retry policy. nil disables retries.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(e *Engine) {
		if p == nil {
			p = noRetryPolicy{}
		}
		e.retry = p
	}
}

// WithArchive stores every fetched page in archive.
func WithArchive(archive PageArchive) Option {
	return func(e *Engine) {
		e.archive = archive
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func withPauser(p pauseController) Option {
	return func(e *Engine) {
		e.pauser = p
	}
}

// NewEngine wires an engine around a fetcher and an extractor.
func NewEngine(cfg Config, fetcher Fetcher, extractor Extractor, opts ...Option) *Engine {
	if cfg.FailurePolicy == "" {
		cfg.FailurePolicy = FailAbort
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	e := &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		retry:     noRetryPolicy{},
		pauser:    &timerPauseController{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Crawl returns an iterator over the records reachable from seeds. Nothing
// is fetched until the first call to Iterator.Next.
func (e *Engine) Crawl(seeds []string) *Iterator {
	it := &Iterator{
		engine:  e,
		seeds:   make([]string, 0, len(seeds)),
		visited: newNormalizedVisitTracker(),
		state:   StateIdle,
	}
	for _, seed := range seeds {
		if it.visited.MarkIfNew(seed) {
			it.seeds = append(it.seeds, seed)
		}
	}
	return it
}

// State is the lifecycle position of an Iterator.
type State int

// Iterator states.
const (
	StateIdle State = iota
	StateFetching
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Stats summarizes the work an Iterator has done so far.
type Stats struct {
	Pages   int
	Records int
	Skipped int
}

// Iterator pulls records lazily. Seeds are fetched in order before any
// discovered URL; discovered URLs are fetched in discovery order. Dropping
// an Iterator before it is exhausted has no side effects.
type Iterator struct {
	engine    *Engine
	seeds     []string
	extras    []string
	visited   visitTracker
	buffer    []Record
	current   Record
	state     State
	err       error
	stats     Stats
	processed int
}

// Next advances to the next record, fetching pages as needed. It returns
// false when the crawl is finished or failed; check Err to tell them apart.
func (it *Iterator) Next(ctx context.Context) bool {
	for {
		if len(it.buffer) > 0 {
			it.current = it.buffer[0]
			it.buffer = it.buffer[1:]
			return true
		}
		it.current = nil
		if it.state == StateDone {
			return false
		}

		target, ok := it.pop()
		if !ok {
			it.drain()
			return false
		}
		it.state = StateFetching

		if it.processed > 0 {
			if err := it.engine.pauser.Pause(ctx, it.engine.cfg.Delay); err != nil {
				it.fail(fmt.Errorf("wait before %s: %w", target, err))
				return false
			}
		}
		it.processed++

		if err := it.process(ctx, target); err != nil {
			if it.skippable(err) {
				it.stats.Skipped++
				TotalSkippedPages.Inc()
				it.engine.logger.Warn("Skipping page after failed fetch",
					zap.String("url", target),
					zap.Error(err),
				)
				continue
			}
			it.fail(err)
			return false
		}
	}
}

// Record returns the record produced by the last successful Next.
func (it *Iterator) Record() Record {
	return it.current
}

// Err returns the error that stopped the crawl, if any.
func (it *Iterator) Err() error {
	return it.err
}

// State reports where the iterator is in its lifecycle.
func (it *Iterator) State() State {
	return it.state
}

// Stats reports counters for the crawl so far.
func (it *Iterator) Stats() Stats {
	return it.stats
}

func (it *Iterator) pop() (string, bool) {
	if len(it.seeds) > 0 {
		next := it.seeds[0]
		it.seeds = it.seeds[1:]
		return next, true
	}
	if len(it.extras) > 0 {
		next := it.extras[0]
		it.extras = it.extras[1:]
		return next, true
	}
	return "", false
}

func (it *Iterator) drain() {
	it.state = StateDraining
	it.engine.logger.Info("Crawl finished",
		zap.Int("pages", it.stats.Pages),
		zap.Int("records", it.stats.Records),
		zap.Int("skipped", it.stats.Skipped),
	)
	it.state = StateDone
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.seeds = nil
	it.extras = nil
	it.state = StateDone
}

func (it *Iterator) skippable(err error) bool {
	if it.engine.cfg.FailurePolicy != FailSkip {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func (it *Iterator) process(ctx context.Context, target string) error {
	e := it.engine
	category := e.cfg.Category.String()
	e.logger.Info("Fetching page",
		zap.Int("request", it.processed),
		zap.String("url", target),
	)

	page, err := e.fetchWithRetry(ctx, target)
	if err != nil {
		return err
	}
	if e.archive != nil {
		if _, aerr := e.archive.SaveHTML(ctx, page); aerr != nil {
			e.logger.Warn("Failed to archive page", zap.String("url", target), zap.Error(aerr))
		}
	}

	parsed, err := parsePage(target, page)
	if err != nil {
		return err
	}
	records, next, err := e.extractor.Extract(parsed)
	if err != nil {
		return fmt.Errorf("extract %s: %w", target, err)
	}

	it.stats.Pages++
	it.stats.Records += len(records)
	PagesProcessed.WithLabelValues(category).Inc()
	RecordsExtracted.WithLabelValues(category).Add(float64(len(records)))
	it.buffer = append(it.buffer, records...)

	if next != nil {
		nextURL := next.String()
		if it.visited.MarkIfNew(nextURL) {
			it.extras = append(it.extras, nextURL)
		} else {
			e.logger.Debug("Ignoring already visited next page", zap.String("url", nextURL))
		}
	}
	e.logger.Debug("Page processed",
		zap.String("url", target),
		zap.Int("records", len(records)),
		zap.Bool("has_next", next != nil),
	)
	return nil
}

func (e *Engine) fetchWithRetry(ctx context.Context, target string) (Page, error) {
	for attempt := 1; ; attempt++ {
		TotalRequests.Inc()
		page, err := e.fetcher.Fetch(ctx, target)
		if err == nil {
			return page, nil
		}
		TotalRequestErrors.Inc()
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			switch netErr.StatusCode {
			case http.StatusTooManyRequests:
				TotalRateLimitHits.Inc()
			case http.StatusForbidden:
				TotalForbiddenHits.Inc()
			}
		}
		if !e.retry.ShouldRetry(err, attempt) {
			return Page{}, err
		}
		TotalRetries.Inc()
		wait := e.retry.Backoff(attempt)
		e.logger.Warn("Fetch failed; retrying",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		if perr := e.pauser.Pause(ctx, wait); perr != nil {
			return Page{}, fmt.Errorf("retry wait for %s: %w", target, perr)
		}
	}
}

func parsePage(target string, page Page) (ParsedPage, error) {
	raw := page.FinalURL
	if raw == "" {
		raw = target
	}
	base, err := url.Parse(raw)
	if err != nil {
		return ParsedPage{}, fmt.Errorf("parse page url %q: %w", raw, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return ParsedPage{}, fmt.Errorf("parse html from %s: %w", raw, err)
	}
	return ParsedPage{URL: base, Doc: doc}, nil
}
