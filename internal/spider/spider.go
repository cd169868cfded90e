// Package spider binds a search category to its query shape and extractor
// and runs the crawl for one SearchFilter.
package spider

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/scholar-crawler/internal/crawler"
	"github.com/JakeFAU/scholar-crawler/internal/extract"
	"github.com/JakeFAU/scholar-crawler/internal/id/uuid"
)

// DefaultBaseURL is the origin every seed is built on.
const DefaultBaseURL = "https://scholar.google.com"

// Config holds the crawl knobs a Spider hands to its engine.
type Config struct {
	BaseURL       string
	Delay         time.Duration
	FailurePolicy crawler.FailurePolicy
	RetryPolicy   crawler.RetryPolicy
	Archive       crawler.PageArchive
}

// strategy is the per-category query and extraction pair.
type strategy struct {
	path      string
	query     func(b crawler.QueryBuilder, filter crawler.SearchFilter) string
	extractor func() crawler.Extractor
}

var strategies = map[crawler.Category]strategy{
	crawler.Articles: {
		path: "/scholar",
		query: func(b crawler.QueryBuilder, _ crawler.SearchFilter) string {
			return b.Build("as_sdt=0,5")
		},
		extractor: func() crawler.Extractor { return extract.NewArticleExtractor() },
	},
	crawler.CaseLaw: {
		path: "/scholar",
		query: func(b crawler.QueryBuilder, _ crawler.SearchFilter) string {
			return b.Build("as_sdt=2006")
		},
		extractor: func() crawler.Extractor { return extract.NewCaseLawExtractor() },
	},
	crawler.Profiles: {
		path: "/citations",
		// Profile listings are keyed by user ID; year and language filters do not apply.
		query: func(_ crawler.QueryBuilder, filter crawler.SearchFilter) string {
			return "hl=en&user=" + url.QueryEscape(strings.TrimSpace(filter.Keywords)) +
				"&cstart=0&pagesize=" + strconv.Itoa(extract.ProfilePageSize)
		},
		extractor: func() crawler.Extractor { return extract.NewProfileExtractor() },
	},
}

// Spider crawls one category for one filter. Spiders share no state.
type Spider struct {
	runID  string
	filter crawler.SearchFilter
	seeds  []string
	engine *crawler.Engine
	logger *zap.Logger
}

// New validates filter and prepares the seed URL and engine for its category.
func New(filter crawler.SearchFilter, fetcher crawler.Fetcher, cfg Config, logger *zap.Logger) (*Spider, error) {
	builder, err := crawler.NewQueryBuilder(filter)
	if err != nil {
		return nil, err
	}
	strat, ok := strategies[filter.Category]
	if !ok {
		return nil, &crawler.ConfigurationError{Field: "category", Reason: "no strategy for " + filter.Category.String()}
	}
	if fetcher == nil {
		return nil, &crawler.ConfigurationError{Field: "fetcher", Reason: "must not be nil"}
	}
	base, err := baseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	runID := uuid.New().RunID()
	logger = logger.With(
		zap.String("run_id", runID),
		zap.String("category", filter.Category.String()),
	)

	seed := base + strat.path + "?" + strat.query(builder, filter)
	engine := crawler.NewEngine(
		crawler.Config{
			Category:      filter.Category,
			Delay:         cfg.Delay,
			FailurePolicy: cfg.FailurePolicy,
		},
		fetcher,
		strat.extractor(),
		crawler.WithRetryPolicy(cfg.RetryPolicy),
		crawler.WithArchive(cfg.Archive),
		crawler.WithLogger(logger),
	)
	return &Spider{
		runID:  runID,
		filter: filter,
		seeds:  []string{seed},
		engine: engine,
		logger: logger,
	}, nil
}

// RunID identifies this spider in logs.
func (s *Spider) RunID() string {
	return s.runID
}

// SeedURLs returns a copy of the URLs the crawl starts from.
func (s *Spider) SeedURLs() []string {
	out := make([]string, len(s.seeds))
	copy(out, s.seeds)
	return out
}

// Run starts a fresh crawl. Records are fetched lazily as the iterator is
// advanced; each call returns an independent iterator.
func (s *Spider) Run() *crawler.Iterator {
	s.logger.Info("Starting crawl",
		zap.String("keywords", s.filter.Keywords),
		zap.Strings("seeds", s.seeds),
	)
	return s.engine.Crawl(s.seeds)
}

func baseURL(raw string) (string, error) {
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &crawler.ConfigurationError{Field: "base url", Reason: fmt.Sprintf("%q is not an absolute URL", raw)}
	}
	return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), nil
}
