package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/scholar-crawler/internal/config"
	"github.com/JakeFAU/scholar-crawler/internal/crawler"
	collyfetcher "github.com/JakeFAU/scholar-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/scholar-crawler/internal/output"
	"github.com/JakeFAU/scholar-crawler/internal/spider"
)

type crawlOptions struct {
	caseLaw       bool
	profiles      bool
	startYear     int
	endYear       int
	languages     []string
	outputPath    string
	format        string
	sortKey       string
	limit         int
	metricsFile   string
	failurePolicy string
	archiveDir    string
}

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	opts := &crawlOptions{}
	cmd := &cobra.Command{
		Use:   "crawl KEYWORDS...",
		Short: "Crawl search listings for the given keywords",
		Long: `Fetches every result page for the keywords, following pagination until
the listing ends, and writes the extracted records. With --profiles the
keywords are the author's user ID.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.caseLaw, "case-law", "c", false, "search case law instead of articles")
	flags.BoolVarP(&opts.profiles, "profiles", "p", false, "list the publications of an author profile")
	flags.IntVarP(&opts.startYear, "start-year", "s", 0, "earliest publication year")
	flags.IntVarP(&opts.endYear, "end-year", "e", 0, "latest publication year")
	flags.StringSliceVarP(&opts.languages, "languages", "l", []string{crawler.DefaultLanguage}, "allowed languages")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "output file; the extension selects the format (default stdout)")
	flags.StringVar(&opts.format, "format", "", "output format: csv, json, html or text")
	flags.StringVar(&opts.sortKey, "sort", "", "sort key: citations or year")
	flags.IntVar(&opts.limit, "limit", 0, "stop after this many records (0 means no limit)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	flags.StringVar(&opts.failurePolicy, "failure-policy", "", "abort or skip pages that cannot be fetched")
	flags.StringVar(&opts.archiveDir, "archive-dir", "", "store every fetched page under this directory")
	cmd.MarkFlagsMutuallyExclusive("case-law", "profiles")

	return cmd
}

func runCrawl(cmd *cobra.Command, opts *crawlOptions, args []string) error {
	rt, err := resolveSession(cmd.Context())
	if err != nil {
		return err
	}
	cfg := applyCrawlFlags(cmd, opts, rt.cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := rt.logger

	filter := buildFilter(cmd, opts, args)
	if filter.Category == crawler.Profiles &&
		(filter.StartYear != nil || filter.EndYear != nil || cmd.Flags().Changed("languages")) {
		logger.Warn("Year and language filters do not apply to profile listings; ignoring them")
	}

	sortKey, err := output.ParseSortKey(cfg.Output.Sort)
	if err != nil {
		return err
	}
	policy, err := crawler.ParseFailurePolicy(cfg.Crawler.FailurePolicy)
	if err != nil {
		return err
	}

	s, err := buildSpider(filter, cfg, policy, logger)
	if err != nil {
		return err
	}

	records, crawlErr := collect(cmd.Context(), s.Run(), opts.limit)
	if path := firstNonEmpty(opts.metricsFile, cfg.Metrics.File); path != "" {
		writeMetrics(path, logger)
	}
	if crawlErr != nil && len(records) == 0 {
		return fmt.Errorf("crawl: %w", crawlErr)
	}
	if len(records) == 0 {
		return crawler.ErrEmptyResult
	}
	if crawlErr != nil {
		logger.Warn("Crawl stopped early; writing partial results",
			zap.Int("records", len(records)),
			zap.Error(crawlErr),
		)
	}

	sorted := output.Sort(records, sortKey)
	if err := writeResults(cmd.OutOrStdout(), opts.outputPath, cfg.Output.Format, sorted); err != nil {
		return err
	}
	logger.Info("All done",
		zap.Int("records", len(sorted)),
		zap.String("output", firstNonEmpty(opts.outputPath, "stdout")),
	)
	if crawlErr != nil {
		return fmt.Errorf("crawl: %w", crawlErr)
	}
	return nil
}

func applyCrawlFlags(cmd *cobra.Command, opts *crawlOptions, cfg config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("sort") {
		cfg.Output.Sort = opts.sortKey
	}
	if flags.Changed("failure-policy") {
		cfg.Crawler.FailurePolicy = opts.failurePolicy
	}
	if flags.Changed("archive-dir") {
		cfg.Crawler.ArchiveDir = opts.archiveDir
	}
	return cfg
}

func buildFilter(cmd *cobra.Command, opts *crawlOptions, args []string) crawler.SearchFilter {
	filter := crawler.SearchFilter{
		Keywords:  strings.Join(args, " "),
		Languages: opts.languages,
		Category:  crawler.Articles,
	}
	switch {
	case opts.caseLaw:
		filter.Category = crawler.CaseLaw
	case opts.profiles:
		filter.Category = crawler.Profiles
	}
	if cmd.Flags().Changed("start-year") {
		start := opts.startYear
		filter.StartYear = &start
	}
	if cmd.Flags().Changed("end-year") {
		end := opts.endYear
		filter.EndYear = &end
	}
	return filter
}

func buildSpider(filter crawler.SearchFilter, cfg config.Config, policy crawler.FailurePolicy, logger *zap.Logger) (*spider.Spider, error) {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:       cfg.Crawler.UserAgent,
		RandomUserAgent: cfg.Crawler.RandomUserAgent,
		RespectRobots:   cfg.Crawler.RespectRobots,
		Timeout:         cfg.Crawler.RequestTimeout,
		AcceptLanguage:  cfg.Crawler.AcceptLanguage,
	}, logger)

	spiderCfg := spider.Config{
		BaseURL:       cfg.Crawler.BaseURL,
		Delay:         cfg.Crawler.Delay,
		FailurePolicy: policy,
		RetryPolicy:   cfg.RetryPolicy(),
	}
	if cfg.Crawler.ArchiveDir != "" {
		archive, err := crawler.NewFileSystemArchive(cfg.Crawler.ArchiveDir, cfg.Crawler.MaxPageBytes, logger)
		if err != nil {
			return nil, fmt.Errorf("init archive: %w", err)
		}
		spiderCfg.Archive = archive
	}
	return spider.New(filter, fetcher, spiderCfg, logger)
}

// collect drains the iterator, stopping after limit records when limit > 0.
func collect(ctx context.Context, it *crawler.Iterator, limit int) ([]crawler.Record, error) {
	var records []crawler.Record
	for it.Next(ctx) {
		records = append(records, it.Record())
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, it.Err()
}

func writeResults(stdout io.Writer, path, format string, records []crawler.Record) error {
	if path == "" {
		f := output.FormatText
		if format != "" {
			f = output.ParseFormat(format)
		}
		if err := output.Write(stdout, f, records); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		return nil
	}
	f := output.FormatFromPath(path)
	if format != "" {
		f = output.ParseFormat(format)
	}
	if err := output.WriteFile(path, f, records); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

func writeMetrics(path string, logger *zap.Logger) {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		logger.Warn("Failed to write metrics file", zap.String("path", path), zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
