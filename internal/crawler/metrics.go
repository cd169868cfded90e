package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalRequests tracks the number of HTTP requests dispatched by the crawler.
	TotalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholar_crawler_requests_total",
		Help: "The total number of HTTP requests sent, retries included.",
	})
	// TotalRequestErrors tracks the number of requests that resulted in an error.
	TotalRequestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholar_crawler_request_errors_total",
		Help: "The total number of failed HTTP requests.",
	})
	// TotalRetries tracks how many fetches were attempted again after a failure.
	TotalRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholar_crawler_retries_total",
		Help: "The total number of retried fetches.",
	})
	// TotalRateLimitHits tracks the number of times the crawler was rate-limited (HTTP 429).
	TotalRateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholar_crawler_rate_limit_hits_total",
		Help: "The total number of times the crawler was rate limited.",
	})
	// TotalForbiddenHits tracks the number of times the crawler received a forbidden response (HTTP 403).
	TotalForbiddenHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholar_crawler_forbidden_hits_total",
		Help: "The total number of times the crawler received a forbidden response.",
	})
	// TotalSkippedPages tracks pages abandoned under the skip failure policy.
	TotalSkippedPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scholar_crawler_skipped_pages_total",
		Help: "The total number of pages skipped after a failed fetch.",
	})
	// PagesProcessed counts listing pages handed to an extractor, by category.
	PagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholar_crawler_pages_total",
		Help: "The total number of listing pages processed.",
	}, []string{"category"})
	// RecordsExtracted counts records produced, by category.
	RecordsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scholar_crawler_records_total",
		Help: "The total number of records extracted.",
	}, []string{"category"})
)
