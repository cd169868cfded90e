package crawler

import (
	"context"
	"net/url"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
// Transport failures and non-success statuses are reported as *NetworkError.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// Extractor turns one parsed listing page into records and an optional
// next-page URL. A nil URL means the branch is exhausted.
type Extractor interface {
	Extract(page ParsedPage) ([]Record, *url.URL, error)
}

// PageArchive keeps a copy of every fetched page.
type PageArchive interface {
	SaveHTML(ctx context.Context, page Page) (string, error)
}

// RetryPolicy decides whether and when a failed fetch is attempted again.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Hasher derives a stable digest used to name archived pages.
type Hasher interface {
	HashString(s string) string
}
