// Package crawler implements the sequential crawl engine used by the
// scholar crawler: search filters and query building, the record types for
// each listing category, the fetch loop with its fixed politeness delay,
// bounded retries, page archiving, and crawl metrics.
package crawler
