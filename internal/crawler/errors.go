package crawler

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyResult signals that a crawl finished without producing a record.
// It usually means the service throttled or blocked the client.
var ErrEmptyResult = errors.New("crawl produced no results")

// ConfigurationError reports an invalid search filter or crawl setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NetworkError reports a failed fetch for a single URL.
// StatusCode is zero when the request never got a response.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d (%s): %v", e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
