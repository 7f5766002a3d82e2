package collector

import (
	"context"
	"errors"
	"fmt"
)

// DefaultUserAgent is sent when none is configured; some quote sites reject
// Go's default agent.
const DefaultUserAgent = "Mozilla/5.0"

// Fetcher retrieves the raw content of one remote page or feed.
//
//go:generate mockgen -package=ingest -destination=../ingest/mock_fetcher_test.go -source=fetcher.go Fetcher
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error)
	Name() string
}

// ErrTransport matches every *TransportError via errors.Is.
var ErrTransport = errors.New("transport failure")

// TransportError reports a failed fetch: connection error, timeout, non-2xx
// status or an empty body.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

var errEmptyBody = errors.New("empty body")
