package collector

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPFetcher issues plain GET requests through resty.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher with the given timeout, user agent and
// optional proxy.
func NewHTTPFetcher(timeout time.Duration, userAgent, proxyURL string) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Name() string { return "http" }

// Fetch returns the response body. Headers override the client defaults.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &TransportError{URL: url, StatusCode: res.StatusCode(), Err: fmt.Errorf("unexpected status %s", res.Status())}
	}
	body := res.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &TransportError{URL: url, StatusCode: res.StatusCode(), Err: errEmptyBody}
	}
	return body, nil
}
