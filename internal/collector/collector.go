package collector

import (
	"bytes"
	"context"
	"os"
	"strings"
)

const fileScheme = "file://"

// FileFetcher replays a snapshot saved to disk. Useful for checking an
// extractor against a page captured earlier.
type FileFetcher struct{}

func (FileFetcher) Name() string { return "file" }

func (FileFetcher) Fetch(_ context.Context, url string, _ map[string]string) ([]byte, error) {
	path := strings.TrimPrefix(url, fileScheme)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &TransportError{URL: url, Err: errEmptyBody}
	}
	return data, nil
}

// Router sends file:// URLs to a FileFetcher and everything else to HTTP.
type Router struct {
	HTTP Fetcher
	File Fetcher
}

// NewRouter creates a Router around an HTTP fetcher.
func NewRouter(http Fetcher) *Router {
	return &Router{HTTP: http, File: FileFetcher{}}
}

func (r *Router) Name() string { return r.HTTP.Name() }

func (r *Router) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if strings.HasPrefix(url, fileScheme) {
		return r.File.Fetch(ctx, url, headers)
	}
	return r.HTTP.Fetch(ctx, url, headers)
}
