package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_SendsUserAgentAndHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "de-DE", r.Header.Get("Accept-Language"))
		w.Write([]byte("Date,Close\n2024-03-01,1\n"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "", "")
	body, err := f.Fetch(context.Background(), srv.URL, map[string]string{"Accept-Language": "de-DE"})
	require.NoError(t, err)
	assert.Equal(t, "Date,Close\n2024-03-01,1\n", string(body))
}

func TestHTTPFetcher_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		timeout    time.Duration
		wantStatus int
	}{
		{
			name:       "server error",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			timeout:    5 * time.Second,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "not found",
			handler:    func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			timeout:    5 * time.Second,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "empty body",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(" \n")) },
			timeout:    5 * time.Second,
			wantStatus: http.StatusOK,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(2 * time.Second):
				case <-r.Context().Done():
				}
			},
			timeout: 50 * time.Millisecond,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewHTTPFetcher(tt.timeout, "", "").Fetch(context.Background(), srv.URL, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTransport))

			var te *TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.wantStatus, te.StatusCode)
		})
	}
}

func TestHTTPFetcher_ConnectionRefused(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPFetcher(time.Second, "", "").Fetch(context.Background(), url, nil)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestRouter_FileScheme(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<table></table>"), 0o644))

	r := NewRouter(NewHTTPFetcher(time.Second, "", ""))
	body, err := r.Fetch(context.Background(), "file://"+path, nil)
	require.NoError(t, err)
	assert.Equal(t, "<table></table>", string(body))

	_, err = r.Fetch(context.Background(), "file://"+filepath.Join(dir, "missing.html"), nil)
	assert.True(t, errors.Is(err, ErrTransport))

	empty := filepath.Join(dir, "empty.html")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = r.Fetch(context.Background(), "file://"+empty, nil)
	assert.True(t, errors.Is(err, ErrTransport))
}
