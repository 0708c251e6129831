package offline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Fetcher performs network requests on behalf of the worker.
type Fetcher interface {
	Fetch(ctx context.Context, req *http.Request) (*Response, error)
}

// HTTPFetcher resolves request paths against the asset origin.
type HTTPFetcher struct {
	origin *url.URL
	client *http.Client
}

// NewHTTPFetcher creates a fetcher for origin. A nil client uses a client with a 30s timeout.
func NewHTTPFetcher(origin string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid asset origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid asset origin %q: scheme and host are required", origin)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{origin: u, client: client}, nil
}

// Origin returns the asset origin URL.
func (f *HTTPFetcher) Origin() *url.URL {
	return f.origin
}

// Fetch sends req to the origin and buffers the response.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *http.Request) (*Response, error) {
	target := f.origin.ResolveReference(&url.URL{Path: req.URL.Path, RawQuery: req.URL.RawQuery})

	out, err := http.NewRequestWithContext(ctx, req.Method, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for _, h := range []string{"Accept", "Accept-Language", "If-None-Match", "If-Modified-Since"} {
		if v := req.Header.Get(h); v != "" {
			out.Header.Set(h, v)
		}
	}

	resp, err := f.client.Do(out)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	r, err := readResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	return r, nil
}

// newAssetRequest builds a GET request for an origin-relative asset path.
func newAssetRequest(ctx context.Context, path string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
}
