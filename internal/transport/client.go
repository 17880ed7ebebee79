// Package transport provides the shared HTTP client used by the registry
// and indexer sources.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/nfdtools/dropaudit/pkg/errors"
)

// DefaultHTTPTimeout bounds every upstream request. The pipeline itself has
// no timeout semantics, so this is the only thing standing between a
// stalled upstream and a hung run.
var DefaultHTTPTimeout = 30 * time.Second

// Client wraps http.Client with the headers and token handling the
// upstream APIs expect.
type Client struct {
	http  *http.Client
	token string
}

// New creates a transport client. token may be empty for public endpoints.
func New(token string) *Client {
	return &Client{
		http:  &http.Client{Timeout: DefaultHTTPTimeout},
		token: token,
	}
}

// Get performs a GET request with common headers applied.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapIO("create", "GET "+url, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		// The Algorand indexer convention; harmless elsewhere.
		req.Header.Set("X-Indexer-API-Token", c.token)
	}

	return c.http.Do(req)
}
