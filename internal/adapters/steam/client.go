// Package steam implements the catalog contract against the Steam Web API.
package steam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/pkg/logger"
	"github.com/okian/gamegraph/pkg/metrics"
)

const (
	// DefaultBaseURL is the public Steam Web API host.
	DefaultBaseURL = "https://api.steampowered.com"

	defaultTimeout  = 10 * time.Second
	defaultLanguage = "english"
	maxBodyBytes    = 8 << 20
)

// keyRejectionMarker appears in the page Steam serves for a bad key:
// "Access is denied. Retrying will not help. Please verify your <pre>key=</pre> parameter."
var keyRejectionMarker = []byte("<pre>key=</pre>")

// Client talks to the Steam Web API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	timeout  time.Duration
	http     *http.Client
	logger   logger.Logger
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		language: defaultLanguage,
		timeout:  defaultTimeout,
		http:     &http.Client{},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get issues one GET with the per-call timeout and maps the HTTP status
// onto catalog failure kinds. endpoint labels metrics.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: %w: %w", endpoint, catalog.ErrUpstream, ErrMissingKey)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if params == nil {
		params = url.Values{}
	}
	params.Set("key", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	body, err := c.do(ctx, u)
	metrics.RecordUpstreamRequest(endpoint, outcome(err), float64(time.Since(start).Milliseconds()))
	if err != nil {
		c.logger.Debug(ctx, "steam request failed",
			logger.String("endpoint", endpoint),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", catalog.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case keyRejected(resp.StatusCode, body):
		return nil, fmt.Errorf("%w: %w: status %d", catalog.ErrUpstream, ErrKeyRejected, resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, catalog.ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, catalog.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return nil, catalog.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: status %d", catalog.ErrUpstream, resp.StatusCode)
	}
}

// keyRejected reports whether a 401/403 is Steam refusing the key itself.
// That page asks to verify the key parameter; privacy refusals do not.
func keyRejected(status int, body []byte) bool {
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return false
	}
	return bytes.Contains(body, keyRejectionMarker)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeTimeout
	case errors.Is(err, catalog.ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.Is(err, catalog.ErrUnauthorized):
		return metrics.OutcomeHidden
	case errors.Is(err, catalog.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}

var _ catalog.Client = (*Client)(nil)
