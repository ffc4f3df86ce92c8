package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hazyhaar/feedloom/idgen"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 2
	defaultInitialDelay = 2 * time.Second
)

// Client posts drafting requests to a remote endpoint.
//
// Transport failures, timeouts and non-2xx statuses are all retried the same
// way: the endpoint sits behind ordinary infrastructure where a 502 and a
// connection reset mean the same thing. A well-formed 2xx reply whose body
// does not parse, or parses without a comment, is an application rejection
// and fails immediately.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxRetries uint64
	initial    time.Duration
	newPairID  idgen.Generator
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each individual attempt. Default: 30s. Applies to the
// current HTTP client, so it composes with WithHTTPClient in option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetries sets how many extra attempts follow a failed first try.
// Default: 2.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithInitialDelay sets the first backoff interval. Default: 2s.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Client) { c.initial = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client targeting the given endpoint URL.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		initial:    defaultInitialDelay,
		newPairID:  idgen.Prefixed("pair_", idgen.Default),
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Draft requests a comment for the given content. If req.PairID is empty a
// fresh one is generated so the caller can correlate the request in logs.
// The returned comment is never empty on success.
func (c *Client) Draft(ctx context.Context, req Request) (string, error) {
	if req.Tone == "" {
		req.Tone = ToneProfessional
	}
	if req.PairID == "" {
		req.PairID = c.newPairID()
	}
	if req.User.ID == "" {
		req.User.ID = idgen.Fingerprint()
	}
	if req.User.Name == "" {
		req.User.Name = "unknown"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("generate: marshal request: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initial
	bo.RandomizationFactor = 0

	var comment string
	attempt := 0
	op := func() error {
		attempt++
		cmt, err := c.post(ctx, body)
		if err != nil {
			c.logger.Warn("generate: attempt failed",
				"pair_id", req.PairID, "attempt", attempt, "error", err)
			return err
		}
		comment = cmt
		return nil
	}

	retrier := backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)
	if err := backoff.Retry(op, retrier); err != nil {
		return "", fmt.Errorf("generate: draft for %s: %w", req.PairID, err)
	}

	c.logger.Debug("generate: draft ok", "pair_id", req.PairID, "attempts", attempt)
	return comment, nil
}

// post performs one attempt. Errors wrapped in backoff.Permanent stop the
// retry loop.
func (c *Client) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &StatusError{Code: resp.StatusCode}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	if strings.TrimSpace(out.Comment) == "" {
		return "", backoff.Permanent(fmt.Errorf("response missing comment"))
	}
	return out.Comment, nil
}
