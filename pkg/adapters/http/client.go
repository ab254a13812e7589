package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/persistence"
	"github.com/aretw0/domrec/pkg/ports"
	"github.com/klauspost/compress/gzip"
)

// Client implements ports.ActionStore against a remote store endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	// gzipOver compresses request bodies larger than this many bytes; 0 disables.
	gzipOver int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithClientLogger configures a logger for the Client.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// WithCompression gzips request bodies larger than threshold bytes.
func WithCompression(threshold int) ClientOption {
	return func(cl *Client) {
		cl.gzipOver = threshold
	}
}

// NewClient creates a client for the store served at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) storeURL(key string) string {
	return c.baseURL + "/store?key=" + url.QueryEscape(key)
}

// Load fetches the actions saved under key. Any non-200 answer is reported
// as domain.ErrActionsNotFound.
func (c *Client) Load(ctx context.Context, key string) ([]domain.Action, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.storeURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("store returned no actions", "key", key, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s (status %d)", domain.ErrActionsNotFound, key, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions: %w", err)
	}
	return persistence.DecodeActions(body)
}

// Save posts actions as JSON under key.
func (c *Client) Save(ctx context.Context, key string, actions []domain.Action) error {
	body, err := persistence.EncodeActions(actions)
	if err != nil {
		return err
	}

	compressed := c.gzipOver > 0 && len(body) > c.gzipOver
	if compressed {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(body); err != nil {
			return fmt.Errorf("failed to compress actions: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to compress actions: %w", err)
		}
		body = buf.Bytes()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.storeURL(key), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if compressed {
		req.Header.Set("Content-Encoding", "gzip")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to save actions: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to save actions: status %d", resp.StatusCode)
	}
	return nil
}

var _ ports.ActionStore = (*Client)(nil)
