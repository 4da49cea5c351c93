// Package api talks to the backing social service: fetching remote
// files and re-resolving current URLs for uploaded files.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout is the default timeout for API requests.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps fetched sound files. Event cues are short; anything
// larger is a misconfiguration.
const maxBodySize = 32 << 20

// defaultTransport provides connection pooling with reasonable
// timeouts for short asset fetches.
var defaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 15 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          10,
	IdleConnTimeout:       90 * time.Second,
}

// Client is an HTTP client for the service API and its file storage.
// It implements sound.Fetcher and sound.URLResolver.
type Client struct {
	logger  *slog.Logger
	httpc   *http.Client
	baseURL string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (tests).
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// NewClient creates a client for the given API base URL. The base URL
// may be empty when uploaded-file fallback resolution is not
// configured.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Transport: defaultTransport,
			Timeout:   DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the raw bytes behind a URL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// fileMeta is the file metadata document returned by the service.
type fileMeta struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ResolveURL looks up the current fetchable URL for an uploaded file.
// Stored URLs can be signed and rotate; this is the fallback used
// when a stored URL stops working.
func (c *Client) ResolveURL(ctx context.Context, fileID string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("no API base URL configured")
	}

	endpoint := fmt.Sprintf("%s/api/files/%s", c.baseURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to look up file %s: %w", fileID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d looking up file %s", resp.StatusCode, fileID)
	}

	var meta fileMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return "", fmt.Errorf("failed to decode file metadata: %w", err)
	}

	c.logger.Debug("resolved file URL", "file_id", fileID)
	return meta.URL, nil
}
