// Package weatherapi fetches real-time rainfall payloads from the
// data.gov.sg API. The decoded body is handed to the normalizer as-is;
// this package makes no assumptions about the payload schema.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wxlabsg/rainfall-insights/internal/domain"
)

// ErrFetchFailed wraps any transport or decode failure so callers can
// distinguish fetch problems from normalization problems.
var ErrFetchFailed = errors.New("rainfall fetch failed")

// Client retrieves rainfall payloads over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a rainfall API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch retrieves the latest rainfall payload.
func (c *Client) Fetch(ctx context.Context) (domain.Payload, error) {
	return c.doRequest(ctx, c.baseURL)
}

// FetchDate retrieves the payload for a specific date (YYYY-MM-DD).
func (c *Client) FetchDate(ctx context.Context, date string) (domain.Payload, error) {
	params := url.Values{"date": {date}}
	return c.doRequest(ctx, c.baseURL+"?"+params.Encode())
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrFetchFailed, resp.StatusCode, body)
	}

	var payload domain.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrFetchFailed, err)
	}

	c.logger.Debug("payload fetched", "url", c.baseURL, "keys", len(payload))
	return payload, nil
}
