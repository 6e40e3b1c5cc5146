// Package quercle implements the HTTP client for the Quercle web-search and
// URL-fetch API (five POST endpoints under one base URL, bearer-token auth).
package quercle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"quercle-tools/internal/domain"
	"quercle-tools/internal/infra/config"
)

// maxResponseBody is the maximum response body size we read from the API.
const maxResponseBody = 10 * 1024 * 1024 // 10 MB

// Endpoint paths, one per tool.
const (
	PathSearch    = "/v1/search"
	PathFetch     = "/v1/fetch"
	PathRawSearch = "/v1/raw_search"
	PathRawFetch  = "/v1/raw_fetch"
	PathExtract   = "/v1/extract"
)

// Client talks to the Quercle API. It holds no per-call state, so a single
// instance is safe for concurrent use from multiple goroutines.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a Quercle API client. The API key and timeout come from
// configuration; key resolution (explicit value vs environment) has already
// happened in the config layer. A missing key is tolerated here and reported
// on the first call.
func NewClient(cfg config.APIConfig, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:  logger,
	}
}

// Search performs a web search and returns the synthesized answer text.
func (c *Client) Search(ctx context.Context, req SearchRequest) (string, error) {
	return c.Call(ctx, PathSearch, req)
}

// Fetch retrieves a URL and analyzes its content per the prompt.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) (string, error) {
	return c.Call(ctx, PathFetch, req)
}

// RawSearch performs a web search and returns unprocessed results.
func (c *Client) RawSearch(ctx context.Context, req RawSearchRequest) (string, error) {
	return c.Call(ctx, PathRawSearch, req)
}

// RawFetch retrieves a URL and returns its raw content.
func (c *Client) RawFetch(ctx context.Context, req RawFetchRequest) (string, error) {
	return c.Call(ctx, PathRawFetch, req)
}

// Extract fetches a URL and extracts content matching the query.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (string, error) {
	return c.Call(ctx, PathExtract, req)
}

// Call POSTs body to the given endpoint path and returns the `result` field
// of the response verbatim. All failure modes map onto the domain sentinels:
// ErrMissingAPIKey, ErrAuthInvalid, ErrTimeout, ErrRateLimit, ErrRemoteServer,
// ErrMalformedResponse.
func (c *Client) Call(ctx context.Context, path string, body any) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: set QUERCLE_API_KEY or api.api_key", domain.ErrMissingAPIKey)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrRemoteServer, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", domain.ErrMalformedResponse, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", mapHTTPError(httpResp.StatusCode, respBody)
	}

	var resp apiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if resp.Result == nil {
		return "", fmt.Errorf("%w: missing result field", domain.ErrMalformedResponse)
	}

	c.logger.Debug("quercle call completed", "path", path, "status", httpResp.StatusCode, "size", len(*resp.Result))
	return *resp.Result, nil
}

// isTimeout reports whether a transport error was a timeout, either from the
// client deadline or a cancelled/expired context.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}

// mapHTTPError maps an HTTP status code + response body to a domain error.
func mapHTTPError(statusCode int, body []byte) error {
	detail := errorDetail(statusCode, body)

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, detail)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimit, detail)
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", domain.ErrTimeout, detail)
	case statusCode >= 500:
		return fmt.Errorf("%w: %s", domain.ErrRemoteServer, detail)
	default:
		return fmt.Errorf("%w: %s", domain.ErrRemoteServer, detail)
	}
}

// errorDetail extracts a short message from an error response body, falling
// back to the raw body when it is not the documented JSON envelope.
func errorDetail(statusCode int, body []byte) string {
	var e apiError
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return fmt.Sprintf("API error %d: %s", statusCode, e.Error)
		}
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s", statusCode, e.Message)
		}
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 256 {
		trimmed = trimmed[:256]
	}
	if trimmed == "" {
		return fmt.Sprintf("API error %d", statusCode)
	}
	return fmt.Sprintf("API error %d: %s", statusCode, trimmed)
}
