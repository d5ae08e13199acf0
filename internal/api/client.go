// ABOUTME: HTTP client core for the sweet shop service with bearer auth.
// ABOUTME: Builds requests, attaches the current credential, normalizes failures.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// basePath is the versioned prefix of the service surface.
const basePath = "/api/v1"

const defaultTimeout = 30 * time.Second

// TokenSource supplies the current bearer credential. Satisfied by
// *session.Store. ok false means the call goes out anonymously.
type TokenSource interface {
	Token() (token string, ok bool)
}

// Client performs all network I/O against the sweet shop service.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

// New creates a client for the service at baseURL (scheme://host[:port],
// without the /api/v1 suffix). tokens supplies the credential per call.
func New(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		logger:  logger,
	}
}

// SetTimeout overrides the default per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpc.Timeout = d
}

// do performs one request against path (relative to /api/v1), marshaling body
// as JSON when non-nil and decoding a 2xx response into out when non-nil.
// Non-2xx responses become *APIError; transport failures are returned wrapped
// and unclassified.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + basePath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request",
		"request_id", requestID,
		"method", method,
		"path", basePath+path)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "request_id", requestID, "error", err)
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api response", "request_id", requestID, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFromResponse(resp, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// errorFromResponse extracts the detail message from an error body. A body
// that is not the expected JSON shape yields an APIError with empty Detail.
func (c *Client) errorFromResponse(resp *http.Response, requestID string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}

	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}
