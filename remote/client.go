// ABOUTME: HTTP client for the notifications server contract
// ABOUTME: Handles list/read/read-all/delete calls with timeouts and bounded retry
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/bellhop/models"
)

const (
	// RequestTimeout bounds every API call, consistent with mutation
	// rollback handling: a timed-out call is a failed call.
	RequestTimeout = 8 * time.Second

	maxRetries = 2
	baseDelay  = 200 * time.Millisecond
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the server rejected the call because the
// notification no longer exists.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// ListOptions control a notifications fetch.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string // created_at
	SortOrder string // asc or desc
	Read      *bool  // nil means both read and unread
}

// Pagination mirrors the server's pagination envelope.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListResult is the response to a notifications fetch.
type ListResult struct {
	Data       []models.Notification `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// readAllResponse is the read-all response body; FailedIDs is only present
// on partial failure.
type readAllResponse struct {
	FailedIDs []string `json:"failedIds,omitempty"`
}

// API is the server contract the engine consumes. Satisfied by *Client;
// tests substitute fakes.
type API interface {
	List(ctx context.Context, opts ListOptions) (ListResult, error)
	MarkRead(ctx context.Context, id, requestKey string) error
	MarkAllRead(ctx context.Context, requestKey string) ([]string, error)
	Delete(ctx context.Context, id, requestKey string) error
}

// Client talks to the notifications API.
type Client struct {
	baseURL    string
	token      string
	deviceID   string
	httpClient *http.Client
}

// NewClient creates an API client. A nil httpClient gets the default
// request timeout.
func NewClient(baseURL, token, deviceID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		deviceID:   deviceID,
		httpClient: httpClient,
	}
}

// List fetches a page of notifications, newest first unless asked otherwise.
func (c *Client) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	q.Set("sortBy", sortBy)
	sortOrder := opts.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}
	q.Set("sortOrder", sortOrder)
	if opts.Read != nil {
		q.Set("read", strconv.FormatBool(*opts.Read))
	}

	var out ListResult
	err := c.doJSON(ctx, http.MethodGet, "/notifications?"+q.Encode(), "", nil, &out)
	return out, err
}

// MarkRead marks one notification read on the server.
func (c *Client) MarkRead(ctx context.Context, id, requestKey string) error {
	path := fmt.Sprintf("/notifications/%s/read", url.PathEscape(id))
	return c.doJSON(ctx, http.MethodPost, path, requestKey, nil, nil)
}

// MarkAllRead marks everything read. The returned slice holds ids the
// server could not mark (partial failure); empty means full success.
func (c *Client) MarkAllRead(ctx context.Context, requestKey string) ([]string, error) {
	var out readAllResponse
	if err := c.doJSON(ctx, http.MethodPost, "/notifications/read-all", requestKey, nil, &out); err != nil {
		return nil, err
	}
	return out.FailedIDs, nil
}

// Delete removes one notification on the server.
func (c *Client) Delete(ctx context.Context, id, requestKey string) error {
	path := fmt.Sprintf("/notifications/%s", url.PathEscape(id))
	return c.doJSON(ctx, http.MethodDelete, path, requestKey, nil, nil)
}

// doJSON performs one API call with bounded retry on transport errors,
// 429, and 5xx. Mutations carry the caller's idempotency key so a retried
// request cannot double-apply.
func (c *Client) doJSON(ctx context.Context, method, requestPath, requestKey string, body, out any) error {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if bodyBytes != nil {
			bodyReader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, bodyReader)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("X-Request-Id", ulid.Make().String())
		if c.deviceID != "" {
			req.Header.Set("X-Device-Id", c.deviceID)
		}
		if requestKey != "" {
			req.Header.Set("Idempotency-Key", requestKey)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt < maxRetries {
				if waitErr := waitWithContext(ctx, retryDelay(attempt+1)); waitErr != nil {
					return waitErr
				}
				continue
			}
			return fmt.Errorf("request failed: %w", err)
		}

		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			if out == nil || len(payload) == 0 {
				return nil
			}
			return json.Unmarshal(payload, out)
		}

		if (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500) && attempt < maxRetries {
			if waitErr := waitWithContext(ctx, retryDelay(attempt+1)); waitErr != nil {
				return waitErr
			}
			continue
		}

		var errPayload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(payload, &errPayload)
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errPayload.Code,
			Message:    errPayload.Message,
		}
	}
}

func retryDelay(attempt int) time.Duration {
	delay := baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	if delay > 2*time.Second {
		return 2 * time.Second
	}
	return delay
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
