// ABOUTME: HTTP client for the remote "create workout session" endpoint.
// ABOUTME: Classifies responses into retryable and permanent failures for the sync engine.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/steviebd/swole-tracker-sub010/internal/syncengine"
)

const defaultTimeout = 30 * time.Second

// Client calls the workout-session API over HTTP. It implements
// syncengine.RemoteClient.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL. The token, when
// non-empty, is sent as a bearer credential.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// CreateSession posts a new workout session and returns the server-assigned
// ID. Transport errors and 5xx responses are retryable; other 4xx responses
// (except 408 and 429) are permanent.
func (c *Client) CreateSession(ctx context.Context, req syncengine.CreateSessionRequest) (syncengine.CreateSessionResponse, error) {
	var resp syncengine.CreateSessionResponse

	body, err := json.Marshal(req)
	if err != nil {
		return resp, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/workout-sessions", bytes.NewReader(body))
	if err != nil {
		return resp, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return resp, &syncengine.RemoteError{Message: err.Error()}
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode >= 400 {
		msg := readErrorMessage(httpResp.Body)
		return resp, &syncengine.RemoteError{
			Permanent:  permanentStatus(httpResp.StatusCode),
			StatusCode: httpResp.StatusCode,
			Message:    msg,
		}
	}

	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return resp, &syncengine.RemoteError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	return resp, nil
}

// permanentStatus reports whether an HTTP status will never succeed on retry.
func permanentStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return code < 500
}

// readErrorMessage extracts a server error message, falling back to the raw
// body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}
