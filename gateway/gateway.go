// gateway/gateway.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sapogames/roomkit/logger"
)

// ErrNotConfigured is returned before any network traffic when the backend
// endpoint has not been set up. Callers render it as setup instructions,
// not as a transient error.
var ErrNotConfigured = errors.New(
	"backend not configured: set SAPOGAMES_BACKEND_URL and SAPOGAMES_BACKEND_ANON_KEY")

// RemoteError is a business-rule rejection reported by a remote procedure
// (room full, not your turn, round already resolved). The message is the
// backend's human-readable reason, passed through verbatim.
type RemoteError struct {
	Message string
	Code    string
	Status  int
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Client issues named remote procedure calls against the backend's RPC
// endpoint. It performs no retries; a failed call surfaces to the user,
// who must re-trigger the action.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether the client has an endpoint and key to talk to.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.anonKey != ""
}

// Call invokes the named remote procedure with the given arguments and, if
// out is non-nil, decodes the response body into it. A null or empty
// response with a non-nil out leaves out untouched and returns
// ErrEmptyResponse.
func (c *Client) Call(ctx context.Context, fn string, args map[string]any, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode arguments for %s: %w", fn, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/rest/v1/rpc/"+fn, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", fn, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", fn, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response of %s: %w", fn, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remoteError(fn, resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}

	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response of %s: %w", fn, err)
	}
	return nil
}

// remoteError extracts the backend-supplied failure reason. The RPC layer
// reports errors as a JSON object with a message field; anything else
// falls back to a generic transport error.
func remoteError(fn string, status int, raw []byte) error {
	var payload struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return &RemoteError{
			Message: payload.Message,
			Code:    payload.Code,
			Status:  status,
		}
	}

	logger.L().Warnf("RPC %s failed with status %d and unparseable body", fn, status)
	return fmt.Errorf("call to %s failed with status %d", fn, status)
}
