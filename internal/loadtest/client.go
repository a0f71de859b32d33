package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPClient wraps http.Client with the routes the tool exercises.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	return resp.StatusCode, body, nil
}

// Health calls GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("health check returned status %d", status)
	}
	return nil
}

// Activities calls GET /activities.
func (c *HTTPClient) Activities(ctx context.Context) (map[string]Activity, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list activities returned status %d", status)
	}
	var out map[string]Activity
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return out, nil
}

// Signup calls POST /activities/{name}/signup.
func (c *HTTPClient) Signup(ctx context.Context, s Signup) (outcome, error) {
	status, body, err := c.do(ctx, http.MethodPost, participantPath(s, "signup"))
	if err != nil {
		return outcomeFailed, err
	}
	switch status {
	case http.StatusOK:
		return outcomeOK, nil
	case http.StatusBadRequest:
		var e errorResponse
		_ = json.Unmarshal(body, &e)
		if e.Code == "activity_full" {
			return outcomeFull, nil
		}
		return outcomeRefused, nil
	default:
		return outcomeFailed, fmt.Errorf("signup %q returned status %d", s.Activity, status)
	}
}

// Remove calls DELETE /activities/{name}/participants.
func (c *HTTPClient) Remove(ctx context.Context, s Signup) (outcome, error) {
	status, _, err := c.do(ctx, http.MethodDelete, participantPath(s, "participants"))
	if err != nil {
		return outcomeFailed, err
	}
	switch status {
	case http.StatusOK:
		return outcomeOK, nil
	case http.StatusNotFound:
		return outcomeRefused, nil
	default:
		return outcomeFailed, fmt.Errorf("remove from %q returned status %d", s.Activity, status)
	}
}

func participantPath(s Signup, action string) string {
	return "/activities/" + url.PathEscape(s.Activity) + "/" + action + "?email=" + url.QueryEscape(s.Email)
}
