package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/statboard/internal/adapters/http/api"
	"github.com/okian/statboard/internal/domain/analytics"
)

// HTTPClient wraps http.Client with the statboard routes.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path, sessionID string, body []byte) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if sessionID != "" {
		req.Header.Set(api.SessionHeader, sessionID)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resp.StatusCode, data, nil
}

// Health checks the metrics endpoint.
func (c *HTTPClient) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", "", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// CreateSession calls POST /sessions.
func (c *HTTPClient) CreateSession(ctx context.Context) (string, error) {
	status, data, err := c.do(ctx, http.MethodPost, "/sessions", "", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("%w: create session status %d", ErrUnexpected, status)
	}
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.SessionID == "" {
		return "", fmt.Errorf("%w: create session body %q", ErrUnexpected, data)
	}
	return out.SessionID, nil
}

// Upload sends content as the raw body of POST /datasets.
func (c *HTTPClient) Upload(ctx context.Context, sessionID, name string, content []byte) (int, error) {
	path := "/datasets?name=" + url.QueryEscape(name)
	status, data, err := c.do(ctx, http.MethodPost, path, sessionID, content)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("%w: upload status %d: %s", ErrUnexpected, status, data)
	}
	var out struct {
		Rows int `json:"rows"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("%w: upload body: %w", ErrUnexpected, err)
	}
	return out.Rows, nil
}

// Views calls GET /views with the query encoded the way the dashboard does.
func (c *HTTPClient) Views(ctx context.Context, sessionID string, q analytics.Query) (analytics.Views, error) {
	status, data, err := c.do(ctx, http.MethodGet, "/views?"+encodeQuery(q).Encode(), sessionID, nil)
	if err != nil {
		return analytics.Views{}, err
	}
	if status != http.StatusOK {
		return analytics.Views{}, fmt.Errorf("%w: views status %d: %s", ErrUnexpected, status, data)
	}
	var views analytics.Views
	if err := json.Unmarshal(data, &views); err != nil {
		return analytics.Views{}, fmt.Errorf("%w: views body: %w", ErrUnexpected, err)
	}
	return views, nil
}

func encodeQuery(q analytics.Query) url.Values {
	values := url.Values{}
	if q.Teams != nil {
		values.Set("teams", strings.Join(q.Teams, ","))
	}
	if q.Metric != "" {
		values.Set("metric", q.Metric)
	}
	if q.MinPoints != nil {
		values.Set("min_points", fmt.Sprintf("%g", *q.MinPoints))
	}
	if q.Players != nil {
		values.Set("players", strings.Join(q.Players, ","))
	}
	return values
}
