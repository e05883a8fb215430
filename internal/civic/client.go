// Package civic is the HTTP client for the remote classification service.
package civic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"civisense/internal/record"
)

// Client talks to the classification service. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPClient creates an HTTP client with connection pooling
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
}

func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(30 * time.Second)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// SubmitComplaint sends an encoded complaint to POST /complaint
func (c *Client) SubmitComplaint(ctx context.Context, req record.Request) (*SubmitResponse, error) {
	var out SubmitResponse
	if err := c.do(ctx, "submit complaint", http.MethodPost, "/complaint", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDashboard fetches GET /dashboard
func (c *Client) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	var out DashboardResponse
	if err := c.do(ctx, "fetch dashboard", http.MethodGet, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus sends PATCH /status/{id}. The response body is ignored.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) error {
	path := "/status/" + url.PathEscape(id)
	return c.do(ctx, "update status", http.MethodPatch, path, statusRequest{Status: status}, nil)
}

// SendFeedback sends POST /feedback. The complaint id goes out as an integer
// when it parses as one.
func (c *Client) SendFeedback(ctx context.Context, fb Feedback) error {
	body := feedbackRequest{
		ComplaintID:     fb.ComplaintID,
		CorrectCategory: fb.CorrectCategory,
		CorrectScheme:   fb.CorrectScheme,
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(fb.ComplaintID), 10, 64); err == nil {
		body.ComplaintID = n
	}
	return c.do(ctx, "send feedback", http.MethodPost, "/feedback", body, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("classification service call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
