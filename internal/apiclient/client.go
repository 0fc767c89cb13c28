// Package apiclient talks to a running wincounter server over its JSON API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pscheid92/wincounter/internal/jsonmerge"
	"github.com/pscheid92/wincounter/internal/platform/correlation"
	apperrors "github.com/pscheid92/wincounter/internal/platform/errors"
)

const (
	DefaultBaseURL  = "http://localhost:8080"
	httpCallTimeout = 10 * time.Second
	maxResponseSize = 1 << 20
)

// StatusError is returned for non-2xx responses. Type and Message are filled
// from the server's error envelope when the body carries one.
type StatusError struct {
	StatusCode int
	Type       apperrors.ErrorType
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. A nil httpClient gets a
// default client with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpCallTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetSession returns the session's bare record.
func (c *Client) GetSession(ctx context.Context, sessionID string) (jsonmerge.Value, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/data/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return jsonmerge.Value{}, err
	}

	state, err := jsonmerge.Parse(body)
	if err != nil {
		return jsonmerge.Value{}, fmt.Errorf("failed to decode session record: %w", err)
	}
	return state, nil
}

// UpdateSession sends a partial update. The server only acknowledges it; read
// the session back for the merged record.
func (c *Client) UpdateSession(ctx context.Context, sessionID string, update jsonmerge.Value) error {
	payload, err := update.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/api/update/"+url.PathEscape(sessionID), payload)
	if err != nil {
		return err
	}

	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode update response: %w", err)
	}
	if !resp.Success {
		return errors.New("server did not accept the update")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := correlation.ID(ctx); ok {
		req.Header.Set(correlation.Header, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body)
	}
	return body, nil
}

func statusError(code int, body []byte) *StatusError {
	statusErr := &StatusError{StatusCode: code}

	var envelope apperrors.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil {
		statusErr.Type = envelope.Type
		statusErr.Message = envelope.Error
	}
	return statusErr
}
