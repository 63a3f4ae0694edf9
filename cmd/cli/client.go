package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/adapter/http/middleware"
)

// apiClient talks to the achledger HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) configure(baseURL string, timeout time.Duration) {
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.http = &http.Client{Timeout: timeout}
}

// apiError is a non-2xx answer from the API.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e dto.ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg := e.Error
			if e.Message != "" {
				msg += ": " + e.Message
			}
			return nil, &apiError{Status: resp.StatusCode, Message: msg}
		}
		return nil, &apiError{Status: resp.StatusCode, Message: truncate(string(raw), 200)}
	}

	return raw, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	raw, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *apiClient) postJSON(ctx context.Context, path string, body, out any, idempotencyKey string) error {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{middleware.IdempotencyKeyHeader: idempotencyKey}
	}

	raw, err := c.do(ctx, http.MethodPost, path, body, headers)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
