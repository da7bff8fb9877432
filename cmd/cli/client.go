package main

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

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/adapter/http/middleware"
)

// apiClient talks to the splitledger HTTP API.
type apiClient struct {
	baseURL string
	token   string
	user    string
	name    string
	http    *http.Client
}

func newAPIClient(opts *globalOptions) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		token:   opts.token,
		user:    opts.user,
		name:    opts.name,
		http:    &http.Client{Timeout: opts.timeout},
	}
}

// statusError is returned for non-2xx responses.
type statusError struct {
	Status  int
	Code    string
	Message string
}

func (e *statusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed (status %d)", e.Status)
	}
	if e.Message == "" {
		return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Code)
	}
	return fmt.Sprintf("request failed (status %d): %s: %s", e.Status, e.Code, e.Message)
}

func (c *apiClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, "")
}

func (c *apiClient) post(ctx context.Context, path string, body any, idempotencyKey string) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body, idempotencyKey)
}

func (c *apiClient) do(ctx context.Context, method, path string, body any, idempotencyKey string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
	}
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.user != "":
		req.Header.Set(middleware.UserIDHeader, c.user)
		if c.name != "" {
			req.Header.Set(middleware.UserNameHeader, c.name)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &statusError{Status: resp.StatusCode}
		var apiErr dto.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil {
			serr.Code = apiErr.Error
			serr.Message = apiErr.Message
		}
		return data, serr
	}

	return data, nil
}

// printJSON re-indents a JSON document onto w.
func printJSON(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, werr := w.Write(data)
		return werr
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func defaultIdempotencyKey() string {
	return fmt.Sprintf("cli-%d", time.Now().UnixNano())
}
