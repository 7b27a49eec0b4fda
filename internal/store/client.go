// Package store is the HTTP client for the platform's record-storage
// service, which persists facts and per-document metadata. Storage itself is
// external; this package only speaks its API.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client communicates with the record-storage HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FactRequest is the body for PUT /records/{record}/facts/{id}.
type FactRequest struct {
	Model   string                   `json:"model"`
	Fields  map[string]string        `json:"fields"`
	Related map[string][]FactRequest `json:"related,omitempty"`
	Source  string                   `json:"source,omitempty"`
}

// Node is a metadata entry under a record.
type Node struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// PutFact stores one fact under a record.
func (c *Client) PutFact(ctx context.Context, recordID, factID string, req FactRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal fact: %w", err)
	}
	u := fmt.Sprintf("%s/records/%s/facts/%s", c.baseURL, url.PathEscape(recordID), url.PathEscape(factID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("put fact: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put fact %s: status %d: %s", factID, resp.StatusCode, string(respBody))
	}
	return nil
}

// DeleteFact removes one fact from a record.
func (c *Client) DeleteFact(ctx context.Context, recordID, factID string) error {
	u := fmt.Sprintf("%s/records/%s/facts/%s", c.baseURL, url.PathEscape(recordID), url.PathEscape(factID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete fact: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete fact %s: status %d: %s", factID, resp.StatusCode, string(respBody))
	}
	return nil
}

// PutNode stores a metadata node at the given key under a record.
func (c *Client) PutNode(ctx context.Context, recordID, key string, value any) error {
	body, err := json.Marshal(map[string]any{"value": value})
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	u := fmt.Sprintf("%s/records/%s/meta/%s", c.baseURL, url.PathEscape(recordID), key)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("put node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put node %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}
	return nil
}

// GetNode retrieves a metadata node by key. A missing node returns nil, nil.
func (c *Client) GetNode(ctx context.Context, recordID, key string) (*Node, error) {
	u := fmt.Sprintf("%s/records/%s/meta/%s", c.baseURL, url.PathEscape(recordID), key)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get node %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}

	var node Node
	if err := json.NewDecoder(resp.Body).Decode(&node); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return &node, nil
}

// ListNodes does a prefix scan over a record's metadata.
func (c *Client) ListNodes(ctx context.Context, recordID, prefix string, limit int) ([]Node, error) {
	u := fmt.Sprintf("%s/records/%s/meta/%s/*", c.baseURL, url.PathEscape(recordID), prefix)
	if limit > 0 {
		u += fmt.Sprintf("?limit=%d", limit)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("list nodes %s: status %d: %s", prefix, resp.StatusCode, string(respBody))
	}

	var result struct {
		Nodes []Node `json:"nodes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	return result.Nodes, nil
}

// DeleteNode deletes a metadata node and optionally its children.
func (c *Client) DeleteNode(ctx context.Context, recordID, key string, recursive bool) error {
	u := fmt.Sprintf("%s/records/%s/meta/%s", c.baseURL, url.PathEscape(recordID), key)
	if recursive {
		u += "?children=true"
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete node %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// RetryableError indicates a transient storage failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, msg)
}
