package remote

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
)

// ErrStatus reports a non-2xx response or a refused write.
var ErrStatus = errors.New("unexpected response from key/value server")

// Client talks to a key/value server started by NewHandler.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL. A nil httpClient
// gets a client with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) url(namespace string) string {
	return c.baseURL + "/api/" + namespace
}

// Get returns the stored document for namespace. An empty object means the
// server has nothing stored.
func (c *Client) Get(ctx context.Context, namespace string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(namespace), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", namespace, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", namespace, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: %w: status %d", namespace, ErrStatus, resp.StatusCode)
	}
	return body, nil
}

// Put replaces the document for namespace.
func (c *Client) Put(ctx context.Context, namespace string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(namespace), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("put %s: %w", namespace, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("put %s: %w: status %d", namespace, ErrStatus, resp.StatusCode)
	}
	var out writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode %s response: %w", namespace, err)
	}
	if !out.Success {
		return fmt.Errorf("put %s: %w: write refused", namespace, ErrStatus)
	}
	return nil
}
