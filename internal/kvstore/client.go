// Package kvstore is a client for the HTTP key-value content store that holds
// articles, labels, converted pages and fragments.
package kvstore

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

	"github.com/dgallion1/docblocks/internal/labels"
	"github.com/dgallion1/docblocks/internal/source"
)

// RetryableError indicates a transient store failure (429 or 5xx).
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return fmt.Sprintf("retryable store error (status %d): %s", e.StatusCode, msg)
}

// IsRetryable reports whether err wraps a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Client talks to the store's /kv API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a client for baseURL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NodeRequest is the body for PUT /kv/{key}.
type NodeRequest struct {
	Value       any    `json:"value"`
	ContentType string `json:"content_type,omitempty"`
	Source      string `json:"source,omitempty"`
}

// nodeResponse is the body of GET /kv/{key}.
type nodeResponse struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

// errNodeNotFound marks a 404 from the store.
var errNodeNotFound = errors.New("node not found")

func (c *Client) keyURL(key string) string {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.baseURL + "/kv/" + strings.Join(parts, "/")
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return c.httpClient.Do(req)
}

// statusError converts a failed response into an error.
func statusError(op, key string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%s %s: %w", op, key, &RetryableError{StatusCode: resp.StatusCode, Message: string(body)})
	}
	return fmt.Errorf("%s %s: status %d: %s", op, key, resp.StatusCode, string(body))
}

// getNode fetches key and decodes its value into v.
func (c *Client) getNode(ctx context.Context, key string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.keyURL(key), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("get node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errNodeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return statusError("get node", key, resp)
	}
	var node nodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&node); err != nil {
		return fmt.Errorf("decode node: %w", err)
	}
	if err := json.Unmarshal(node.Value, v); err != nil {
		return fmt.Errorf("decode node %s value: %w", key, err)
	}
	return nil
}

// PutNode stores a node at key.
func (c *Client) PutNode(ctx context.Context, key string, node NodeRequest) error {
	body, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.keyURL(key), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("put node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return statusError("put node", key, resp)
	}
	return nil
}

// GetArticle implements source.ArticleSource over /kv/articles/{lang}{path}.
func (c *Client) GetArticle(ctx context.Context, lang, pagePath string) (*source.Article, error) {
	key := "articles/" + lang + source.NormalizePath(pagePath)
	var a source.Article
	if err := c.getNode(ctx, key, &a); err != nil {
		if errors.Is(err, errNodeNotFound) {
			return nil, fmt.Errorf("%s: %w", key, source.ErrNotFound)
		}
		return nil, err
	}
	return &a, nil
}

// LookupLabel implements labels.Lookup over /kv/labels/{lang}/{category}/{code}.
func (c *Client) LookupLabel(ctx context.Context, category, code, lang string) (string, error) {
	key := "labels/" + lang + "/" + category + "/" + code
	var label string
	if err := c.getNode(ctx, key, &label); err != nil {
		if errors.Is(err, errNodeNotFound) {
			return "", fmt.Errorf("%s: %w", key, labels.ErrNotFound)
		}
		return "", err
	}
	return label, nil
}

// WriteFragment implements fragment.Writer. The document is stored at path
// and its store URL is returned.
func (c *Client) WriteFragment(ctx context.Context, path string, content []byte) (string, error) {
	err := c.PutNode(ctx, path, NodeRequest{
		Value:       string(content),
		ContentType: "text/html",
		Source:      "docblocks",
	})
	if err != nil {
		return "", err
	}
	return c.keyURL(path), nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
