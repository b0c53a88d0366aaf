package remote

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

	"carrinho/internal/model"
)

// DefaultTimeout bounds every remote call. Without it a hung remote
// call would block a sync pass indefinitely.
const DefaultTimeout = 15 * time.Second

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the API root, e.g. "https://xyz.supabase.co".
	BaseURL string

	// APIKey is sent as the `apikey` header on every request.
	APIKey string

	// Token supplies the current access token for the Authorization
	// header. May return "" when no session is active; the sync engine
	// does not call the client in that state, but reads may.
	Token func() string

	// Timeout overrides DefaultTimeout when non-zero.
	Timeout time.Duration
}

// HTTPClient talks to the remote store over its REST API.
type HTTPClient struct {
	cfg  Config
	http *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the given remote.
func NewHTTPClient(cfg Config) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response from the remote store.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote store: status %d: %s", e.Status, e.Body)
}

func (c *HTTPClient) UpsertCart(ctx context.Context, row model.CartRow) error {
	return c.upsert(ctx, "carts", row)
}

func (c *HTTPClient) UpsertItem(ctx context.Context, row model.ItemRow) error {
	return c.upsert(ctx, "items", row)
}

func (c *HTTPClient) InsertPriceHistory(ctx context.Context, row model.PriceHistoryRow) error {
	_, err := c.do(ctx, http.MethodPost, "price_history", nil, row)
	return err
}

func (c *HTTPClient) DeleteItem(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "items", url.Values{"id": {"eq." + id}}, nil)
	return err
}

func (c *HTTPClient) UpdateCart(ctx context.Context, id string, patch model.CartPatch) error {
	_, err := c.do(ctx, http.MethodPatch, "carts", url.Values{"id": {"eq." + id}}, patch)
	return err
}

func (c *HTTPClient) SelectItems(ctx context.Context, cartID string) ([]model.ItemRow, error) {
	query := url.Values{
		"cart_id": {"eq." + cartID},
		"select":  {"*"},
	}
	body, err := c.do(ctx, http.MethodGet, "items", query, nil)
	if err != nil {
		return nil, err
	}

	var rows []model.ItemRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode items for cart %s: %w", cartID, err)
	}
	return rows, nil
}

// upsert POSTs a row with merge-duplicates resolution on the id key.
func (c *HTTPClient) upsert(ctx context.Context, table string, row any) error {
	req, err := c.newRequest(ctx, http.MethodPost, table, url.Values{"on_conflict": {"id"}}, row)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates")
	_, err = c.send(req)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, table string, query url.Values, body any) ([]byte, error) {
	req, err := c.newRequest(ctx, method, table, query, body)
	if err != nil {
		return nil, err
	}
	return c.send(req)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, table string, query url.Values, body any) (*http.Request, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, table, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, table, err)
	}

	req.Header.Set("apikey", c.cfg.APIKey)
	if c.cfg.Token != nil {
		if token := c.cfg.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *HTTPClient) send(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return body, nil
}
