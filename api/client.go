package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ── Wire client ─────────────────────────────────────────────
// Thin HTTP layer over the grid backend. Every call authenticates with
// a token header and returns decoded JSON as-is; no field mapping
// happens here.

const defaultTimeout = 30 * time.Second

// Options configures optional client behavior. The zero value gives a
// 30s-timeout transport and the backend's own page size.
type Options struct {
	// HTTPClient overrides the underlying transport.
	HTTPClient *http.Client

	// PageSize caps rows per listing page. 0 keeps the backend default.
	PageSize int
}

// Client talks to one backend instance. It is safe for concurrent use.
type Client struct {
	baseURL  string
	token    string
	http     *http.Client
	pageSize int
}

// New returns a client for the backend at baseURL authenticating with
// token. opts may be nil.
func New(baseURL, token string, opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		http:     httpClient,
		pageSize: opts.PageSize,
	}
}

// BaseURL returns the backend address the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// ListFields returns the field definitions of a table.
func (c *Client) ListFields(ctx context.Context, tableID int64) ([]Field, error) {
	url := fmt.Sprintf("%s/api/database/fields/table/%d/", c.baseURL, tableID)
	var fields []Field
	if err := c.do(ctx, http.MethodGet, url, nil, &fields); err != nil {
		return nil, fmt.Errorf("list fields of table %d: %w", tableID, err)
	}
	return fields, nil
}

// ListRows fetches every row of a table, following pagination links
// until the backend reports no next page.
func (c *Client) ListRows(ctx context.Context, tableID int64) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/api/database/rows/table/%d/", c.baseURL, tableID)
	if c.pageSize > 0 {
		url += fmt.Sprintf("?size=%d", c.pageSize)
	}
	var rows []map[string]any
	for url != "" {
		var page rowsPage
		if err := c.do(ctx, http.MethodGet, url, nil, &page); err != nil {
			return nil, fmt.Errorf("list rows of table %d: %w", tableID, err)
		}
		if page.Results == nil {
			return nil, fmt.Errorf("list rows of table %d: response has no results", tableID)
		}
		rows = append(rows, *page.Results...)
		url = ""
		if page.Next != nil && *page.Next != "" {
			url = c.resolveNext(*page.Next)
		}
	}
	return rows, nil
}

// GetRow fetches a single row by id.
func (c *Client) GetRow(ctx context.Context, tableID, rowID int64) (map[string]any, error) {
	url := fmt.Sprintf("%s/api/database/rows/table/%d/%d/", c.baseURL, tableID, rowID)
	var row map[string]any
	if err := c.do(ctx, http.MethodGet, url, nil, &row); err != nil {
		return nil, fmt.Errorf("get row %d of table %d: %w", rowID, tableID, err)
	}
	return row, nil
}

// CreateRow inserts one row and returns it as stored, id included.
func (c *Client) CreateRow(ctx context.Context, tableID int64, payload map[string]any) (map[string]any, error) {
	url := fmt.Sprintf("%s/api/database/rows/table/%d/", c.baseURL, tableID)
	var row map[string]any
	if err := c.do(ctx, http.MethodPost, url, payload, &row); err != nil {
		return nil, fmt.Errorf("create row in table %d: %w", tableID, err)
	}
	return row, nil
}

// UpdateRow patches an existing row and returns the stored result.
func (c *Client) UpdateRow(ctx context.Context, tableID, rowID int64, payload map[string]any) (map[string]any, error) {
	url := fmt.Sprintf("%s/api/database/rows/table/%d/%d/", c.baseURL, tableID, rowID)
	var row map[string]any
	if err := c.do(ctx, http.MethodPatch, url, payload, &row); err != nil {
		return nil, fmt.Errorf("update row %d of table %d: %w", rowID, tableID, err)
	}
	return row, nil
}

// CreateRows inserts a batch of rows in one call and returns them as
// stored, in request order.
func (c *Client) CreateRows(ctx context.Context, tableID int64, payloads []map[string]any) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/api/database/rows/table/%d/batch/", c.baseURL, tableID)
	var out batchItems
	if err := c.do(ctx, http.MethodPost, url, batchItems{Items: payloads}, &out); err != nil {
		return nil, fmt.Errorf("batch create in table %d: %w", tableID, err)
	}
	return out.Items, nil
}

// UpdateRows patches a batch of rows in one call. Every payload must
// carry its row id.
func (c *Client) UpdateRows(ctx context.Context, tableID int64, payloads []map[string]any) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/api/database/rows/table/%d/batch/", c.baseURL, tableID)
	var out batchItems
	if err := c.do(ctx, http.MethodPatch, url, batchItems{Items: payloads}, &out); err != nil {
		return nil, fmt.Errorf("batch update in table %d: %w", tableID, err)
	}
	return out.Items, nil
}

// do runs one request and decodes the JSON response into out when out
// is non-nil. Transport failures wrap ErrBackendUnavailable; status
// codes >= 400 come back as *Error.
func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return newStatusError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// resolveNext turns a pagination link into an absolute URL. The
// backend hands back absolute links; relative ones are resolved
// against baseURL.
func (c *Client) resolveNext(next string) string {
	if strings.HasPrefix(next, "http://") || strings.HasPrefix(next, "https://") {
		return next
	}
	return c.baseURL + next
}
