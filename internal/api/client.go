package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/tabula/internal/core/item"
)

var _ item.Backend = (*Client)(nil)

// Client implements item.Backend against a tabula server.
type Client struct {
	base *url.URL
	http *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the server at baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}

	c := &Client{
		base: u,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch calls GET /items.
func (c *Client) Fetch(ctx context.Context, q item.Query) (item.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	var page item.Page
	if err := c.do(ctx, http.MethodGet, "/items", params, nil, &page); err != nil {
		return item.Page{}, err
	}
	return page, nil
}

// Add calls POST /items.
func (c *Client) Add(ctx context.Context, it item.Item) (item.Item, error) {
	var added item.Item
	if err := c.do(ctx, http.MethodPost, "/items", nil, it, &added); err != nil {
		return item.Item{}, err
	}
	return added, nil
}

// Update calls PATCH /items/{id}.
func (c *Client) Update(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	var updated item.Item
	if err := c.do(ctx, http.MethodPatch, "/items/"+url.PathEscape(id), nil, patch, &updated); err != nil {
		return item.Item{}, err
	}
	return updated, nil
}

// Delete calls DELETE /items/{id}.
func (c *Client) Delete(ctx context.Context, id string) (item.Item, error) {
	var deleted item.Item
	if err := c.do(ctx, http.MethodDelete, "/items/"+url.PathEscape(id), nil, nil, &deleted); err != nil {
		return item.Item{}, err
	}
	return deleted, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.base.JoinPath(path)
	if params != nil {
		u.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, item.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w: %w", method, path, item.ErrTransient, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(method, path, resp.StatusCode, data)
	}

	var env resultBody
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("%s %s: decode result: %w", method, path, err)
		}
	}
	return nil
}

// responseError maps a non-2xx response to the matching item sentinel.
func responseError(method, path string, status int, data []byte) error {
	msg := http.StatusText(status)
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Message != "" {
		msg = body.Error.Message
		if body.Error.Detail != "" {
			msg += ": " + body.Error.Detail
		}
	}

	var sentinel error
	switch {
	case status == http.StatusBadRequest:
		sentinel = item.ErrValidation
	case status == http.StatusNotFound:
		sentinel = item.ErrNotFound
	case status == http.StatusConflict:
		sentinel = item.ErrConflict
	case status >= http.StatusInternalServerError:
		sentinel = item.ErrTransient
	default:
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, status, msg)
	}
	return &StatusError{Status: status, Message: msg, err: sentinel}
}

// StatusError is returned for non-2xx responses. It unwraps to the item
// sentinel matching the status code.
type StatusError struct {
	Status  int
	Message string
	err     error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.err
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
