// Package client provides the API client and the observable state
// store that front the transaction service.
package client

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

	"fintrack/internal/core"
)

// APIError is the decoded failure envelope from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []core.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Field + ": " + f.Message
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsValidation reports whether the failure carries field-level errors.
func (e *APIError) IsValidation() bool {
	return len(e.Fields) > 0
}

// IsNotFound reports whether the id did not resolve.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// ListResult is the payload of a successful list call.
type ListResult struct {
	Items   []core.Transaction
	Total   int64
	Page    int
	Limit   int
	Message string
}

// Client talks to the transaction API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// New creates a client for the given base URL, e.g.
// "http://localhost:8080". A nil httpClient gets a sane default.
func New(httpClient *http.Client, baseURL string) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    u,
	}, nil
}

// wire envelopes, mirroring the server's response shapes.
type listEnvelope struct {
	Success      bool               `json:"success"`
	Message      string             `json:"message"`
	Total        int64              `json:"total"`
	Page         int                `json:"page"`
	Limit        int                `json:"limit"`
	Transactions []core.Transaction `json:"transactions"`
}

type itemEnvelope struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	Transaction core.Transaction `json:"transaction"`
}

type errorEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []core.FieldError `json:"errors"`
}

// encodeFilter turns filter criteria into list query parameters.
func encodeFilter(f core.Filter) url.Values {
	q := url.Values{}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if !f.StartDate.IsZero() {
		q.Set("startDate", f.StartDate.Format(core.DateLayout))
	}
	if !f.EndDate.IsZero() {
		q.Set("endDate", f.EndDate.Format(core.DateLayout))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// FetchTransactions lists transactions matching the filter.
func (c *Client) FetchTransactions(ctx context.Context, f core.Filter) (ListResult, error) {
	u := c.baseURL.ResolveReference(&url.URL{Path: "/api/transactions"})
	u.RawQuery = encodeFilter(f).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return ListResult{}, fmt.Errorf("build list request: %w", err)
	}

	var env listEnvelope
	if err := c.do(req, http.StatusOK, &env); err != nil {
		return ListResult{}, err
	}

	return ListResult{
		Items:   env.Transactions,
		Total:   env.Total,
		Page:    env.Page,
		Limit:   env.Limit,
		Message: env.Message,
	}, nil
}

// CreateTransaction submits a full payload and returns the stored record.
func (c *Client) CreateTransaction(ctx context.Context, in core.Input) (core.Transaction, error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, "/api/transactions", in)
	if err != nil {
		return core.Transaction{}, err
	}

	var env itemEnvelope
	if err := c.do(req, http.StatusCreated, &env); err != nil {
		return core.Transaction{}, err
	}
	return env.Transaction, nil
}

// UpdateTransaction submits a partial payload for the given id.
func (c *Client) UpdateTransaction(ctx context.Context, id string, in core.Input) (core.Transaction, error) {
	req, err := c.jsonRequest(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(id), in)
	if err != nil {
		return core.Transaction{}, err
	}

	var env itemEnvelope
	if err := c.do(req, http.StatusOK, &env); err != nil {
		return core.Transaction{}, err
	}
	return env.Transaction, nil
}

// DeleteTransaction removes the transaction with the given id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL.ResolveReference(&url.URL{Path: "/api/transactions/" + url.PathEscape(id)}).String(), nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}

	return c.do(req, http.StatusOK, &struct{}{})
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends the request and decodes the response into out when the
// status matches wantStatus. Any other status is decoded as an error
// envelope and returned as *APIError.
func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != wantStatus {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
		var env errorEnvelope
		if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
			apiErr.Message = env.Message
			apiErr.Fields = env.Errors
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response body: %w", err)
	}
	return nil
}
