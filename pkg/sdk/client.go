package lodestar

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
)

const defaultTimeout = 30 * time.Second

// Client is the lodestar SDK entry point. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	user       string
	httpClient *http.Client
	obs        *observer
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("lodestar: base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("lodestar: invalid base URL: %w", err)
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.apiKey,
		user:       cfg.user,
		httpClient: hc,
		obs:        obs,
	}, nil
}

// Ingest submits one document for indexing.
func (c *Client) Ingest(ctx context.Context, req IngestRequest) (res IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	err = c.do(ctx, http.MethodPost, "/v1/ingest", req, &res)
	return res, err
}

// ListDocuments returns the caller's documents, newest first.
func (c *Client) ListDocuments(ctx context.Context) (docs []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("list_documents", start, err) }()

	var resp documentListResponse
	if err = c.do(ctx, http.MethodGet, "/v1/documents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// DeleteDocument removes a document and all of its chunks from every index.
func (c *Client) DeleteDocument(ctx context.Context, id string) (res DeleteResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete_document", start, err) }()

	if id == "" {
		return DeleteResult{}, fmt.Errorf("lodestar: document id required: %w", ErrInvalidArgument)
	}
	err = c.do(ctx, http.MethodDelete, "/v1/documents/"+url.PathEscape(id), nil, &res)
	return res, err
}

// Search runs a hybrid retrieval query.
func (c *Client) Search(ctx context.Context, req SearchRequest) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	err = c.do(ctx, http.MethodPost, "/v1/search", req, &resp)
	return resp, err
}

// Health checks the health of all service components. A degraded service
// still returns a status, not an error.
func (c *Client) Health(ctx context.Context) (hs HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	req, err := c.newRequest(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("lodestar: health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 503 carries the same body as 200 when the service is degraded
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return HealthStatus{}, decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(&hs); err != nil {
		return HealthStatus{}, fmt.Errorf("lodestar: decode health response: %w", err)
	}
	return hs, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, fmt.Errorf("lodestar: encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("lodestar: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if c.user != "" {
		req.Header.Set("X-User-ID", c.user)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lodestar: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lodestar: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Code = "unknown"
		apiErr.Message = resp.Status
	}
	return apiErr
}
