package elnk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client represents an elnk.pro API client
type Client struct {
	mu        sync.RWMutex
	apiKey    string
	domainID  string
	projectID string

	baseURL      string
	shortBaseURL string
	timeout      time.Duration
	userAgent    string
	concurrency  int
	httpClient   *http.Client
	metrics      *Metrics
	logger       zerolog.Logger
}

// NewClient creates a new elnk client. It does not contact the API;
// use TestConnection to verify the key.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg.applyDefaults()

	options := clientOptions{
		timeout:      cfg.Timeout,
		userAgent:    defaultUserAgent,
		concurrency:  DefaultConcurrency,
		shortBaseURL: DefaultShortBaseURL,
	}
	for _, opt := range opts {
		opt(&options)
	}

	timeout := options.timeout
	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	} else if httpClient.Timeout > 0 {
		timeout = httpClient.Timeout
	}

	return &Client{
		apiKey:       cfg.APIKey,
		domainID:     cfg.DomainID,
		projectID:    cfg.ProjectID,
		baseURL:      cfg.BaseURL,
		shortBaseURL: options.shortBaseURL,
		timeout:      timeout,
		userAgent:    options.userAgent,
		concurrency:  options.concurrency,
		httpClient:   httpClient,
		metrics:      options.metrics,
		logger:       logger.With().Str("component", "elnk").Logger(),
	}, nil
}

// SetAPIKey replaces the bearer token used for subsequent requests
func (c *Client) SetAPIKey(apiKey string) error {
	if apiKey == "" {
		return ErrMissingAPIKey
	}
	c.mu.Lock()
	c.apiKey = apiKey
	c.mu.Unlock()
	return nil
}

// SetDomainID sets the domain new links are created on. Empty means the default domain.
func (c *Client) SetDomainID(domainID string) {
	c.mu.Lock()
	c.domainID = domainID
	c.mu.Unlock()
}

// SetProjectID sets the project new links are filed under
func (c *Client) SetProjectID(projectID string) {
	c.mu.Lock()
	c.projectID = projectID
	c.mu.Unlock()
}

// Settings returns the current configuration, without the API key
func (c *Client) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Settings{
		DomainID:  c.domainID,
		ProjectID: c.projectID,
		Timeout:   c.timeout,
		BaseURL:   c.baseURL,
	}
}

// doRequest performs an authenticated request and returns the raw response body.
// route is the templated path used for metrics, e.g. "/links/:id".
func (c *Client) doRequest(ctx context.Context, method, route, path string, params url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	apiKey := c.apiKey
	c.mu.RUnlock()

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, route, 0, time.Since(start))
		c.logger.Debug().
			Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("No response from elnk API")
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.observe(method, route, resp.StatusCode, elapsed)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Str("request_id", requestID).
		Msg("elnk API request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiErrorMessage(respBody, resp.StatusCode),
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

// decodeData unmarshals the "data" member of body into out, or the whole
// body when there is no such member.
func decodeData(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if data := bytes.TrimSpace(envelope.Data); len(data) > 0 && !bytes.Equal(data, []byte("null")) {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// decodePagination extracts the "pagination" member of body, if any
func decodePagination(body []byte) *Pagination {
	var envelope struct {
		Pagination *Pagination `json:"pagination"`
		Meta       *Pagination `json:"meta"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if envelope.Pagination != nil {
		return envelope.Pagination
	}
	return envelope.Meta
}

// apiErrorMessage picks the most useful message out of an error body
func apiErrorMessage(body []byte, status int) string {
	var withMessage struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &withMessage); err == nil && withMessage.Message != "" {
		return withMessage.Message
	}

	var withErrors struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &withErrors); err == nil && len(withErrors.Errors) > 0 {
		if first := withErrors.Errors[0]; first.Title != "" {
			return first.Title
		} else if first.Detail != "" {
			return first.Detail
		}
	}

	return fmt.Sprintf("API request failed with status code: %d", status)
}
