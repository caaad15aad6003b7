// Package mastodon is a rate-limit-aware client for the subset of the
// Mastodon REST API the bot engine needs. Every operation issues exactly one
// request; retry policy belongs to the caller.
package mastodon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

const defaultRequestTimeout = 30 * time.Second

type Client struct {
	http    *http.Client
	baseURL string
	token   string
	logger  *slog.Logger
	limiter *rate.Limiter

	mu sync.Mutex
	rl RateLimitState
}

type Options struct {
	BaseURL string
	Token   string
	// Persistent controls connection reuse across calls. Reuse is an
	// optimization only; disabling it closes the connection after each call.
	Persistent bool
	Logger     *slog.Logger
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DisableKeepAlives = !opts.Persistent
		httpClient = &http.Client{
			Timeout:   defaultRequestTimeout,
			Transport: transport,
		}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		token:   strings.TrimSpace(opts.Token),
		logger:  logger,
		// Mastodon allows 300 requests per 5 minutes per account; pace
		// outbound calls at that average, bursting for catch-up pagination.
		limiter: rate.NewLimiter(rate.Every(time.Second), 30),
	}
}

// HomeTimeline fetches up to limit statuses newer than sinceID, newest first.
// An empty sinceID fetches the most recent statuses.
func (c *Client) HomeTimeline(ctx context.Context, sinceID string, limit int) ([]Status, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if sinceID != "" {
		q.Set("min_id", sinceID)
	}
	const op = "home_timeline"
	body, err := c.call(ctx, op, http.MethodGet, "/api/v1/timelines/home", q)
	if err != nil {
		return nil, err
	}
	var out []Status
	if err := c.decodeList(op, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	const op = "notifications"
	body, err := c.call(ctx, op, http.MethodGet, "/api/v1/notifications", q)
	if err != nil {
		return nil, err
	}
	var out []Notification
	if err := c.decodeList(op, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetStatus(ctx context.Context, id string) (*Status, error) {
	const op = "get_status"
	body, err := c.call(ctx, op, http.MethodGet, "/api/v1/statuses/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var out Status
	if err := c.decodeObject(op, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reblog(ctx context.Context, id string) error {
	_, err := c.call(ctx, "reblog", http.MethodPost, "/api/v1/statuses/"+url.PathEscape(id)+"/reblog", nil)
	return err
}

func (c *Client) Unreblog(ctx context.Context, id string) error {
	_, err := c.call(ctx, "unreblog", http.MethodPost, "/api/v1/statuses/"+url.PathEscape(id)+"/unreblog", nil)
	return err
}

func (c *Client) DeleteStatus(ctx context.Context, id string) error {
	_, err := c.call(ctx, "delete_status", http.MethodDelete, "/api/v1/statuses/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) DismissNotification(ctx context.Context, id string) error {
	_, err := c.call(ctx, "dismiss_notification", http.MethodPost, "/api/v1/notifications/"+url.PathEscape(id)+"/dismiss", nil)
	return err
}

func (c *Client) Follow(ctx context.Context, accountID string) error {
	_, err := c.call(ctx, "follow", http.MethodPost, "/api/v1/accounts/"+url.PathEscape(accountID)+"/follow", nil)
	return err
}

func (c *Client) Unfollow(ctx context.Context, accountID string) error {
	_, err := c.call(ctx, "unfollow", http.MethodPost, "/api/v1/accounts/"+url.PathEscape(accountID)+"/unfollow", nil)
	return err
}

type responseBody struct {
	contentType string
	data        []byte
}

// call performs one request and returns the response body after the status
// check. Rate-limit headers are recorded for every response, success or not.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values) (responseBody, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return responseBody{}, &APIError{Kind: ErrTransport, Op: op, Err: err}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	c.logger.Debug("api_request", "method", method, "path", path)

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return responseBody{}, &APIError{Kind: ErrTransport, Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return responseBody{}, &APIError{Kind: ErrTransport, Op: op, Err: err}
	}
	data, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	c.updateRateLimit(resp.Header)
	c.logger.Debug("api_response", "method", method, "path", path, "code", resp.StatusCode)

	if readErr != nil {
		return responseBody{}, &APIError{Kind: ErrTransport, Op: op, Err: readErr}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseBody{}, &APIError{Kind: ErrStatus, Op: op, Code: resp.StatusCode, Body: data}
	}
	return responseBody{contentType: resp.Header.Get("Content-Type"), data: data}, nil
}

func (c *Client) decodeObject(op string, body responseBody, out any) error {
	raw, err := c.validateJSON(op, body)
	if err != nil {
		return err
	}
	if raw[0] != '{' {
		return &APIError{Kind: ErrUnexpectedResponse, Op: op, Err: fmt.Errorf("response is not an object")}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Kind: ErrUnexpectedResponse, Op: op, Err: fmt.Errorf("decode object: %w", err)}
	}
	return nil
}

func (c *Client) decodeList(op string, body responseBody, out any) error {
	raw, err := c.validateJSON(op, body)
	if err != nil {
		return err
	}
	if raw[0] != '[' {
		return &APIError{Kind: ErrUnexpectedResponse, Op: op, Err: fmt.Errorf("response is not a list")}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Kind: ErrUnexpectedResponse, Op: op, Err: fmt.Errorf("decode list: %w", err)}
	}
	return nil
}

// validateJSON enforces the endpoint contract: JSON content-type declaring
// utf-8, a non-empty valid UTF-8 body. Returns the body with leading
// whitespace trimmed so callers can inspect the top-level shape.
func (c *Client) validateJSON(op string, body responseBody) ([]byte, error) {
	ct := strings.ToLower(body.contentType)
	if !strings.Contains(ct, "application/json") || !strings.Contains(ct, "utf-8") {
		return nil, &APIError{Kind: ErrUnexpectedResponse, Op: op, Err: fmt.Errorf("unexpected content-type %q", body.contentType)}
	}
	if len(body.data) == 0 {
		return nil, &APIError{Kind: ErrUnexpectedResponse, Op: op, Err: fmt.Errorf("empty response body")}
	}
	if !utf8.Valid(body.data) {
		return nil, &APIError{Kind: ErrUnexpectedResponse, Op: op, Err: fmt.Errorf("response body is not valid utf-8")}
	}
	raw := []byte(strings.TrimSpace(string(body.data)))
	if len(raw) == 0 {
		return nil, &APIError{Kind: ErrUnexpectedResponse, Op: op, Err: fmt.Errorf("blank response body")}
	}
	return raw, nil
}
