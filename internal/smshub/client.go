// Package smshub is a client for the SMSHub number activation API.
//
// Every operation is one GET request to the handler endpoint. The provider
// answers with a bare token, a colon separated TOKEN:field:field line or a
// JSON document; the client turns that into a typed value or an error
// wrapping one of the Err* kinds.
package smshub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPClient executes requests for the Client. *http.Client satisfies it,
// and so does any adapter that owns its own connection pool.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the SMSHub handler. It holds no mutable state and may be
// shared by many goroutines as long as the HTTPClient allows it.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient HTTPClient
}

// Option customises a Client.
type Option func(*Client)

// WithEndpoint points the client at another handler URL.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// New creates a Client for apiKey that sends its requests through
// httpClient. A nil httpClient falls back to http.DefaultClient.
func New(apiKey string, httpClient HTTPClient, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the handler URL the client sends requests to.
func (c *Client) Endpoint() string { return c.endpoint }

// get performs one request for action and returns the raw body.
func (c *Client) get(ctx context.Context, action string, params url.Values) ([]byte, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("parse endpoint: %w", err)}
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("api_key", c.apiKey)
	q.Set("action", action)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, &TransportError{Action: action, Err: fmt.Errorf("request timeout or canceled: %w", err)}
		}
		return nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Action:     action,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected body %q", truncate(string(body), 128)),
		}
	}

	return body, nil
}

// getText is get with the body trimmed to a token line.
func (c *Client) getText(ctx context.Context, action string, params url.Values) (string, error) {
	body, err := c.get(ctx, action, params)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) badKey(action, body string) error {
	return responseError(action, body, ErrBadKey, "api_key="+c.apiKey)
}

func badAction(action, body string) error {
	return responseError(action, body, ErrBadAction, "action="+action)
}

func sqlError(action, body string) error {
	return responseError(action, body, ErrSQL, "")
}
