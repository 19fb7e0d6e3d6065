package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTimeout = 15 * time.Second

// TokenSource supplies the current bearer credential. An empty token is not
// fatal; the request proceeds unauthenticated and the server rejects it.
type TokenSource interface {
	AccessToken() string
}

// Client performs request/response calls against the game backend.
// All resource addressing is explicit: every method takes the world key and
// character key it operates on, so the composite key used server-side always
// matches what the caller derived locally.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

type ClientOpt func(*Client)

func WithHTTPClient(h *http.Client) ClientOpt {
	return func(c *Client) {
		c.http = h
	}
}

func WithTimeout(d time.Duration) ClientOpt {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient creates a client for the API at baseURL. tokens may be nil for a
// client that never authenticates.
func NewClient(baseURL string, tokens TokenSource, opts ...ClientOpt) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do issues a request and returns the raw body. A non-success status is
// returned as a kind-tagged error; the body is still returned when the
// server sent one, since some error payloads carry a message for the UI.
func (c *Client) do(ctx context.Context, op, method, path string, payload any, auth bool) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Kind: KindParse, Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	req.Header.Set("X-Request-Id", uuid.New().String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		} else {
			slog.Warn("remote request without credential", "op", op, "path", path)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindNetwork
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			kind = KindAuth
		case http.StatusConflict:
			kind = KindDuplicate
		}
		slog.Error("remote request failed",
			"op", op, "path", path, "status", resp.StatusCode, "body", string(raw))
		return raw, &Error{Kind: kind, Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	return raw, nil
}

// normalize maps the server's "nothing here" responses to an empty string.
// An empty body, the literal "null", and "{}" all mean no data, not a parse
// error.
func normalize(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == "{}" {
		return ""
	}
	return s
}
