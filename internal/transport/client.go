package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crewwatch/internal/logger"
)

const DefaultTimeout = 8 * time.Second

// Client sends JSON requests to the realtime API. Every call is bounded by
// the configured timeout and skipped outright when Connectivity says offline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	conn       Connectivity
	tokens     TokenSource
	log        *zap.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithConnectivity(conn Connectivity) Option {
	return func(c *Client) { c.conn = conn }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		conn:       AlwaysOnline{},
		log:        logger.Named("transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Response is a fully-read HTTP response. Non-2xx statuses are not errors here.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do issues method path with an optional JSON body.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	url := c.baseURL + path
	op := method + " " + path

	if !c.conn.Online() {
		c.log.Warn("🔌 offline, request not attempted", zap.String("op", op))
		return nil, &Error{Kind: KindOffline, Op: op, URL: url, Message: "network offline: request not attempted"}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindTransport, Op: op, URL: url, Message: "failed to encode request body", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, URL: url, Message: "failed to create request", Err: err}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, &Error{Kind: KindTransport, Op: op, URL: url, Message: "failed to obtain API token", Err: err}
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, op, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, op, url, err)
	}

	c.log.Debug("📍 request complete",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) classify(ctx context.Context, op, url string, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.log.Warn("⏱️  request timed out", zap.String("op", op), zap.Duration("timeout", c.timeout))
		return &Error{
			Kind:    KindTimeout,
			Op:      op,
			URL:     url,
			Message: fmt.Sprintf("request timed out after %s", c.timeout),
			Err:     err,
		}
	}
	c.log.Warn("❌ request failed", zap.String("op", op), zap.Error(err))
	return &Error{Kind: KindTransport, Op: op, URL: url, Message: fmt.Sprintf("API request failed: %v", err), Err: err}
}
