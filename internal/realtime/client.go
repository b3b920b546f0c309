package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"crewwatch/internal/logger"
	"crewwatch/internal/transport"
)

// Doer is the transport the domain operations run on.
type Doer interface {
	Do(ctx context.Context, method, path string, body any) (*transport.Response, error)
}

// Client exposes the realtime API as operations that always return an
// envelope. Failures never escape as Go errors or panics; inspect
// Result.Success, Result.Error and Result.Err instead.
type Client struct {
	http Doer
	log  *zap.Logger
}

func NewClient(doer Doer) *Client {
	return &Client{
		http: doer,
		log:  logger.Named("realtime"),
	}
}

// Result is the envelope shared by every operation.
type Result struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	// Err carries the classified failure; nil on success.
	Err error `json:"-"`
}

func (r *Result) result() *Result { return r }

// Kind classifies the failure, or returns "" on success.
func (r *Result) Kind() transport.Kind {
	return transport.KindOf(r.Err)
}

type envelope interface {
	result() *Result
}

// Endpoints that answer without a success flag report it through this.
type implicitSuccess interface {
	implicitSuccess() bool
}

// call runs one request and fills out. fallback is used when the server
// gives no error text of its own.
func (c *Client) call(ctx context.Context, method, path string, body any, out envelope, fallback string) {
	res := out.result()
	op := method + " " + path

	resp, err := c.http.Do(ctx, method, path, body)
	if err != nil {
		c.fail(res, err)
		return
	}

	decodeErr := json.Unmarshal(resp.Body, out)

	if !resp.OK() {
		msg := res.Error
		if msg == "" {
			msg = fallback
		}
		c.fail(res, &transport.Error{
			Kind:       transport.KindHTTP,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    msg,
		})
		return
	}

	if decodeErr != nil {
		c.fail(res, &transport.Error{
			Kind:       transport.KindDecode,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid response body: %v", decodeErr),
			Err:        decodeErr,
		})
		return
	}

	if is, ok := out.(implicitSuccess); ok && !res.Success {
		res.Success = is.implicitSuccess()
	}

	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = fallback
		}
		c.fail(res, &transport.Error{
			Kind:       transport.KindApplication,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    msg,
		})
		return
	}

	res.Error = ""
	res.Err = nil
}

func (c *Client) fail(res *Result, err error) {
	res.Success = false
	res.Err = err
	if te, ok := err.(*transport.Error); ok {
		res.Error = te.Message
	} else {
		res.Error = err.Error()
	}
	c.log.Warn("❌ realtime call failed",
		zap.String("kind", string(transport.KindOf(err))),
		zap.Error(err),
	)
}
