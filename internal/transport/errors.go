package transport

import (
	"errors"
	"fmt"
)

// Kind classifies why a request produced no usable data.
type Kind string

const (
	KindOffline     Kind = "offline"     // connectivity pre-check failed, nothing was sent
	KindTimeout     Kind = "timeout"     // request aborted after the configured timeout
	KindTransport   Kind = "transport"   // DNS, TLS, connection reset and friends
	KindHTTP        Kind = "http"        // server answered with a non-2xx status
	KindApplication Kind = "application" // 2xx with success:false
	KindDecode      Kind = "decode"      // body was not the expected JSON
)

var (
	ErrOffline = errors.New("network offline")
	ErrTimeout = errors.New("request timed out")
)

// Error is returned for every failed call. Match with errors.As or KindOf.
type Error struct {
	Kind       Kind
	Op         string // "GET /crew/locations"
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrOffline) and errors.Is(err, ErrTimeout) match by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrOffline:
		return e.Kind == KindOffline
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// KindOf returns the Kind of err, or KindTransport for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindTransport
}
