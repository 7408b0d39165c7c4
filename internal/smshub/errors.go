package smshub

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned for a provider response wraps exactly one
// of these, so callers match them with errors.Is.
var (
	ErrBadKey               = errors.New("bad api key")
	ErrSQL                  = errors.New("provider sql error")
	ErrBadAction            = errors.New("bad action")
	ErrNoNumbers            = errors.New("no numbers available")
	ErrNoBalance            = errors.New("no balance")
	ErrWrongService         = errors.New("wrong service")
	ErrNoActivation         = errors.New("no activation")
	ErrUnrecognizedResponse = errors.New("unrecognized response")
	ErrMalformedResponse    = errors.New("malformed response")
)

// ResponseError is returned when the provider answered but the answer is an
// error token or could not be interpreted.
type ResponseError struct {
	Action string
	Body   string
	Detail string
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("smshub %s: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("smshub %s: %v (%s)", e.Action, e.Err, e.Detail)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// TransportError is returned when the HTTP round-trip itself failed.
// StatusCode is zero unless the provider replied with a non-2xx status.
type TransportError struct {
	Action     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("smshub %s: http status %d: %v", e.Action, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("smshub %s: transport: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func responseError(action, body string, kind error, detail string) *ResponseError {
	return &ResponseError{Action: action, Body: body, Detail: detail, Err: kind}
}

func unrecognized(action, body string) *ResponseError {
	return responseError(action, body, ErrUnrecognizedResponse, fmt.Sprintf("body=%q", truncate(body, 128)))
}

func malformed(action, body string, cause error) *ResponseError {
	detail := fmt.Sprintf("body=%q", truncate(body, 128))
	if cause != nil {
		detail = fmt.Sprintf("%s: %v", detail, cause)
	}
	return responseError(action, body, ErrMalformedResponse, detail)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
