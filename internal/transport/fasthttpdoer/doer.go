// Package fasthttpdoer lets a fasthttp.Client serve requests built with
// net/http, so it can be injected wherever an HTTP Do is expected.
package fasthttpdoer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/oggyb/smshub/internal/smshub"
)

var _ smshub.HTTPClient = (*Doer)(nil)

// Doer sends net/http requests through a fasthttp.Client.
type Doer struct {
	client *fasthttp.Client
}

// New wraps client. A nil client gets a fasthttp.Client with the given
// read and write timeouts.
func New(client *fasthttp.Client, timeout time.Duration) *Doer {
	if client == nil {
		client = &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		}
	}
	return &Doer{client: client}
}

// Do executes req. The request context's deadline bounds the call; a
// context that is already done fails before anything is sent.
func (d *Doer) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	freq := fasthttp.AcquireRequest()
	fresp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(freq)
	defer fasthttp.ReleaseResponse(fresp)

	freq.SetRequestURI(req.URL.String())
	freq.Header.SetMethod(req.Method)
	for k, vs := range req.Header {
		for _, v := range vs {
			freq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		freq.SetBody(body)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = d.client.DoDeadline(freq, fresp, deadline)
		if err == fasthttp.ErrTimeout {
			return nil, fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
	} else {
		err = d.client.Do(freq, fresp)
	}
	if err != nil {
		return nil, err
	}

	// fresp goes back to the pool, so the body must be copied out.
	body := append([]byte(nil), fresp.Body()...)
	header := make(http.Header)
	fresp.Header.VisitAll(func(k, v []byte) {
		header.Add(string(k), string(v))
	})

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", fresp.StatusCode(), http.StatusText(fresp.StatusCode())),
		StatusCode:    fresp.StatusCode(),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}
