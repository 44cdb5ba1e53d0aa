package host

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// Exchange is the HTTP context of one plugin run: the request the guest
// sees and may rewrite, and the response it builds.
type Exchange struct {
	Request  *http.Request
	Response *Response

	tags     []string
	body     []byte
	bodyRead bool
}

// Response is the response side of an Exchange.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int32
}

// NewExchange wraps req. The response starts as an empty 200.
func NewExchange(req *http.Request) *Exchange {
	return &Exchange{
		Request: req,
		Response: &Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
		},
	}
}

// Tags returns the tags added by the guest, in order.
func (e *Exchange) Tags() []string {
	return e.tags
}

// AddTag records a tag on the exchange.
func (e *Exchange) AddTag(tag string) {
	e.tags = append(e.tags, tag)
}

// RequestBody reads and caches the request body. The body is left
// readable for later handlers.
func (e *Exchange) RequestBody() ([]byte, error) {
	if e.bodyRead {
		return e.body, nil
	}
	if e.Request.Body != nil {
		data, err := io.ReadAll(e.Request.Body)
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		_ = e.Request.Body.Close()
		e.body = data
	}
	e.bodyRead = true
	e.Request.Body = io.NopCloser(bytes.NewReader(e.body))
	return e.body, nil
}

// SetRequestBody replaces the request body.
func (e *Exchange) SetRequestBody(data []byte) {
	e.body = data
	e.bodyRead = true
	e.Request.Body = io.NopCloser(bytes.NewReader(data))
	e.Request.ContentLength = int64(len(data))
	if len(data) > 0 {
		e.Request.Header.Set("Content-Length", strconv.Itoa(len(data)))
	} else {
		e.Request.Header.Del("Content-Length")
	}
}

// RealIP returns the client address, preferring X-Forwarded-For and
// X-Real-Ip over the connection address.
func (e *Exchange) RealIP() string {
	r := e.Request
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Scheme returns "https" for TLS requests and "http" otherwise, unless the
// URL carries an explicit scheme.
func (e *Exchange) Scheme() string {
	if s := e.Request.URL.Scheme; s != "" {
		return s
	}
	if e.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// WriteTo copies the response into w.
func (e *Exchange) WriteTo(w http.ResponseWriter) error {
	for name, values := range e.Response.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(int(e.Response.StatusCode))
	_, err := w.Write(e.Response.Body)
	return err
}

type exchangeKey struct{}

// WithExchange attaches ex to ctx for the host functions of one run.
func WithExchange(ctx context.Context, ex *Exchange) context.Context {
	return context.WithValue(ctx, exchangeKey{}, ex)
}

// ExchangeFrom returns the exchange attached to ctx.
func ExchangeFrom(ctx context.Context) (*Exchange, bool) {
	ex, ok := ctx.Value(exchangeKey{}).(*Exchange)
	return ex, ok
}
