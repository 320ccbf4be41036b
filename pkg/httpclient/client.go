// Package httpclient is the fluent HTTP client the execution engine fires
// requests through.
//
//	resp, err := httpclient.Post(base + "/product").
//	    Body(payload).
//	    Timeout(3 * time.Second).
//	    Send(ctx)
//
// The harness deliberately never retries: a timed-out or refused exchange is
// itself a result the run has to report, not a blip to paper over.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"
)

// defaultTransport is the connection-pooled transport used for real runs.
// Tests can replace DefaultClient.Transport to intercept calls.
var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        50,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is the shared client behind every outgoing request.
var DefaultClient = &gohttp.Client{
	Transport: defaultTransport,
}

// ResetTransport restores the production transport on DefaultClient.
// Call via defer after injecting a test transport.
func ResetTransport() {
	DefaultClient.Transport = defaultTransport
}

// ------------------- Request -------------------

// Request is a fluent HTTP request builder.
type Request struct {
	method  string
	url     string
	headers map[string]string
	body    []byte
	timeout time.Duration
}

// Get starts a GET request.
func Get(url string) *Request { return newRequest(gohttp.MethodGet, url) }

// Post starts a POST request.
func Post(url string) *Request { return newRequest(gohttp.MethodPost, url) }

func newRequest(method, url string) *Request {
	return &Request{
		method:  method,
		url:     url,
		headers: map[string]string{"Accept": "application/json"},
		timeout: 30 * time.Second,
	}
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Bearer sets the Authorization: Bearer <token> header.
func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Body sets the request body. []byte and string are sent raw; anything else
// is marshalled to JSON. Content-Type is application/json either way; the
// services under test speak nothing else.
func (r *Request) Body(v any) *Request {
	switch b := v.(type) {
	case nil:
	case []byte:
		r.body = b
	case string:
		r.body = []byte(b)
	default:
		data, err := json.Marshal(v)
		if err == nil {
			r.body = data
		}
	}
	r.headers["Content-Type"] = "application/json"
	return r
}

// Timeout sets the per-request timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// ------------------- Send -------------------

// Send executes the request once. A non-nil error means the exchange itself
// failed (connect, timeout, DNS, protocol); an HTTP error status is a normal
// *Response.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s %s: %w", r.method, r.url, err)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

// ------------------- Response -------------------

// Response wraps the HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest any) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("httpclient: decode JSON: %w", err)
	}
	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}
