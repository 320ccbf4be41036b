// Package engine dispatches built requests at the target and reduces every
// exchange to a closed two-case outcome:
//
//   - HTTPResult: the peer answered, whatever the status. A 500 with a JSON
//     error body is a result, and its body is kept because the comparator
//     often asserts on exactly that diagnostic structure.
//   - TransportFailure: the exchange itself never completed (connection
//     refused, timeout, DNS, protocol violation).
//
// The split is the whole point: downstream verdict logic is a total match
// over these two cases instead of exception-style control flow.
package engine

import (
	"context"
	"time"

	"github.com/mughalk/csc301-a2/internal/request"
	"github.com/mughalk/csc301-a2/pkg/httpclient"
	"github.com/mughalk/csc301-a2/pkg/metrics"
)

// Outcome is either HTTPResult or TransportFailure, nothing else.
type Outcome interface {
	isOutcome()
}

// HTTPResult is any answer from the peer, error statuses included.
type HTTPResult struct {
	Status int
	Body   string
}

// TransportFailure is the inability to complete the exchange.
type TransportFailure struct {
	Message string
}

func (HTTPResult) isOutcome()       {}
func (TransportFailure) isOutcome() {}

// Engine executes request specs with a per-request timeout and an optional
// pause after each request. The pause is rate limiting for fragile targets,
// nothing more; it is not a synchronization primitive.
type Engine struct {
	timeout time.Duration
	pause   time.Duration
	bearer  string // optional bearer token attached to every request
}

// New builds an Engine. A zero timeout falls back to 3s.
func New(timeout, pause time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Engine{timeout: timeout, pause: pause}
}

// WithBearer returns the engine configured to attach a bearer token.
func (e *Engine) WithBearer(token string) *Engine {
	e.bearer = token
	return e
}

// Execute sends spec and classifies the result. It never returns an error:
// every possible outcome of the exchange is one of the two Outcome cases,
// and the run always continues to the next case.
func (e *Engine) Execute(ctx context.Context, spec request.Spec) Outcome {
	var req *httpclient.Request
	switch spec.Method {
	case "POST":
		req = httpclient.Post(spec.URL).Body(spec.Body)
	default:
		req = httpclient.Get(spec.URL)
	}
	req.Timeout(e.timeout)
	if e.bearer != "" {
		req.Bearer(e.bearer)
	}

	start := time.Now()
	resp, err := req.Send(ctx)

	defer func() {
		if e.pause > 0 {
			time.Sleep(e.pause)
		}
	}()

	if err != nil {
		metrics.ObserveRequest(spec.Method, 0, start)
		return TransportFailure{Message: err.Error()}
	}

	metrics.ObserveRequest(spec.Method, resp.StatusCode, start)
	return HTTPResult{Status: resp.StatusCode, Body: resp.Text()}
}
