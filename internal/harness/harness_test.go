package harness_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughalk/csc301-a2/internal/engine"
	"github.com/mughalk/csc301-a2/internal/expect"
	"github.com/mughalk/csc301-a2/internal/fixture"
	"github.com/mughalk/csc301-a2/internal/harness"
	"github.com/mughalk/csc301-a2/internal/verdict"
	"github.com/mughalk/csc301-a2/internal/workload"
)

func newHarness(baseURL string, opts harness.Options) *harness.Harness {
	opts.BaseURL = baseURL
	return harness.New(engine.New(time.Second, 0), opts)
}

func TestRun_ExpectationPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/user/1":
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "username": "amal", "extra": "x"})
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"User not found"}`))
		default:
			w.Write([]byte(`{"id":1}`))
		}
	}))
	defer srv.Close()

	cases := fixture.Cases{
		{Name: "user_get_200", Payload: map[string]any{"id": float64(1)}},
		{Name: "user_get_404_missing", Payload: map[string]any{"id": float64(9)}},
		{Name: "user_get_200_wrong_name", Payload: map[string]any{"id": float64(1)}},
		{Name: "user_broken", Payload: nil},
	}
	expected := fixture.NewExpected(map[string]map[string]any{
		"user_get_200":            {"id": float64(1), "username": "amal"},
		"user_get_404_missing":    {"error": "User not found"},
		"user_get_200_wrong_name": {"username": "someone-else"},
	})

	h := newHarness(srv.URL, harness.Options{Resource: "user"})
	agg := h.Run(context.Background(), cases, expected)

	got := agg.Verdicts()
	require.Len(t, got, 4)
	assert.Equal(t, verdict.Pass, got[0].Status)
	assert.Equal(t, verdict.Pass, got[1].Status, "the 404 was expected, and its error body matches")
	assert.Equal(t, verdict.Fail, got[2].Status)
	assert.Contains(t, got[2].Reasons[0], "username")
	assert.Equal(t, verdict.Skipped, got[3].Status)
	assert.False(t, agg.OK())
}

func TestRun_StatusMismatchReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cases := fixture.Cases{{Name: "user_get_404_should_be_gone", Payload: map[string]any{"id": float64(1)}}}
	h := newHarness(srv.URL, harness.Options{Resource: "user"})
	agg := h.Run(context.Background(), cases, fixture.NewExpected(nil))

	v := agg.Verdicts()[0]
	assert.Equal(t, verdict.Fail, v.Status)
	assert.Equal(t, []string{"status 200 not in expected set [404]"}, v.Reasons)
}

func TestRun_UnconstrainedNamePasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	cases := fixture.Cases{{Name: "user_get_whatever_happens", Payload: map[string]any{"id": float64(1)}}}
	h := newHarness(srv.URL, harness.Options{Resource: "user"})
	agg := h.Run(context.Background(), cases, fixture.NewExpected(nil))

	assert.Equal(t, verdict.Pass, agg.Verdicts()[0].Status)
}

func TestRun_ResourceFromCaseName(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cases := fixture.Cases{
		{Name: "user_get_200", Payload: map[string]any{"id": float64(1)}},
		{Name: "product_get_200", Payload: map[string]any{"id": float64(2)}},
		{Name: "warehouse_get_200", Payload: map[string]any{"id": float64(3)}},
	}
	h := newHarness(srv.URL, harness.Options{})
	agg := h.Run(context.Background(), cases, fixture.NewExpected(nil))

	assert.Equal(t, []string{"/user/1", "/product/2"}, paths)
	got := agg.Verdicts()
	assert.Equal(t, verdict.Skipped, got[2].Status, "unknown prefix cannot be routed")
	assert.True(t, agg.OK())
}

func TestRun_TransportFailureFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	cases := fixture.Cases{{Name: "user_get_200", Payload: map[string]any{"id": float64(1)}}}
	h := newHarness(srv.URL, harness.Options{Resource: "user"})
	agg := h.Run(context.Background(), cases, fixture.NewExpected(nil))

	v := agg.Verdicts()[0]
	assert.Equal(t, verdict.Fail, v.Status)
	assert.Contains(t, v.Reasons[0], "transport failure")
}

func TestRun_RoutingPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cases := fixture.Cases{{Name: "user_get_200", Payload: map[string]any{"id": float64(1)}}}
	h := newHarness(srv.URL, harness.Options{Resource: "user", Policy: harness.Routing})
	agg := h.Run(context.Background(), cases, fixture.NewExpected(nil))

	assert.Equal(t, verdict.Pass, agg.Verdicts()[0].Status,
		"any answer proves the route; only silence fails it")
}

func TestRun_ParallelRetrievalKeepsFixtureOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Later ids answer faster, so completion order inverts fixture order.
		if strings.HasSuffix(r.URL.Path, "/1") {
			time.Sleep(80 * time.Millisecond)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cases := fixture.Cases{
		{Name: "user_get_200_first", Payload: map[string]any{"id": float64(1)}},
		{Name: "user_get_200_second", Payload: map[string]any{"id": float64(2)}},
		{Name: "user_get_200_third", Payload: map[string]any{"id": float64(3)}},
	}
	h := newHarness(srv.URL, harness.Options{Resource: "user", Parallel: 3})
	agg := h.Run(context.Background(), cases, fixture.NewExpected(nil))

	got := agg.Verdicts()
	require.Len(t, got, 3)
	assert.Equal(t, "user_get_200_first", got[0].Name)
	assert.Equal(t, "user_get_200_third", got[2].Name)
}

func TestRun_MutationDisablesParallelism(t *testing.T) {
	var mu sync.Mutex
	var order []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cases := fixture.Cases{
		{Name: "user_create_200", Payload: map[string]any{"command": "create", "id": float64(1)}},
		{Name: "user_get_200", Payload: map[string]any{"id": float64(1)}},
	}
	h := newHarness(srv.URL, harness.Options{Resource: "user", Parallel: 8})
	h.Run(context.Background(), cases, fixture.NewExpected(nil))

	assert.Equal(t, []string{"POST /user", "GET /user/1"}, order,
		"a mutation anywhere forces the sequential path")
}

type recordingObserver struct {
	mu    sync.Mutex
	names []string
}

func (o *recordingObserver) Record(v verdict.Verdict) {
	o.mu.Lock()
	o.names = append(o.names, v.Name)
	o.mu.Unlock()
}

func TestRun_ObserverSeesEveryVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cases := fixture.Cases{
		{Name: "user_get_200", Payload: map[string]any{"id": float64(1)}},
		{Name: "user_broken", Payload: nil},
	}
	obs := &recordingObserver{}
	h := newHarness(srv.URL, harness.Options{Resource: "user"})
	h.Observe(obs)
	h.Run(context.Background(), cases, fixture.NewExpected(nil))

	assert.Equal(t, []string{"user_get_200", "user_broken"}, obs.names)
}

func TestRunSteps_WorkloadUnderRoutingPolicy(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusBadRequest) // answers still pass the routing check
		w.Write([]byte(`{"status":"Invalid Request"}`))
	}))
	defer srv.Close()

	steps, warnings, err := workload.Parse(strings.NewReader(`
USER create 1 a a@b.c pw
ORDER place 2 1 3
ORDER get 1
`))
	require.NoError(t, err)
	require.Empty(t, warnings)

	h := newHarness(srv.URL, harness.Options{})
	agg := h.RunSteps(context.Background(), steps)

	assert.Equal(t, []string{"POST /user", "POST /order", "GET /user/purchased/1"}, paths)
	pass, fail, skipped := agg.Counts()
	assert.Equal(t, 3, pass)
	assert.Zero(t, fail)
	assert.Zero(t, skipped)
}

// Guard: the expectation policy still resolves names through the configured
// status policy.
func TestRun_FixedWidthPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cases := fixture.Cases{{Name: "product_get_200_2000", Payload: map[string]any{"id": float64(1)}}}
	h := newHarness(srv.URL, harness.Options{Resource: "product", StatusPolicy: expect.FixedWidth})
	agg := h.Run(context.Background(), cases, fixture.NewExpected(nil))

	assert.Equal(t, verdict.Pass, agg.Verdicts()[0].Status,
		"2000 is four digits wide and must not shadow the 200")
}
