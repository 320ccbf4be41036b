// Package metrics provides Prometheus instrumentation for harness runs.
//
// A one-shot run just accumulates counters that the reporter can fold into
// its summary. Long paced runs (a non-zero --pause over a big fixture) can
// additionally expose a scrape endpoint with Serve so an operator can watch
// progress:
//
//	go metrics.Serve(":9290")
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CasesTotal counts finished cases by verdict ("pass" | "fail" | "skipped").
	CasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "conform",
			Name:      "cases_total",
			Help:      "Test cases finished, by verdict.",
		},
		[]string{"verdict"},
	)

	// RequestDuration tracks latency of requests fired at the target.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "conform",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests issued to the target under test.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	// TransportFailures counts exchanges that never produced a peer response.
	TransportFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "conform",
		Name:      "transport_failures_total",
		Help:      "Requests that failed at the transport level (connect, timeout, DNS).",
	})
)

// DefaultRegistry is the registry all harness metrics live in.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(CasesTotal, RequestDuration, TransportFailures)
}

// ObserveRequest records one completed exchange with the target.
// Pass status 0 for a transport failure.
func ObserveRequest(method string, status int, start time.Time) {
	if status == 0 {
		TransportFailures.Inc()
		return
	}
	RequestDuration.WithLabelValues(method, strconv.Itoa(status)).
		Observe(time.Since(start).Seconds())
}

// CountVerdict records one finished case.
func CountVerdict(verdict string) {
	CasesTotal.WithLabelValues(verdict).Inc()
}

// Serve exposes /metrics on addr. It blocks, so run it in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{}))
	return http.ListenAndServe(addr, mux)
}
