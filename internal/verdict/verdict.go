// Package verdict collects per-case outcomes and renders the run report.
//
// A verdict is one of three statuses. PASS and FAIL come from policy checks;
// SKIPPED is reserved for cases that never produced a request at all. The
// aggregator is append-only and safe for concurrent recording, but callers
// that care about report ordering record in fixture order.
package verdict

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mughalk/csc301-a2/pkg/logger"
	"github.com/mughalk/csc301-a2/pkg/metrics"
	"github.com/mughalk/csc301-a2/pkg/storage"
)

// Status is the final classification of one test case.
type Status string

const (
	Pass    Status = "PASS"
	Fail    Status = "FAIL"
	Skipped Status = "SKIPPED"
)

// Verdict is the full record of one executed (or skipped) case.
type Verdict struct {
	Name       string
	Status     Status
	Method     string // empty for skipped cases
	URL        string
	HTTPStatus int    // 0 when no response was received
	Body       string // raw response text, empty when none
	Reasons    []string
	Note       string // informational only, never affects the status
}

// Aggregator accumulates verdicts for a run.
type Aggregator struct {
	mu       sync.Mutex
	verdicts []Verdict
	counts   map[Status]int
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{counts: make(map[Status]int)}
}

// Record appends v, updates counters and logs the case at a level matching
// its status.
func (a *Aggregator) Record(v Verdict) {
	a.mu.Lock()
	a.verdicts = append(a.verdicts, v)
	a.counts[v.Status]++
	a.mu.Unlock()

	metrics.CountVerdict(string(v.Status))

	switch v.Status {
	case Fail:
		logger.Warn("case failed", "name", v.Name, "status", v.HTTPStatus, "reasons", strings.Join(v.Reasons, "; "))
	case Skipped:
		logger.Info("case skipped", "name", v.Name, "reasons", strings.Join(v.Reasons, "; "))
	default:
		logger.Debug("case passed", "name", v.Name, "status", v.HTTPStatus)
	}
}

// Verdicts returns a copy of everything recorded so far, in record order.
func (a *Aggregator) Verdicts() []Verdict {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Verdict, len(a.verdicts))
	copy(out, a.verdicts)
	return out
}

// Counts returns the pass, fail and skipped tallies.
func (a *Aggregator) Counts() (pass, fail, skipped int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[Pass], a.counts[Fail], a.counts[Skipped]
}

// OK reports whether the run had zero failures. Skipped cases do not count
// against the run.
func (a *Aggregator) OK() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[Fail] == 0
}

// Render produces the textual run report: one block per case followed by a
// summary block.
func Render(verdicts []Verdict) []byte {
	var b strings.Builder
	counts := map[Status]int{}

	for _, v := range verdicts {
		counts[v.Status]++

		fmt.Fprintf(&b, "== %s ==\n", v.Name)
		if v.Method != "" {
			fmt.Fprintf(&b, "REQUEST: %s %s\n", v.Method, v.URL)
		}
		if v.HTTPStatus != 0 {
			fmt.Fprintf(&b, "STATUS:  %d\n", v.HTTPStatus)
		}
		if v.Body != "" {
			fmt.Fprintf(&b, "BODY:    %s\n", v.Body)
		}
		fmt.Fprintf(&b, "RESULT:  %s\n", v.Status)
		for _, r := range v.Reasons {
			fmt.Fprintf(&b, "REASON:  %s\n", r)
		}
		if v.Note != "" {
			fmt.Fprintf(&b, "NOTE:    %s\n", v.Note)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "== SUMMARY ==\n")
	fmt.Fprintf(&b, "PASS:    %d\n", counts[Pass])
	fmt.Fprintf(&b, "FAIL:    %d\n", counts[Fail])
	fmt.Fprintf(&b, "SKIPPED: %d\n", counts[Skipped])
	fmt.Fprintf(&b, "TOTAL:   %d\n", len(verdicts))
	return []byte(b.String())
}

// WriteReport renders verdicts and stores the artifact on disk at path.
func WriteReport(disk storage.Disk, path string, verdicts []Verdict) error {
	if err := disk.Put(path, Render(verdicts)); err != nil {
		return fmt.Errorf("verdict: write report: %w", err)
	}
	logger.Info("report written", "path", disk.URL(path))
	return nil
}
