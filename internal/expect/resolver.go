// Package expect derives what "success" means for a test case before the
// request is ever sent.
//
// The expected HTTP status is encoded in the case name itself, a fixture
// authoring convention inherited from the assignment suites, e.g.
//
//	order_create_400,409_exceeded_quantity   → statuses {400, 409}
//	product_delete_404_401_fields_dont_match → status 404 (fixed-width scan)
//	user_get_unknown_behaviour               → no constraint, any status passes
//
// The expected body comes from the expected-response fixture. Resolution is
// pure: no I/O, no failure modes. Absent information always degrades to
// "unconstrained", never to an error.
package expect

import (
	"strconv"
	"strings"

	"github.com/mughalk/csc301-a2/internal/fixture"
)

// StatusPolicy selects how status candidates are scanned out of a case name.
type StatusPolicy int

const (
	// TokenScan takes the first underscore token that is all digits, or a
	// comma-separated list whose parts are all digits.
	TokenScan StatusPolicy = iota

	// FixedWidth takes the first all-digit token of exactly three
	// characters. Used for suites whose names embed ids or quantities that
	// must not be mistaken for status codes.
	FixedWidth
)

func (p StatusPolicy) String() string {
	if p == FixedWidth {
		return "fixed-width"
	}
	return "token-scan"
}

// ParseStatusPolicy maps a flag value onto a StatusPolicy.
func ParseStatusPolicy(s string) (StatusPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "token-scan", "token":
		return TokenScan, true
	case "fixed-width", "fixed":
		return FixedWidth, true
	default:
		return TokenScan, false
	}
}

// Expectation is everything a verdict needs to judge a response.
type Expectation struct {
	// StatusCandidates is the set of acceptable status codes. Empty means
	// unconstrained: the status check always passes.
	StatusCandidates []int

	// Body is the partial-match target. Nil or empty means the body check is
	// vacuous.
	Body map[string]any

	// BodyRecorded distinguishes "fixture had no entry" from "fixture had an
	// explicitly empty entry". Both skip the body check; the report shows
	// them differently.
	BodyRecorded bool
}

// Unconstrained reports whether any status satisfies the expectation.
func (e Expectation) Unconstrained() bool { return len(e.StatusCandidates) == 0 }

// StatusAccepts reports whether the given status satisfies the candidates.
func (e Expectation) StatusAccepts(status int) bool {
	if e.Unconstrained() {
		return true
	}
	for _, c := range e.StatusCandidates {
		if c == status {
			return true
		}
	}
	return false
}

// WantsBody reports whether a non-vacuous body comparison applies.
func (e Expectation) WantsBody() bool { return len(e.Body) > 0 }

// Resolve builds the Expectation for a named case.
func Resolve(name string, policy StatusPolicy, expected *fixture.Expected) Expectation {
	body, recorded := expected.Lookup(name)
	return Expectation{
		StatusCandidates: StatusesFromName(name, policy),
		Body:             body,
		BodyRecorded:     recorded,
	}
}

// StatusesFromName scans the case name for status candidates under the given
// policy. Tokens are examined left to right; the first qualifying token wins.
func StatusesFromName(name string, policy StatusPolicy) []int {
	for _, tok := range strings.Split(name, "_") {
		switch policy {
		case FixedWidth:
			if len(tok) == 3 && allDigits(tok) {
				n, _ := strconv.Atoi(tok)
				return []int{n}
			}
		default:
			if allDigits(tok) {
				n, _ := strconv.Atoi(tok)
				return []int{n}
			}
			if set := digitList(tok); set != nil {
				return set
			}
		}
	}
	return nil
}

// digitList parses tokens like "400,409" into a candidate set. Returns nil
// unless every comma-separated part is all digits.
func digitList(tok string) []int {
	if !strings.Contains(tok, ",") {
		return nil
	}
	parts := strings.Split(tok, ",")
	set := make([]int, 0, len(parts))
	for _, p := range parts {
		if !allDigits(p) {
			return nil
		}
		n, _ := strconv.Atoi(p)
		set = append(set, n)
	}
	return set
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
