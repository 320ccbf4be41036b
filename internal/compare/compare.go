// Package compare decides whether an actual response body satisfies an
// expected one.
//
// Matching is deliberately tolerant:
//
//   - Subset semantics: only keys named by the expectation are checked;
//     server-assigned extras in the actual body never count against it.
//   - Alias normalization: services report some fields under their own
//     names (the product service says "productname" where the fixtures say
//     "name"). The canonical key is added alongside the original, never
//     replacing it, so the report still shows the raw value.
//   - Numeric tolerance: monetary fields are floats that have been through
//     two JSON round trips; "price" is compared within an absolute epsilon.
//
// Every mismatch is collected: a failing case reports all of its broken
// fields, not just the first.
package compare

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// priceEpsilon is the absolute tolerance for tolerance-sensitive fields.
const priceEpsilon = 0.01

// aliasCanonical maps service-specific field names onto the canonical name
// the fixtures use.
var aliasCanonical = map[string]string{
	"productname": "name",
}

// tolerantFields are compared as floats within priceEpsilon.
var tolerantFields = map[string]bool{
	"price": true,
}

// ReasonNotJSON is the dedicated failure reason for an unparseable actual
// body when a body comparison was required.
const ReasonNotJSON = "response is not valid JSON"

// Body checks raw (the actual response text) against expected. A nil or
// empty expected object is a vacuous pass regardless of raw's content; the
// status check alone decides those cases.
func Body(expected map[string]any, raw string) (ok bool, reasons []string) {
	if len(expected) == 0 {
		return true, nil
	}

	var actual map[string]any
	if err := json.Unmarshal([]byte(raw), &actual); err != nil {
		return false, []string{ReasonNotJSON}
	}

	reasons = Fields(expected, actual)
	return len(reasons) == 0, reasons
}

// Fields performs the subset match between two decoded objects and returns
// the ordered list of mismatch reasons (nil when everything matched).
func Fields(expected, actual map[string]any) []string {
	exp := Normalize(expected)
	act := Normalize(actual)

	var reasons []string
	for _, key := range sortedKeys(exp) {
		want := exp[key]

		got, present := act[key]
		if !present {
			reasons = append(reasons, fmt.Sprintf("missing key %q in response body", key))
			continue
		}

		if tolerantFields[key] {
			if r := compareTolerant(key, want, got); r != "" {
				reasons = append(reasons, r)
			}
			continue
		}

		if !equalValues(want, got) {
			reasons = append(reasons, fmt.Sprintf("key %q mismatch: expected %v, got %v", key, want, got))
		}
	}
	return reasons
}

// Normalize returns a copy of obj with canonical aliases added. The original
// field is kept: normalization only ever adds the canonical key when it is
// absent, so debugging output shows what the peer actually sent.
func Normalize(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj)+1)
	for k, v := range obj {
		out[k] = v
	}
	for alias, canonical := range aliasCanonical {
		if v, ok := out[alias]; ok {
			if _, exists := out[canonical]; !exists {
				out[canonical] = v
			}
		}
	}
	return out
}

func compareTolerant(key string, want, got any) string {
	wf, wok := asFloat(want)
	gf, gok := asFloat(got)
	if !wok || !gok {
		return fmt.Sprintf("key %q mismatch: expected %v, got %v", key, want, got)
	}
	if diff := wf - gf; diff > priceEpsilon || diff < -priceEpsilon {
		return fmt.Sprintf("key %q mismatch: expected %v, got %v (tolerance %.2f)", key, wf, gf, priceEpsilon)
	}
	return ""
}

// equalValues compares two decoded JSON values. Both sides come out of
// encoding/json so numbers are float64 on both; everything else falls back
// to deep equality.
func equalValues(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// sortedKeys keeps reason ordering deterministic between runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
