// Package fixture holds the in-memory model of the pre-authored test inputs:
// the test-case file (name → request payload) and the expected-response file
// (name → expected body object).
//
// Both files are JSON objects. The test-case file's insertion order is load
// bearing (later cases observe the side effects of earlier creates and
// deletes), so cases are decoded with a token walk instead of a Go map.
// Everything in this package is read-only once loaded.
package fixture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Case is one named test input. A nil Payload means the fixture entry was
// not a JSON object; the harness skips such cases rather than failing them.
type Case struct {
	Name    string
	Payload map[string]any
}

// Cases is the ordered test-case catalogue.
type Cases []Case

// LoadCases reads and decodes a test-case file, preserving file order.
func LoadCases(path string) (Cases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	cases, err := ParseCases(data)
	if err != nil {
		return nil, fmt.Errorf("fixture: parse %s: %w", path, err)
	}
	return cases, nil
}

// ParseCases decodes a JSON object of test cases in insertion order.
func ParseCases(data []byte) (Cases, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read opening token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var cases Cases
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read case name: %w", err)
		}
		name := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read payload for %q: %w", name, err)
		}

		// Non-object payloads are kept with a nil map so the harness can
		// report the skip under the case's own name.
		var payload map[string]any
		if err := unmarshalObject(raw, &payload); err != nil {
			payload = nil
		}

		cases = append(cases, Case{Name: name, Payload: payload})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read closing token: %w", err)
	}
	return cases, nil
}

// Expected is the name → expected-body lookup. Entries may be absent, the
// empty object, or a populated object; the three are distinguished because
// the report records "no entry" and "explicit don't-care" differently even
// though both skip the body check.
type Expected struct {
	entries map[string]map[string]any
}

// LoadExpected reads and decodes an expected-response file.
func LoadExpected(path string) (*Expected, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fixture: parse %s: %w", path, err)
	}

	entries := make(map[string]map[string]any, len(raw))
	for name, msg := range raw {
		var body map[string]any
		if err := unmarshalObject(msg, &body); err != nil {
			// Tolerate null and non-object entries as "no body assertion".
			body = nil
		}
		if body == nil {
			body = map[string]any{}
		}
		entries[name] = body
	}
	return &Expected{entries: entries}, nil
}

// NewExpected wraps an already-built lookup, mainly for tests.
func NewExpected(entries map[string]map[string]any) *Expected {
	if entries == nil {
		entries = map[string]map[string]any{}
	}
	return &Expected{entries: entries}
}

// Lookup returns the expected body for name. recorded reports whether the
// fixture had any entry at all (even an empty one).
func (e *Expected) Lookup(name string) (body map[string]any, recorded bool) {
	body, recorded = e.entries[name]
	return body, recorded
}

// Len returns how many expected entries were loaded.
func (e *Expected) Len() int { return len(e.entries) }

// MissingFor lists case names with no expected entry, in case order.
// Surfaced as a warning before the run, never as an error.
func (e *Expected) MissingFor(cases Cases) []string {
	var missing []string
	for _, c := range cases {
		if _, ok := e.entries[c.Name]; !ok {
			missing = append(missing, c.Name)
		}
	}
	return missing
}

// unmarshalObject decodes data and insists on a JSON object. Numbers land as
// float64 on both the expected and actual side, so comparison code sees one
// numeric type.
func unmarshalObject(data []byte, dest *map[string]any) error {
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return fmt.Errorf("not a JSON object")
	}
	*dest = obj
	return nil
}
