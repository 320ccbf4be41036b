// Package request turns a loosely-typed test payload into a concrete request
// description.
//
// The fixtures encode intent structurally: a payload carrying "command" is a
// mutation (create/update/delete; the service interprets the value), a
// payload carrying only "id" is a retrieval, and a payload carrying neither
// cannot be built at all. That discrimination happens exactly once, here, as
// a tagged variant; nothing downstream re-inspects the payload.
package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Kind tags the resolved payload variant.
type Kind int

const (
	// Mutate: "command" is present (its value is the service's business).
	Mutate Kind = iota
	// Retrieve: no "command", but "id" is present. 0 and "" count as
	// present; only a missing key or an explicit null does not.
	Retrieve
	// Malformed: neither discriminator. The case is skipped, never failed.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Mutate:
		return "mutate"
	case Retrieve:
		return "retrieve"
	default:
		return "malformed"
	}
}

// Spec is the immutable request description built once per case.
type Spec struct {
	Method string // http.MethodGet or http.MethodPost
	URL    string
	Body   []byte // nil for retrievals
}

// Classify resolves the payload's variant. A nil payload (non-object fixture
// entry) is Malformed.
func Classify(payload map[string]any) Kind {
	if payload == nil {
		return Malformed
	}
	if payload["command"] != nil {
		return Mutate
	}
	if id, ok := payload["id"]; ok && id != nil {
		return Retrieve
	}
	return Malformed
}

// Build constructs the Spec for a payload against base + "/" + resource.
// ok is false when the payload is Malformed; that is a skip signal, not an
// error.
func Build(base, resource string, payload map[string]any) (Spec, bool) {
	collection := strings.TrimRight(base, "/") + "/" + strings.Trim(resource, "/")

	switch Classify(payload) {
	case Mutate:
		// The whole payload travels as the body; the service reads command,
		// id, and whatever fields the command needs from it.
		body, err := json.Marshal(payload)
		if err != nil {
			return Spec{}, false
		}
		return Spec{Method: http.MethodPost, URL: collection, Body: body}, true

	case Retrieve:
		return Spec{
			Method: http.MethodGet,
			URL:    collection + "/" + renderID(payload["id"]),
		}, true

	default:
		return Spec{}, false
	}
}

// renderID formats an id path segment. JSON numbers arrive as float64; an
// integral value must render as "7", not "7.000000".
func renderID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
