// Package stub hosts in-process renditions of the user, product and order
// services plus the routing gateway they sit behind. They exist for two
// jobs: test doubles for the harness's own tests, and a local dry-run
// target (`conform stub`) when the real services are not running.
//
// The observable contract is the one the suites assert on: exact status
// codes, error envelopes and field names, including the product service's
// "productname" spelling.
package stub

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"net/http"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStatus(w http.ResponseWriter, status int, text string) {
	writeJSON(w, status, map[string]string{"status": text})
}

// decodeObject reads the request body as a JSON object. Anything else is the
// caller's 400.
func decodeObject(r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		return nil, false
	}
	return body, true
}

// fieldString returns the string value of key, or "" with false when the key
// is missing, null, or not a string.
func fieldString(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// fieldInt enforces strict integers: present, numeric, and without a
// fractional part. Strings like "5" do not qualify.
func fieldInt(obj map[string]any, key string) (int, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || math.Trunc(f) != f || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// fieldFloat returns the numeric value of key.
func fieldFloat(obj map[string]any, key string) (float64, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// hashPassword is deterministic so expected fixtures can pin the stored
// value.
func hashPassword(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
