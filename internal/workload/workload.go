// Package workload parses plain-text workload scripts into ordered request
// steps. The format is line oriented:
//
//	USER create <id> <username> <email> <password>
//	USER get <id>
//	USER update <id> username:<v> email:<v> password:<v>
//	USER delete <id> <username> <email> <password>
//	PRODUCT create <id> <name> [<description>] <price> <quantity>
//	PRODUCT info <id>
//	PRODUCT update <id> name:<v> description:<v> price:<v> quantity:<v>
//	PRODUCT delete <id> <name> <price> <quantity>
//	ORDER place <product_id> <user_id> <quantity>
//	ORDER get <user_id>
//
// Anything after '#' is a comment. Malformed lines are reported as warnings
// and skipped; workloads contain deliberate failures and the run must keep
// going.
package workload

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Step is one executable line: a resource path relative to the target base
// and the payload in the same shape the fixture files use. A Retrieve step
// carries only an id; everything else carries a command.
type Step struct {
	Name     string
	Resource string // "user", "product", "order" or "user/purchased"
	Payload  map[string]any
}

// Warning records a line that could not be turned into a step.
type Warning struct {
	Line    int
	Text    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s (%q)", w.Line, w.Message, w.Text)
}

// Parse reads a workload script and returns its steps in file order.
func Parse(r io.Reader) ([]Step, []Warning, error) {
	var (
		steps    []Step
		warnings []Warning
		lineNo   int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		step, err := parseLine(lineNo, line)
		if err != nil {
			warnings = append(warnings, Warning{Line: lineNo, Text: line, Message: err.Error()})
			continue
		}
		if step != nil {
			steps = append(steps, *step)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("workload: read: %w", err)
	}
	return steps, warnings, nil
}

func parseLine(lineNo int, line string) (*Step, error) {
	t := strings.Fields(line)
	if len(t) < 2 {
		return nil, fmt.Errorf("expected at least a kind and a command")
	}

	kind := strings.ToUpper(t[0])
	cmd := strings.ToLower(t[1])
	name := fmt.Sprintf("%s_%s_line%d", strings.ToLower(kind), cmd, lineNo)

	switch kind {
	case "USER":
		return parseUser(name, cmd, t)
	case "PRODUCT":
		return parseProduct(name, cmd, t)
	case "ORDER":
		return parseOrder(name, cmd, t)
	default:
		// Unknown kinds are silently ignored, matching the script contract.
		return nil, nil
	}
}

func parseUser(name, cmd string, t []string) (*Step, error) {
	if cmd == "get" || cmd == "info" {
		id, err := intToken(t, 2, "id")
		if err != nil {
			return nil, err
		}
		return &Step{Name: name, Resource: "user", Payload: map[string]any{"id": id}}, nil
	}

	id, err := intToken(t, 2, "id")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"command": cmd, "id": id}

	switch cmd {
	case "create", "delete":
		if len(t) < 6 {
			return nil, fmt.Errorf("USER %s expects 6 tokens", cmd)
		}
		payload["username"] = t[3]
		payload["email"] = t[4]
		payload["password"] = t[5]
	case "update":
		for k, v := range keyValueTokens(t[3:]) {
			switch k {
			case "username", "email", "password":
				payload[k] = v
			}
		}
	}
	// Unknown user commands travel as-is; the service rejects them.
	return &Step{Name: name, Resource: "user", Payload: payload}, nil
}

func parseProduct(name, cmd string, t []string) (*Step, error) {
	if cmd == "info" || cmd == "get" {
		id, err := intToken(t, 2, "id")
		if err != nil {
			return nil, err
		}
		return &Step{Name: name, Resource: "product", Payload: map[string]any{"id": id}}, nil
	}

	id, err := intToken(t, 2, "id")
	if err != nil {
		return nil, err
	}
	payload := map[string]any{"command": cmd, "id": id}

	switch cmd {
	case "create":
		switch len(t) {
		case 7:
			price, err := floatToken(t[5], "price")
			if err != nil {
				return nil, err
			}
			qty, err := floatToken(t[6], "quantity")
			if err != nil {
				return nil, err
			}
			setProductName(payload, t[3])
			payload["description"] = t[4]
			payload["price"] = price
			payload["quantity"] = qty
		case 6:
			// Short form: no description. Synthesize one so the service's
			// non-empty validation is satisfied.
			price, err := floatToken(t[4], "price")
			if err != nil {
				return nil, err
			}
			qty, err := floatToken(t[5], "quantity")
			if err != nil {
				return nil, err
			}
			setProductName(payload, t[3])
			payload["description"] = "desc-" + t[3]
			payload["price"] = price
			payload["quantity"] = qty
		default:
			return nil, fmt.Errorf("PRODUCT create expects 6 or 7 tokens")
		}
	case "update":
		for k, v := range keyValueTokens(t[3:]) {
			switch k {
			case "name", "productname":
				setProductName(payload, v)
			case "description":
				payload["description"] = v
			case "price":
				f, err := floatToken(v, "price")
				if err != nil {
					return nil, err
				}
				payload["price"] = f
			case "quantity":
				f, err := floatToken(v, "quantity")
				if err != nil {
					return nil, err
				}
				payload["quantity"] = f
			}
		}
	case "delete":
		if len(t) < 6 {
			return nil, fmt.Errorf("PRODUCT delete expects 6 tokens")
		}
		price, err := floatToken(t[4], "price")
		if err != nil {
			return nil, err
		}
		qty, err := floatToken(t[5], "quantity")
		if err != nil {
			return nil, err
		}
		setProductName(payload, t[3])
		payload["price"] = price
		payload["quantity"] = qty
	}
	return &Step{Name: name, Resource: "product", Payload: payload}, nil
}

func parseOrder(name, cmd string, t []string) (*Step, error) {
	switch cmd {
	case "place":
		if len(t) < 5 {
			return nil, fmt.Errorf("ORDER place expects 5 tokens")
		}
		productID, err := intToken(t, 2, "product_id")
		if err != nil {
			return nil, err
		}
		userID, err := intToken(t, 3, "user_id")
		if err != nil {
			return nil, err
		}
		qty, err := intToken(t, 4, "quantity")
		if err != nil {
			return nil, err
		}
		return &Step{Name: name, Resource: "order", Payload: map[string]any{
			"command":    "place order",
			"product_id": productID,
			"user_id":    userID,
			"quantity":   qty,
		}}, nil
	case "get":
		userID, err := intToken(t, 2, "user_id")
		if err != nil {
			return nil, err
		}
		return &Step{Name: name, Resource: "user/purchased", Payload: map[string]any{"id": userID}}, nil
	default:
		// Unknown order commands still travel so the service can reject them.
		return &Step{Name: name, Resource: "order", Payload: map[string]any{"command": cmd}}, nil
	}
}

// setProductName writes both spellings of the product name field. Some
// service implementations read "productname", others "name".
func setProductName(payload map[string]any, name string) {
	payload["productname"] = name
	payload["name"] = name
}

// keyValueTokens parses "key:value" tokens, keeping the last value per key.
func keyValueTokens(tokens []string) map[string]string {
	kv := make(map[string]string)
	for _, tok := range tokens {
		colon := strings.IndexByte(tok, ':')
		if colon <= 0 {
			continue
		}
		kv[strings.ToLower(tok[:colon])] = tok[colon+1:]
	}
	return kv
}

// Numbers travel as float64 to match what a JSON round trip would produce.
func intToken(t []string, i int, field string) (float64, error) {
	if i >= len(t) {
		return 0, fmt.Errorf("missing %s", field)
	}
	n, err := strconv.Atoi(t[i])
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", field, t[i])
	}
	return float64(n), nil
}

func floatToken(s, field string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %q", field, s)
	}
	return f, nil
}
