// Package config loads the shared deployment record (config.json) used by
// every part of the harness: where each service listens, where the gateway
// listens, and how the harness should pace itself.
//
// The file layout matches the one the services themselves consume:
//
//	{
//	  "UserService":               { "ip": "127.0.0.1", "port": 14001 },
//	  "ProductService":            { "ip": "127.0.0.1", "port": 14000 },
//	  "OrderService":              { "ip": "127.0.0.1", "port": 14002 },
//	  "InterServiceCommunication": { "ip": "127.0.0.1", "port": 14003 }
//	}
//
// Harness-only settings (timeout, pause) come from flags with CONFORM_*
// environment variables as overrides, so CI can tune a run without editing
// the deployment record.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultTimeout = 3 * time.Second
	defaultPause   = 0 * time.Second

	// Section names as they appear in config.json.
	SectionUser    = "UserService"
	SectionProduct = "ProductService"
	SectionOrder   = "OrderService"
	SectionGateway = "InterServiceCommunication"
)

// Endpoint is one nested connection record inside config.json.
type Endpoint struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// Base renders the endpoint as an http base URL with no trailing slash.
func (e Endpoint) Base() string {
	return fmt.Sprintf("http://%s:%d", e.IP, e.Port)
}

func (e Endpoint) empty() bool { return e.IP == "" && e.Port == 0 }

// Config is the flat configuration record the harness runs with.
type Config struct {
	Services map[string]Endpoint

	Timeout time.Duration // per-request timeout
	Pause   time.Duration // pause after each request (rate limiting only)
}

// Load reads and validates config.json. Any problem here is fatal for the
// run: the harness must not issue a single request with a broken deployment
// record.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var sections map[string]Endpoint
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &Config{
		Services: sections,
		Timeout:  envDuration("CONFORM_TIMEOUT", defaultTimeout),
		Pause:    envDuration("CONFORM_PAUSE", defaultPause),
	}, nil
}

// Default returns a Config with built-in defaults and no service records.
// Used when the target base URL comes straight from a flag.
func Default() *Config {
	return &Config{
		Services: map[string]Endpoint{},
		Timeout:  envDuration("CONFORM_TIMEOUT", defaultTimeout),
		Pause:    envDuration("CONFORM_PAUSE", defaultPause),
	}
}

// Service returns the endpoint record for a named section.
// A missing section is a configuration error, not a skippable condition.
func (c *Config) Service(name string) (Endpoint, error) {
	ep, ok := c.Services[name]
	if !ok || ep.empty() {
		return Endpoint{}, fmt.Errorf("config: required section %q is missing", name)
	}
	return ep, nil
}

// envDuration reads a duration from the environment, falling back when the
// variable is unset or unparsable.
func envDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
