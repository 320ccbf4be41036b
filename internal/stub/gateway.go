package stub

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mughalk/csc301-a2/pkg/logger"
	"github.com/mughalk/csc301-a2/pkg/token"
)

// Gateway routes /user, /product and /order traffic to its registered
// replicas, round-robin per service. It mirrors the router the order
// service talks through, including the POST /shutdown control endpoint.
type Gateway struct {
	targets  map[string][]string // service prefix → "host:port" replicas
	counters map[string]*atomic.Uint64
	secret   string      // non-empty enables bearer verification
	onStop   func()      // invoked after answering /shutdown
	client   *http.Client
}

// NewGateway builds a gateway over the given replica sets. Keys are the path
// prefixes "user", "product" and "order". secret, when non-empty, makes the
// gateway reject requests without a valid bearer token.
func NewGateway(targets map[string][]string, secret string, onStop func()) *Gateway {
	counters := make(map[string]*atomic.Uint64, len(targets))
	for k := range targets {
		counters[k] = &atomic.Uint64{}
	}
	if onStop == nil {
		onStop = func() {}
	}
	return &Gateway{
		targets:  targets,
		counters: counters,
		secret:   secret,
		onStop:   onStop,
		client:   &http.Client{},
	}
}

// Routes mounts the control endpoint and the catch-all forwarder.
func (g *Gateway) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/shutdown", g.handleShutdown)
	r.HandleFunc("/*", g.handleRoute)
	return r
}

func (g *Gateway) handleShutdown(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, "ok")
	go g.onStop()
}

func (g *Gateway) handleRoute(w http.ResponseWriter, r *http.Request) {
	if g.secret != "" && !g.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Missing or invalid bearer token")
		return
	}

	service := serviceFor(r.URL.Path)
	if service == "" {
		writeError(w, http.StatusNotFound, "Unknown Route: "+r.URL.Path)
		return
	}

	addr := g.nextReplica(service)
	if addr == "" {
		writeError(w, http.StatusServiceUnavailable, "Service Not Available: "+service)
		return
	}

	target := "http://" + addr + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	logger.Debug("routing", "method", r.Method, "path", r.URL.Path, "target", target)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Forwarding Error: "+err.Error())
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Forwarding Error: "+err.Error())
		return
	}
	for key, values := range r.Header {
		if strings.EqualFold(key, "Host") || strings.EqualFold(key, "Content-Length") {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := g.client.Do(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Forwarding Error: "+err.Error())
		return
	}
	defer resp.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func (g *Gateway) authorized(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return false
	}
	_, err := token.Verify(strings.TrimPrefix(auth, prefix), g.secret)
	return err == nil
}

// nextReplica picks the service's next target, round-robin.
func (g *Gateway) nextReplica(service string) string {
	nodes := g.targets[service]
	if len(nodes) == 0 {
		return ""
	}
	n := g.counters[service].Add(1) - 1
	return nodes[n%uint64(len(nodes))]
}

func serviceFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/user"):
		return "user"
	case strings.HasPrefix(path, "/product"):
		return "product"
	case strings.HasPrefix(path, "/order"):
		return "order"
	default:
		return ""
	}
}
