package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Check values reported by /readyz.
const (
	checkOK           = "ok"
	checkNotReady     = "not ready"
	checkShuttingDown = "shutting down"
	checkNoOAuth      = "no oauth client configured"
	checkNoAccounts   = "no authorized accounts"
)

// tokenStoreTimeout bounds the token store lookup of one readiness check.
const tokenStoreTimeout = 2 * time.Second

// HealthChecker serves the liveness and readiness endpoints. The server is ready
// once its tools are registered, an OAuth client is configured and the token
// store holds at least one account.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker that is not ready until SetReady.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	return &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
}

// SetReady marks whether the tools are registered.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the flag set by SetReady.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status        string   `json:"status"`
	Uptime        string   `json:"uptime"`
	Timezone      string   `json:"timezone,omitempty"`
	Accounts      []string `json:"accounts"`
	CachedClients int      `json:"cached_clients"`
}

// readiness runs every check and returns the per-check values, the
// authorized accounts and whether all checks passed.
func (h *HealthChecker) readiness(ctx context.Context) (map[string]string, []string, bool) {
	checks := map[string]string{
		"tools":      checkOK,
		"shutdown":   checkOK,
		"oauth":      checkOK,
		"tokenstore": checkOK,
	}
	ok := true
	fail := func(name, value string) {
		checks[name] = value
		ok = false
	}

	if !h.IsReady() {
		fail("tools", checkNotReady)
	}

	sc := h.serverContext
	if sc == nil {
		fail("oauth", checkNoOAuth)
		delete(checks, "tokenstore")
		return checks, nil, false
	}
	if sc.IsShutdown() {
		fail("shutdown", checkShuttingDown)
	}

	auth := sc.Authenticator()
	if auth == nil {
		fail("oauth", checkNoOAuth)
		delete(checks, "tokenstore")
		return checks, nil, ok
	}

	ctx, cancel := context.WithTimeout(ctx, tokenStoreTimeout)
	defer cancel()
	accounts, err := auth.Store().Accounts(ctx)
	switch {
	case err != nil:
		fail("tokenstore", fmt.Sprintf("error: %v", err))
	case len(accounts) == 0:
		fail("tokenstore", checkNoAccounts)
	}
	return checks, accounts, ok
}

// LivenessHandler answers /healthz. It only reports that the process runs.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: checkOK})
	})
}

// ReadinessHandler answers /readyz with every check and 503 when one fails.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks, _, ok := h.readiness(r.Context())
		resp := HealthResponse{Status: checkOK, Checks: checks}
		code := http.StatusOK
		if !ok {
			resp.Status = checkNotReady
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})
}

// DetailedHealthHandler answers /healthz/detailed with uptime, the
// authorized accounts and the number of cached calendar clients.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, accounts, ok := h.readiness(r.Context())
		resp := DetailedHealthResponse{
			Status:   checkOK,
			Uptime:   time.Since(h.startTime).Truncate(time.Second).String(),
			Accounts: accounts,
		}
		if resp.Accounts == nil {
			resp.Accounts = []string{}
		}
		if sc := h.serverContext; sc != nil {
			resp.Timezone = sc.Location().String()
			resp.CachedClients = sc.CachedClients()
		}
		code := http.StatusOK
		if !ok {
			resp.Status = checkNotReady
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, resp)
	})
}

// RegisterHealthEndpoints registers the health endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
