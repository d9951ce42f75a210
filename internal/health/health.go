// Package health implements the default check_health predicate: a bounded
// HTTP probe against the forwarded agent's health endpoint using HTTP basic
// auth. The spec treats check_health as an external collaborator the core
// only consumes as a boolean function, so Checker is defined here as an
// interface the orchestrator depends on instead of this concrete type —
// tests substitute a fake.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/opencode-ai/ssh-core/internal/appconfig"
)

// Checker reports whether a session's forwarded agent is healthy.
type Checker interface {
	Check(ctx context.Context, url, password string) bool
}

// HTTPChecker probes appconfig.HealthPath with HTTP basic auth
// (username "opencode", the session password) and a bounded timeout.
type HTTPChecker struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{Client: &http.Client{}, Timeout: 2 * time.Second}
}

func (c *HTTPChecker) Check(ctx context.Context, url, password string) bool {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url+appconfig.HealthPath, nil)
	if err != nil {
		return false
	}
	req.SetBasicAuth("opencode", password)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// PollUntilHealthy polls checker every interval until it reports healthy,
// ctx is cancelled, or deadline elapses, whichever comes first.
func PollUntilHealthy(ctx context.Context, checker Checker, url, password string, interval, deadline time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if checker.Check(ctx, url, password) {
		return true
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if checker.Check(ctx, url, password) {
				return true
			}
		}
	}
}
